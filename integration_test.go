//go:build integration
// +build integration

package s3batch_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3batch"
	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/testutil"
)

func newLocalStackClient(t *testing.T) *s3batch.Client {
	t.Helper()
	container := testutil.SetupLocalStack(t)

	tempDir := t.TempDir()
	client, err := s3batch.New(
		s3batch.WithEndpoint(container.Endpoint()),
		s3batch.WithRegion(testutil.LocalStackRegion),
		s3batch.WithCredentials(testutil.LocalStackAccessKey, testutil.LocalStackSecretKey, ""),
		s3batch.WithForcePathStyle(true),
		s3batch.WithFilesystem(osfs.New(tempDir)),
	)
	require.NoError(t, err)
	return client
}

// TestIntegrationBatchLifecycle drives every verb against LocalStack.
func TestIntegrationBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newLocalStackClient(t)

	bucket := testutil.GenerateTestBucketName("batch")
	require.NoError(t, client.CreateBucket(ctx, bucket))
	require.NoError(t, client.CreateBucket(ctx, bucket), "creating an owned bucket again succeeds")

	buckets, err := client.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Contains(t, buckets, bucket)

	require.NoError(t, client.SelectBucket(ctx, bucket))

	t.Run("upload", func(t *testing.T) {
		for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
			data := bytes.Repeat([]byte{byte('a' + i)}, 1024*(i+1))
			require.NoError(t, client.UploadStream(ctx, bytes.NewReader(data), "src/"+name))
		}

		err := client.UploadStream(ctx, strings.NewReader("again"), "src/a.txt")
		require.NoError(t, err)

		count, err := client.CountFiles(ctx, "src/")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("sizes and chunks", func(t *testing.T) {
		sizes, err := client.GetSizes(ctx, "src/")
		require.NoError(t, err)
		assert.Equal(t, int64(2048), sizes["src/b.txt"])

		chunks, err := client.DownloadByChunks(ctx, "src/c.txt", 1000)
		require.NoError(t, err)
		require.Len(t, chunks, 4)
		assert.Len(t, chunks[3], 72)
	})

	t.Run("copy and move", func(t *testing.T) {
		outcomes, err := client.Copy(ctx, "src/", "copy/", false)
		require.NoError(t, err)
		for _, o := range outcomes {
			assert.NoError(t, o.Err)
		}

		outcomes, err = client.Copy(ctx, "src/", "copy/", false)
		require.NoError(t, err)
		for _, o := range outcomes {
			assert.True(t, errors.IsAlreadyExists(o.Err))
		}

		outcomes, err = client.Move(ctx, "copy/", "moved/", false)
		require.NoError(t, err)
		assert.Len(t, outcomes, 3)

		exists, err := client.Exists(ctx, "copy/")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("download", func(t *testing.T) {
		outcomes, err := client.Download(ctx, "moved/", "out", false)
		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		for _, o := range outcomes {
			require.NoError(t, o.Err)
		}
	})

	t.Run("urls", func(t *testing.T) {
		urls, err := client.GetURLs(ctx, "moved/", 10*time.Minute)
		require.NoError(t, err)
		assert.Len(t, urls, 3)
		for _, u := range urls {
			assert.Contains(t, u, "X-Amz-Expires=600")
		}
	})

	t.Run("remove", func(t *testing.T) {
		for _, prefix := range []string{"src/", "moved/"} {
			_, err := client.Remove(ctx, prefix)
			require.NoError(t, err)
		}
		count, err := client.CountFiles(ctx, "")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

// TestIntegrationUploadFile uploads from the local disk.
func TestIntegrationUploadFile(t *testing.T) {
	ctx := context.Background()
	container := testutil.SetupLocalStack(t)

	dir := t.TempDir()
	localFile := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(localFile, []byte(`{"ok":true}`), 0o644))

	client, err := s3batch.New(
		s3batch.WithEndpoint(container.Endpoint()),
		s3batch.WithRegion(testutil.LocalStackRegion),
		s3batch.WithCredentials(testutil.LocalStackAccessKey, testutil.LocalStackSecretKey, ""),
		s3batch.WithForcePathStyle(true),
	)
	require.NoError(t, err)

	bucket := testutil.GenerateTestBucketName("upload")
	require.NoError(t, client.CreateBucket(ctx, bucket))
	require.NoError(t, client.SelectBucket(ctx, bucket))

	require.NoError(t, client.UploadFile(ctx, localFile, "", false))
	err = client.UploadFile(ctx, localFile, "", false)
	assert.True(t, errors.IsAlreadyExists(err))
	require.NoError(t, client.UploadFile(ctx, localFile, "", true))

	exists, err := client.Exists(ctx, "report.json")
	require.NoError(t, err)
	assert.True(t, exists)
}
