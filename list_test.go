package s3batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/testutil"
)

func TestClient_EmptyPrefix(t *testing.T) {
	ctx := context.Background()
	m := newStore()
	m.SeedKeys(testBucket, "other/a")
	client := newTestClient(t, m)

	exists, err := client.Exists(ctx, "missing/")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := client.CountFiles(ctx, "missing/")
	require.NoError(t, err)
	assert.Zero(t, count)

	sizes, err := client.GetSizes(ctx, "missing/")
	require.NoError(t, err)
	assert.Empty(t, sizes)

	n := 0
	for _, err := range client.ListObjects(ctx, "missing/") {
		require.NoError(t, err)
		n++
	}
	assert.Zero(t, n)
}

func TestClient_CountAndSizes(t *testing.T) {
	ctx := context.Background()
	m := newStore()
	m.Seed(testBucket, "p/a", make([]byte, 10))
	m.Seed(testBucket, "p/b", make([]byte, 20))
	m.Seed(testBucket, "p/c", nil)
	m.Seed(testBucket, "q/d", make([]byte, 99))
	client := newTestClient(t, m)

	count, err := client.CountFiles(ctx, "p/")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	sizes, err := client.GetSizes(ctx, "p/")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p/a": 10, "p/b": 20, "p/c": 0}, sizes)

	all, err := client.CountFiles(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, all)
}

func TestClient_ListingIsExhaustive(t *testing.T) {
	ctx := context.Background()
	m := newStore()
	m.SeedKeys(testBucket, testutil.GenerateKeys("p/", 2345)...)
	client := newTestClient(t, m)

	count, err := client.CountFiles(ctx, "p/")
	require.NoError(t, err)
	assert.Equal(t, 2345, count)
	assert.Equal(t, 3, m.Calls(testutil.OpListObjects))
}

func TestClient_ListPages(t *testing.T) {
	ctx := context.Background()
	m := newStore()
	m.SeedKeys(testBucket, testutil.GenerateKeys("p/", 7)...)
	client := newTestClient(t, m, WithPageSize(3))

	var sizes []int
	for page, err := range client.ListPages(ctx, "p/", 0) {
		require.NoError(t, err)
		sizes = append(sizes, len(page))
	}
	assert.Equal(t, []int{3, 3, 1}, sizes)

	sizes = nil
	for page, err := range client.ListPages(ctx, "p/", 5) {
		require.NoError(t, err)
		sizes = append(sizes, len(page))
	}
	assert.Equal(t, []int{5, 2}, sizes)
}

func TestClient_ListObjects_EarlyBreak(t *testing.T) {
	ctx := context.Background()
	m := newStore()
	m.SeedKeys(testBucket, testutil.GenerateKeys("p/", 10)...)
	client := newTestClient(t, m, WithPageSize(2))

	var keys []string
	for obj, err := range client.ListObjects(ctx, "p/") {
		require.NoError(t, err)
		keys = append(keys, obj.Key)
		if len(keys) == 3 {
			break
		}
	}
	assert.Equal(t, testutil.GenerateKeys("p/", 3), keys)
	assert.Equal(t, 2, m.Calls(testutil.OpListObjects))
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()
	m := newStore()
	m.SeedKeys(testBucket, testutil.GenerateKeys("p/", 2500)...)
	client := newTestClient(t, m)

	exists, err := client.Exists(ctx, "p/")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, m.Calls(testutil.OpListObjects), "only the first page is requested")
}

func TestClient_ListingFailure(t *testing.T) {
	m := testutil.NewMemoryS3("other")
	client := newTestClient(t, m)

	_, err := client.CountFiles(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBucketNotFound)

	var opErr *errors.Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "countFiles", opErr.Op)
	assert.Equal(t, testBucket, opErr.Bucket)
}
