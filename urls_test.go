package s3batch

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/s3api"
	"github.com/input-output-hk/s3batch/internal/testutil"
)

func TestClient_GetURLs(t *testing.T) {
	tests := []struct {
		name       string
		ttl        time.Duration
		wantExpiry string
	}{
		{name: "default expiry", ttl: 0, wantExpiry: "3600"},
		{name: "negative uses default", ttl: -time.Minute, wantExpiry: "3600"},
		{name: "custom expiry", ttl: 15 * time.Minute, wantExpiry: "900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStore()
			m.SeedKeys(testBucket, "pub/a.png", "pub/b.png", "private/c")
			client := newTestClient(t, m)

			urls, err := client.GetURLs(context.Background(), "pub/", tt.ttl)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{
				"pub/a.png": "https://test-bucket.memory.invalid/pub/a.png?X-Amz-Expires=" + tt.wantExpiry,
				"pub/b.png": "https://test-bucket.memory.invalid/pub/b.png?X-Amz-Expires=" + tt.wantExpiry,
			}, urls)
		})
	}
}

func TestClient_GetURLs_PartialFailure(t *testing.T) {
	m := newStore()
	m.SeedKeys(testBucket, "p/a", "p/b", "p/c")
	m.Fail = func(op, key string) error {
		if op == testutil.OpPresign && key != "p/b" {
			return stderrors.New("signing failed for " + key)
		}
		return nil
	}
	client := newTestClient(t, m)

	urls, err := client.GetURLs(context.Background(), "p/", time.Minute)
	require.Error(t, err)
	assert.ErrorContains(t, err, "signing failed for p/a")
	assert.ErrorContains(t, err, "signing failed for p/c")
	assert.Len(t, urls, 1)
	assert.Contains(t, urls, "p/b")
}

func TestClient_GetURLs_Empty(t *testing.T) {
	client := newTestClient(t, newStore())

	urls, err := client.GetURLs(context.Background(), "nothing/", 0)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestClient_GetURLs_NoPresigner(t *testing.T) {
	m := newStore()
	m.SeedKeys(testBucket, "p/a")
	// hides the store's PresignGetObject
	api := struct{ s3api.S3API }{m}

	client, err := NewWithClient(api, WithBucket(testBucket))
	require.NoError(t, err)

	_, err = client.GetURLs(context.Background(), "p/", 0)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	client, err = NewWithClient(api, WithBucket(testBucket), WithPresigner(m))
	require.NoError(t, err)
	urls, err := client.GetURLs(context.Background(), "p/", 0)
	require.NoError(t, err)
	assert.Len(t, urls, 1)
}
