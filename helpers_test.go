package s3batch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3batch/internal/testutil"
	"github.com/input-output-hk/s3batch/s3types"
)

const testBucket = "test-bucket"

// newTestClient returns a client over m with testBucket selected and an
// in-memory filesystem. Later options override the defaults.
func newTestClient(t *testing.T, m *testutil.MemoryS3, opts ...s3types.Option) *Client {
	t.Helper()
	defaults := []s3types.Option{WithBucket(testBucket), WithFilesystem(memfs.New())}
	client, err := NewWithClient(m, append(defaults, opts...)...)
	require.NoError(t, err)
	return client
}

// newStore returns a store holding testBucket.
func newStore() *testutil.MemoryS3 {
	return testutil.NewMemoryS3(testBucket)
}

// mkdirFailFS fails every MkdirAll call.
type mkdirFailFS struct {
	billy.Filesystem
}

func (mkdirFailFS) MkdirAll(string, os.FileMode) error {
	return os.ErrPermission
}

type logEntry struct {
	level slog.Level
	msg   string
	attrs map[string]string
}

// captureHandler records every log record it receives.
type captureHandler struct {
	mu   sync.Mutex
	logs []logEntry
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	entry := logEntry{level: r.Level, msg: r.Message, attrs: map[string]string{}}
	r.Attrs(func(a slog.Attr) bool {
		entry.attrs[a.Key] = a.Value.String()
		return true
	})
	h.mu.Lock()
	h.logs = append(h.logs, entry)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) entries() []logEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]logEntry(nil), h.logs...)
}
