package s3batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/operations/download"
	"github.com/input-output-hk/s3batch/internal/validation"
	"github.com/input-output-hk/s3batch/s3types"
)

// Download fetches every object under prefix into destDir, which is created
// if needed. Each object's local path is its key with prefix stripped; an
// object whose key equals prefix is saved under its base name.
//
// Local paths are checked serially before any transfer starts: an existing
// file fails that object with ErrAlreadyExists unless overwrite is set,
// keys that would escape destDir or collide on one local path are rejected,
// and parent directories are created. The remaining objects are downloaded
// concurrently. One outcome is returned per listed object, with Target set
// to its local path.
func (c *Client) Download(ctx context.Context, prefix, destDir string, overwrite bool) ([]s3types.Outcome, error) {
	bucket, err := c.requireBucket("download")
	if err != nil {
		return nil, err
	}

	if err := c.fs.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.NewError("download", err).
			WithBucket(bucket).
			WithMessage("create destination " + destDir)
	}

	objects, err := c.collect(ctx, "download", bucket, prefix)
	if err != nil {
		return nil, err
	}
	c.logStart(ctx, "download", bucket, prefix, len(objects))

	outcomes := outcomesFor(objects)
	pending := make([]int, 0, len(objects))
	claimed := make(map[string]string, len(objects))

	for i, obj := range objects {
		if err := c.prepareLocal(bucket, prefix, destDir, obj.Key, overwrite, claimed, &outcomes[i]); err != nil {
			outcomes[i].Err = err
			continue
		}
		pending = append(pending, i)
	}

	c.scheduler.Run(ctx, len(pending), func(ctx context.Context, j int) {
		o := &outcomes[pending[j]]
		o.Err = c.limiter.Do(ctx, func(ctx context.Context) error {
			_, err := c.downloader.ToFile(ctx, bucket, o.Key, c.fs, o.Target)
			return err
		})
	})

	c.logOutcomes(ctx, "download", bucket, prefix, outcomes)
	return outcomes, nil
}

// prepareLocal resolves and checks the local path of key, recording it as
// the outcome's target, and creates its parent directory.
func (c *Client) prepareLocal(
	bucket, prefix, destDir, key string,
	overwrite bool,
	claimed map[string]string,
	outcome *s3types.Outcome,
) error {
	rel, err := validation.LocalPath(key, prefix)
	if err != nil {
		return err
	}

	local := c.fs.Join(destDir, rel)
	outcome.Target = local

	if other, ok := claimed[local]; ok {
		return errors.NewObjectError("download", bucket, key, errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("local path %s already used by %s", local, other))
	}
	claimed[local] = key

	info, err := c.fs.Stat(local)
	switch {
	case err == nil && info.IsDir():
		return errors.NewObjectError("download", bucket, key, errors.ErrInvalidInput).
			WithMessage(local + " is a directory")
	case err == nil && !overwrite:
		return errors.NewObjectError("download", bucket, key, errors.ErrAlreadyExists).
			WithMessage(local)
	case err != nil && !stderrors.Is(err, os.ErrNotExist):
		return errors.NewObjectError("download", bucket, key, err)
	}

	if dir := path.Dir(rel); dir != "." {
		if err := c.fs.MkdirAll(c.fs.Join(destDir, dir), 0o755); err != nil {
			return errors.NewObjectError("download", bucket, key, err)
		}
	}
	return nil
}

// DownloadByChunks reads the object at key as consecutive chunks of
// chunkSize bytes (the last may be shorter), fetched concurrently with
// ranged GETs. Chunks are returned in object order whatever order the
// fetches complete in. If any chunk fails the call fails with the error of
// the first failing chunk. A missing object yields ErrObjectNotFound and an
// empty object yields no chunks.
func (c *Client) DownloadByChunks(ctx context.Context, key string, chunkSize int64) ([][]byte, error) {
	bucket, err := c.requireBucket("downloadByChunks")
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}
	if err := validation.ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}

	size, err := c.downloader.Size(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	ranges := download.ChunkRanges(size, chunkSize)
	chunks := make([][]byte, len(ranges))
	errs := make([]error, len(ranges))

	c.scheduler.Run(ctx, len(ranges), func(ctx context.Context, i int) {
		errs[i] = c.limiter.Do(ctx, func(ctx context.Context) error {
			data, err := c.downloader.ReadRange(ctx, bucket, key, ranges[i])
			if err != nil {
				return err
			}
			chunks[i] = data
			return nil
		})
	})

	for i, err := range errs {
		if err != nil {
			return nil, errors.NewObjectError("downloadByChunks", bucket, key, err).
				WithMessage(fmt.Sprintf("chunk %d of %d", i, len(ranges)))
		}
	}
	return chunks, nil
}
