package s3batch

import (
	"context"
	"iter"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/operations/list"
	"github.com/input-output-hk/s3batch/internal/validation"
	"github.com/input-output-hk/s3batch/s3types"
)

// ListPages returns the objects under prefix one listing page at a time.
// pageSize <= 0 uses the client's page size. The sequence is lazy and
// restartable: every range over it starts a fresh listing. Failures,
// including a missing bucket selection, are yielded once as the error.
func (c *Client) ListPages(ctx context.Context, prefix string, pageSize int32) iter.Seq2[[]s3types.Object, error] {
	bucket, err := c.requireBucket("listPages")
	if err == nil {
		err = validation.ValidatePrefix(prefix)
	}
	if err != nil {
		return func(yield func([]s3types.Object, error) bool) {
			yield(nil, err)
		}
	}

	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	return c.lister.Pages(ctx, &list.Config{Bucket: bucket, Prefix: prefix, PageSize: pageSize})
}

// ListObjects returns every object under prefix in listing order.
//
// Example:
//
//	for obj, err := range client.ListObjects(ctx, "logs/") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(obj.Key, obj.Size)
//	}
func (c *Client) ListObjects(ctx context.Context, prefix string) iter.Seq2[s3types.Object, error] {
	return func(yield func(s3types.Object, error) bool) {
		for page, err := range c.ListPages(ctx, prefix, 0) {
			if err != nil {
				yield(s3types.Object{}, err)
				return
			}
			for _, obj := range page {
				if !yield(obj, nil) {
					return
				}
			}
		}
	}
}

// Exists reports whether at least one object exists under prefix.
// Only the first listing page is requested.
func (c *Client) Exists(ctx context.Context, prefix string) (bool, error) {
	bucket, err := c.requireBucket("exists")
	if err != nil {
		return false, err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return false, err
	}

	page, err := c.lister.First(ctx, &list.Config{Bucket: bucket, Prefix: prefix, PageSize: c.pageSize})
	if err != nil {
		return false, errors.NewError("exists", err).WithBucket(bucket).WithKey(prefix)
	}
	return len(page) > 0, nil
}

// CountFiles returns the number of objects under prefix.
func (c *Client) CountFiles(ctx context.Context, prefix string) (int, error) {
	bucket, err := c.requireBucket("countFiles")
	if err != nil {
		return 0, err
	}
	objects, err := c.collect(ctx, "countFiles", bucket, prefix)
	if err != nil {
		return 0, err
	}
	return len(objects), nil
}

// GetSizes returns the size in bytes of every object under prefix, by key.
func (c *Client) GetSizes(ctx context.Context, prefix string) (map[string]int64, error) {
	bucket, err := c.requireBucket("getSizes")
	if err != nil {
		return nil, err
	}
	objects, err := c.collect(ctx, "getSizes", bucket, prefix)
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]int64, len(objects))
	for _, obj := range objects {
		sizes[obj.Key] = obj.Size
	}
	return sizes, nil
}

// collect lists every object under prefix of bucket.
// It is the discovery step of every batch verb.
func (c *Client) collect(ctx context.Context, op, bucket, prefix string) ([]s3types.Object, error) {
	if err := validation.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	objects, err := c.lister.Collect(ctx, &list.Config{Bucket: bucket, Prefix: prefix, PageSize: c.pageSize})
	if err != nil {
		return nil, errors.NewError(op, err).WithBucket(bucket).WithKey(prefix)
	}
	return objects, nil
}

// keyExists reports whether bucket holds an object with exactly this key.
func (c *Client) keyExists(ctx context.Context, bucket, key string) (bool, error) {
	return c.lister.KeyExists(ctx, bucket, key)
}
