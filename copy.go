package s3batch

import (
	"context"

	"github.com/input-output-hk/s3batch/errors"
	copyop "github.com/input-output-hk/s3batch/internal/operations/copy"
	"github.com/input-output-hk/s3batch/s3types"
)

// Copy copies every object under prefix to the key obtained by replacing
// the first occurrence of prefix with destPrefix. Unless overwrite is set,
// an object whose destination already exists is skipped with ErrAlreadyExists.
// One outcome is returned per listed object, with Target set to the destination key.
func (c *Client) Copy(ctx context.Context, prefix, destPrefix string, overwrite bool) ([]s3types.Outcome, error) {
	bucket, err := c.requireBucket("copy")
	if err != nil {
		return nil, err
	}
	if err := checkRewrite("copy", prefix, destPrefix); err != nil {
		return nil, err
	}

	objects, err := c.collect(ctx, "copy", bucket, prefix)
	if err != nil {
		return nil, err
	}
	c.logStart(ctx, "copy", bucket, prefix, len(objects))

	outcomes := c.copyAll(ctx, bucket, prefix, destPrefix, overwrite, objects)

	c.logOutcomes(ctx, "copy", bucket, prefix, outcomes)
	return outcomes, nil
}

// Move copies every object under prefix to newPrefix like Copy, then
// deletes the originals in batches of at most 1000 keys.
//
// An original is deleted only when its copy succeeded or was skipped
// because the destination already existed; a failed copy keeps its source.
// An object whose destination is itself one of the listed keys is not
// copied and fails with ErrInvalidInput.
// A failure to delete an original is reported on that object's outcome.
func (c *Client) Move(ctx context.Context, prefix, newPrefix string, overwrite bool) ([]s3types.Outcome, error) {
	bucket, err := c.requireBucket("move")
	if err != nil {
		return nil, err
	}
	if err := checkRewrite("move", prefix, newPrefix); err != nil {
		return nil, err
	}

	objects, err := c.collect(ctx, "move", bucket, prefix)
	if err != nil {
		return nil, err
	}
	c.logStart(ctx, "move", bucket, prefix, len(objects))

	outcomes := c.copyAll(ctx, bucket, prefix, newPrefix, overwrite, objects)

	var sources []string
	var positions []int
	for i, o := range outcomes {
		if o.OK() || errors.IsAlreadyExists(o.Err) {
			sources = append(sources, o.Key)
			positions = append(positions, i)
		}
	}

	for j, d := range c.deleteKeys(ctx, bucket, sources) {
		if d.Err != nil {
			outcomes[positions[j]].Err = errors.NewObjectError("move", bucket, d.Key, d.Err).
				WithMessage("delete source")
		}
	}

	c.logOutcomes(ctx, "move", bucket, prefix, outcomes)
	return outcomes, nil
}

// copyAll copies each object to its rewritten key. The destination check and
// the copy of one object run under a single limiter slot. Objects whose
// destination is another listed key fail with ErrInvalidInput and keep
// their source, so a destination nested under the source prefix never
// loses data.
func (c *Client) copyAll(
	ctx context.Context,
	bucket, prefix, destPrefix string,
	overwrite bool,
	objects []s3types.Object,
) []s3types.Outcome {
	outcomes := outcomesFor(objects)
	sources := make(map[string]struct{}, len(outcomes))
	for i := range outcomes {
		sources[outcomes[i].Key] = struct{}{}
		outcomes[i].Target = copyop.RewriteKey(outcomes[i].Key, prefix, destPrefix)
	}

	// A destination that is also a listed source would be both read and
	// overwritten within one call, so such objects are not copied.
	for i := range outcomes {
		if _, ok := sources[outcomes[i].Target]; ok {
			outcomes[i].Err = errors.NewObjectError("copy", bucket, outcomes[i].Target, errors.ErrInvalidInput).
				WithMessage("destination is also a source of this call")
		}
	}

	c.scheduler.Run(ctx, len(outcomes), func(ctx context.Context, i int) {
		o := &outcomes[i]
		if o.Err != nil {
			return
		}
		o.Err = c.limiter.Do(ctx, func(ctx context.Context) error {
			if !overwrite {
				exists, err := c.keyExists(ctx, bucket, o.Target)
				if err != nil {
					return errors.NewObjectError("copy", bucket, o.Target, err)
				}
				if exists {
					return errors.NewObjectError("copy", bucket, o.Target, errors.ErrAlreadyExists)
				}
			}
			return c.copier.Copy(ctx, bucket, o.Key, o.Target)
		})
	})

	return outcomes
}

// checkRewrite rejects prefix rewrites that would map every key onto itself.
func checkRewrite(op, prefix, dest string) error {
	if prefix == dest {
		return errors.NewError(op, errors.ErrInvalidInput).
			WithKey(prefix).
			WithMessage("destination prefix must differ from source prefix")
	}
	return nil
}
