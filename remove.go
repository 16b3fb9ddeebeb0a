package s3batch

import (
	"context"

	"github.com/input-output-hk/s3batch/s3types"
)

// Remove deletes every object under prefix. Keys are deleted in batches of
// at most 1000, and batches run concurrently under the client's limit.
// One outcome is returned per listed object. Removing a prefix with no
// objects returns no outcomes and issues no delete calls.
func (c *Client) Remove(ctx context.Context, prefix string) ([]s3types.Outcome, error) {
	bucket, err := c.requireBucket("remove")
	if err != nil {
		return nil, err
	}

	objects, err := c.collect(ctx, "remove", bucket, prefix)
	if err != nil {
		return nil, err
	}
	c.logStart(ctx, "remove", bucket, prefix, len(objects))

	keys := make([]string, len(objects))
	for i, obj := range objects {
		keys[i] = obj.Key
	}
	outcomes := c.deleteKeys(ctx, bucket, keys)

	c.logOutcomes(ctx, "remove", bucket, prefix, outcomes)
	return outcomes, nil
}

// deleteKeys deletes keys in batches and returns one outcome per key, in
// the order of keys. Each delete call holds one limiter slot.
func (c *Client) deleteKeys(ctx context.Context, bucket string, keys []string) []s3types.Outcome {
	batches := c.deleter.Split(keys)
	results := make([][]s3types.Outcome, len(batches))

	c.scheduler.Run(ctx, len(batches), func(ctx context.Context, i int) {
		err := c.limiter.Do(ctx, func(ctx context.Context) error {
			results[i] = c.deleter.DeleteBatch(ctx, bucket, batches[i])
			return nil
		})
		if err != nil {
			results[i] = make([]s3types.Outcome, len(batches[i]))
			for j, key := range batches[i] {
				results[i][j] = s3types.Outcome{Key: key, Err: err}
			}
		}
	})

	outcomes := make([]s3types.Outcome, 0, len(keys))
	for _, r := range results {
		outcomes = append(outcomes, r...)
	}
	return outcomes
}
