package s3batch

import (
	"context"
	"log/slog"

	"github.com/input-output-hk/s3batch/s3types"
)

// outcomesFor returns one pending outcome per listed object, in listing order.
func outcomesFor(objects []s3types.Object) []s3types.Outcome {
	outcomes := make([]s3types.Outcome, len(objects))
	for i, obj := range objects {
		outcomes[i].Key = obj.Key
	}
	return outcomes
}

// failed counts the outcomes that carry an error.
func failed(outcomes []s3types.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// logStart and logOutcomes bracket every batch verb.
func (c *Client) logStart(ctx context.Context, op, bucket, prefix string, objects int) {
	c.log(ctx, slog.LevelDebug, op+" started",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("objects", objects))
}

func (c *Client) logOutcomes(ctx context.Context, op, bucket, prefix string, outcomes []s3types.Outcome) {
	if c.logger == nil {
		return
	}
	for _, o := range outcomes {
		if o.OK() {
			continue
		}
		c.log(ctx, slog.LevelWarn, op+" failed for object",
			slog.String("bucket", bucket),
			slog.String("key", o.Key),
			slog.String("target", o.Target),
			slog.Any("error", o.Err))
	}
	c.log(ctx, slog.LevelInfo, op+" completed",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("objects", len(outcomes)),
		slog.Int("failed", failed(outcomes)))
}
