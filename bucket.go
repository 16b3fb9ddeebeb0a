package s3batch

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/validation"
)

// SelectBucket makes name the bucket used by every subsequent operation.
// The name must appear in the account's bucket list; otherwise
// ErrBucketUnavailable is returned and the current selection is kept.
// Selecting again replaces the previous bucket.
func (c *Client) SelectBucket(ctx context.Context, name string) error {
	buckets, err := c.ListBuckets(ctx)
	if err != nil {
		return errors.NewError("selectBucket", err).WithBucket(name)
	}

	if !slices.Contains(buckets, name) {
		return errors.NewError("selectBucket", errors.ErrBucketUnavailable).WithBucket(name)
	}

	c.mu.Lock()
	c.bucket = name
	c.mu.Unlock()

	c.log(ctx, slog.LevelDebug, "bucket selected", slog.String("bucket", name))
	return nil
}

// SelectedBucket returns the selected bucket, or ErrBucketNotSelected.
func (c *Client) SelectedBucket() (string, error) {
	return c.requireBucket("selectedBucket")
}

// ListBuckets returns the names of every bucket visible to the account,
// following continuation tokens until the listing is exhausted.
// It does not require a selected bucket.
func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	var names []string
	input := &s3.ListBucketsInput{}
	for {
		output, err := c.api.ListBuckets(ctx, input)
		if err != nil {
			return nil, errors.NewError("listBuckets", errors.FromAWS(err))
		}
		for _, b := range output.Buckets {
			names = append(names, aws.ToString(b.Name))
		}
		if aws.ToString(output.ContinuationToken) == "" {
			return names, nil
		}
		input.ContinuationToken = output.ContinuationToken
	}
}

// CreateBucket creates a bucket unless the account already has one with that name.
// It does not change the selected bucket.
func (c *Client) CreateBucket(ctx context.Context, name string) error {
	if err := validation.ValidateBucketName(name); err != nil {
		return err
	}

	buckets, err := c.ListBuckets(ctx)
	if err != nil {
		return errors.NewError("createBucket", err).WithBucket(name)
	}
	if slices.Contains(buckets, name) {
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if region := c.config.Region; region != "" && region != defaultRegion {
		input.CreateBucketConfiguration = &awstypes.CreateBucketConfiguration{
			LocationConstraint: awstypes.BucketLocationConstraint(region),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil {
		var owned *awstypes.BucketAlreadyOwnedByYou
		if stderrors.As(err, &owned) {
			return nil
		}
		return errors.NewError("createBucket", errors.FromAWS(err)).WithBucket(name)
	}

	c.log(ctx, slog.LevelInfo, "bucket created", slog.String("bucket", name))
	return nil
}

// requireBucket returns the selected bucket or an ErrBucketNotSelected error for op.
func (c *Client) requireBucket(op string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bucket == "" {
		return "", errors.NewError(op, errors.ErrBucketNotSelected)
	}
	return c.bucket, nil
}

func (c *Client) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, level, msg, attrs...)
}
