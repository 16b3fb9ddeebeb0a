package s3batch

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/s3batch/errors"
)

// DefaultURLExpiry is the lifetime of presigned URLs when none is given.
const DefaultURLExpiry = time.Hour

// GetURLs returns a presigned GET URL valid for ttl for every object under
// prefix, keyed by object key. ttl <= 0 uses DefaultURLExpiry.
// Objects that could not be presigned are left out of the map and their
// errors are joined into the returned error.
func (c *Client) GetURLs(ctx context.Context, prefix string, ttl time.Duration) (map[string]string, error) {
	bucket, err := c.requireBucket("getURLs")
	if err != nil {
		return nil, err
	}
	if c.presigner == nil {
		return nil, errors.NewError("getURLs", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("no presigner configured")
	}
	if ttl <= 0 {
		ttl = DefaultURLExpiry
	}

	objects, err := c.collect(ctx, "getURLs", bucket, prefix)
	if err != nil {
		return nil, err
	}
	c.logStart(ctx, "getURLs", bucket, prefix, len(objects))

	outcomes := outcomesFor(objects)
	c.scheduler.Run(ctx, len(outcomes), func(ctx context.Context, i int) {
		o := &outcomes[i]
		o.Err = c.limiter.Do(ctx, func(ctx context.Context) error {
			req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(o.Key),
			}, s3.WithPresignExpires(ttl))
			if err != nil {
				return errors.NewObjectError("presign", bucket, o.Key, errors.FromAWS(err))
			}
			o.Target = req.URL
			return nil
		})
	})

	urls := make(map[string]string, len(outcomes))
	var errs []error
	for _, o := range outcomes {
		if o.OK() {
			urls[o.Key] = o.Target
			continue
		}
		errs = append(errs, o.Err)
	}

	c.logOutcomes(ctx, "getURLs", bucket, prefix, outcomes)
	return urls, stderrors.Join(errs...)
}
