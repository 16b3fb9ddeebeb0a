package delete

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/s3types"
)

// MaxBatchSize is the most keys one DeleteObjects call accepts.
const MaxBatchSize = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	DeleteObjects(
		ctx context.Context,
		input *s3.DeleteObjectsInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// BatchDeleter handles batch deletion of S3 objects.
type BatchDeleter struct {
	client       S3Interface
	maxBatchSize int
}

// New creates a new BatchDeleter using the S3 maximum batch size.
func New(client S3Interface) *BatchDeleter {
	return &BatchDeleter{
		client:       client,
		maxBatchSize: MaxBatchSize,
	}
}

// Split partitions keys into consecutive batches of at most MaxBatchSize keys.
// The batches share the backing array of keys.
func (b *BatchDeleter) Split(keys []string) [][]string {
	if len(keys) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(keys)+b.maxBatchSize-1)/b.maxBatchSize)
	for i := 0; i < len(keys); i += b.maxBatchSize {
		end := min(i+b.maxBatchSize, len(keys))
		batches = append(batches, keys[i:end])
	}
	return batches
}

// DeleteBatch deletes one batch of at most MaxBatchSize keys and returns one
// outcome per key, in the order of keys. Keys the store reports as failed
// carry that failure; when the call itself fails every key carries its error.
func (b *BatchDeleter) DeleteBatch(ctx context.Context, bucket string, keys []string) []s3types.Outcome {
	outcomes := make([]s3types.Outcome, len(keys))
	for i, key := range keys {
		outcomes[i] = s3types.Outcome{Key: key}
	}
	if len(keys) == 0 {
		return outcomes
	}
	if len(keys) > b.maxBatchSize {
		err := errors.NewError("deleteBatch", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(fmt.Sprintf("batch of %d keys exceeds %d", len(keys), b.maxBatchSize))
		for i := range outcomes {
			outcomes[i].Err = err
		}
		return outcomes
	}

	identifiers := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: identifiers,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		batchErr := errors.NewError("deleteBatch", errors.FromAWS(err)).WithBucket(bucket)
		for i := range outcomes {
			outcomes[i].Err = batchErr
		}
		return outcomes
	}

	failed := make(map[string]error, len(output.Errors))
	for _, e := range output.Errors {
		key := aws.ToString(e.Key)
		failed[key] = errors.NewObjectError("delete", bucket, key,
			fmt.Errorf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message)))
	}
	for i := range outcomes {
		outcomes[i].Err = failed[outcomes[i].Key]
	}
	return outcomes
}
