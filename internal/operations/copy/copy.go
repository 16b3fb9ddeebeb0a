package copy

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/s3batch/errors"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	CopyObject(ctx context.Context, input *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// Copier handles server-side copies within one bucket.
type Copier struct {
	client S3Interface
}

// New creates a new Copier.
func New(client S3Interface) *Copier {
	return &Copier{
		client: client,
	}
}

// Copy copies bucket/srcKey to bucket/dstKey without moving data through the client.
func (c *Copier) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	source := CopySource(bucket, srcKey)
	_, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(source),
	})
	if err != nil {
		return errors.NewObjectError("copy", bucket, dstKey, errors.FromAWS(err)).
			WithMessage("copy from " + srcKey)
	}
	return nil
}

// CopySource renders the x-amz-copy-source value for bucket/key, escaping
// each key segment.
func CopySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// RewriteKey derives a destination key by replacing the first occurrence of
// prefix in key with dest. An empty prefix prepends dest.
func RewriteKey(key, prefix, dest string) string {
	return strings.Replace(key, prefix, dest, 1)
}
