package upload

import (
	"context"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/s3types"
)

// DefaultContentType is used when neither the data nor the name identify a type.
const DefaultContentType = "application/octet-stream"

// SniffLen is how many leading bytes DetectContentType inspects.
const SniffLen = 3072

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader handles single-object S3 uploads.
type Uploader struct {
	client S3Interface
}

// New creates a new Uploader instance.
func New(client S3Interface) *Uploader {
	return &Uploader{
		client: client,
	}
}

// Put uploads size bytes from body to bucket/key with a single PutObject call.
// cfg.ContentType must already be resolved; an empty value is sent as DefaultContentType.
func (u *Uploader) Put(
	ctx context.Context,
	bucket, key string,
	body io.Reader,
	size int64,
	cfg *s3types.UploadOptionConfig,
) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(DefaultContentType),
	}
	applyOptions(input, cfg)

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("put", bucket, key, errors.FromAWS(err))
	}
	return nil
}

func applyOptions(input *s3.PutObjectInput, cfg *s3types.UploadOptionConfig) {
	if cfg == nil {
		return
	}
	if cfg.ContentType != "" {
		input.ContentType = aws.String(cfg.ContentType)
	}
	if len(cfg.Metadata) > 0 {
		input.Metadata = cfg.Metadata
	}
	if cfg.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(cfg.StorageClass)
	}
	if cfg.ACL != "" {
		input.ACL = awstypes.ObjectCannedACL(cfg.ACL)
	}
	if cfg.SSE != nil {
		switch cfg.SSE.Type {
		case s3types.SSES3:
			input.ServerSideEncryption = awstypes.ServerSideEncryptionAes256
		case s3types.SSEKMS:
			input.ServerSideEncryption = awstypes.ServerSideEncryptionAwsKms
			if cfg.SSE.KMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(cfg.SSE.KMSKeyID)
			}
		}
	}
}

// DetectContentType resolves the content type of an upload from its leading
// bytes, falling back to the extension of name and then to DefaultContentType.
// Generic sniffing results (plain text, octet-stream) defer to a known extension.
func DetectContentType(name string, head []byte) string {
	byExt := mime.TypeByExtension(path.Ext(name))

	if len(head) > 0 {
		mt := mimetype.Detect(head)
		generic := mt.Is("application/octet-stream") || mt.Is("text/plain")
		if !generic || byExt == "" {
			return mt.String()
		}
	}

	if byExt != "" {
		return byExt
	}
	return DefaultContentType
}
