package s3batch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/s3batch/internal/s3api"
	"github.com/input-output-hk/s3batch/s3types"
)

// WithBucket selects a bucket at construction time.
// The name is trusted: no network call is made to confirm it exists.
// Use SelectBucket to select a bucket with validation.
func WithBucket(bucket string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Bucket = bucket
	}
}

// WithConcurrency sets how many object-level operations may run at once
// across all batch calls of the client. Default is 5.
func WithConcurrency(concurrency int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithScheduling selects whether the tasks of one batch call are launched
// together (SchedulingParallel, the default) or run one at a time.
func WithScheduling(mode s3types.SchedulingMode) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Scheduling = mode
	}
}

// WithPageSize sets the number of keys requested per listing page (1-1000).
// Default is 1000.
func WithPageSize(pageSize int32) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if pageSize > 0 {
			c.PageSize = pageSize
		}
	}
}

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCredentials sets static credentials instead of the default credential chain.
// sessionToken may be empty.
func WithCredentials(accessKeyID, secretAccessKey, sessionToken string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
		c.SessionToken = sessionToken
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of attempts the SDK retryer makes per request.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP client timeout for individual requests.
// Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior, including WithCredentials.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithPresigner overrides the presigner used by GetURLs.
func WithPresigner(presigner s3api.Presigner) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Presigner = presigner
	}
}

// WithFilesystem sets the local filesystem used by uploads and downloads.
// Default is the OS filesystem rooted at /.
func WithFilesystem(fs billy.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = fs
	}
}

// WithLogger sets the structured logger. Logging is disabled by default.
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithContentType sets the Content-Type of an upload instead of detecting it.
func WithContentType(contentType string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata attaches user metadata to an upload.
func WithMetadata(metadata map[string]string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.Metadata = metadata
	}
}

// WithStorageClass sets the storage class of an upload.
func WithStorageClass(class s3types.StorageClass) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.StorageClass = class
	}
}

// WithServerSideEncryption requests server-side encryption for an upload.
// kmsKeyID is only used with SSEKMS and may be empty to use the default key.
func WithServerSideEncryption(sseType s3types.SSEType, kmsKeyID string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.SSE = &s3types.SSEConfig{Type: sseType, KMSKeyID: kmsKeyID}
	}
}

// WithACL sets the canned ACL of an upload.
func WithACL(acl s3types.ObjectACL) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ACL = acl
	}
}
