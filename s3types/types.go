// Package s3types provides shared type definitions for the s3batch module.
package s3types

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/s3batch/internal/s3api"
)

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"

	// StorageClassGlacierIR provides Glacier Instant Retrieval storage
	StorageClassGlacierIR StorageClass = "GLACIER_IR"
)

// SSEType represents the server-side encryption type for objects.
type SSEType string

// Predefined server-side encryption types
const (
	// SSES3 uses S3-managed encryption keys
	SSES3 SSEType = "AES256"

	// SSEKMS uses AWS KMS-managed encryption keys
	SSEKMS SSEType = "aws:kms"
)

// ObjectACL represents the canned access control list for S3 objects.
type ObjectACL string

// Predefined object ACLs
const (
	ACLPrivate                ObjectACL = "private"
	ACLPublicRead             ObjectACL = "public-read"
	ACLAuthenticatedRead      ObjectACL = "authenticated-read"
	ACLBucketOwnerRead        ObjectACL = "bucket-owner-read"
	ACLBucketOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// SchedulingMode selects how the per-object tasks of one batch call are run.
type SchedulingMode string

const (
	// SchedulingParallel launches every task of a batch at once; the client's
	// concurrency limit caps how many perform I/O simultaneously.
	SchedulingParallel SchedulingMode = "parallel"

	// SchedulingSequential runs the tasks of a batch one after another.
	SchedulingSequential SchedulingMode = "sequential"
)

// Object represents an S3 object with its basic metadata, as produced by listing.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class
	StorageClass string
}

// Outcome is the per-object result of a batch operation.
type Outcome struct {
	// Key is the targeted source object key
	Key string

	// Target is the destination key for copy and move, or the local path for download
	Target string

	// Err is nil when the object was processed successfully
	Err error
}

// OK reports whether the object was processed successfully.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// SSEConfig contains server-side encryption configuration.
type SSEConfig struct {
	// Type is the encryption type (S3 or KMS)
	Type SSEType

	// KMSKeyID is the KMS key ID (SSE-KMS only)
	KMSKeyID string
}

// Configuration types for functional options

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	Bucket          string
	Concurrency     int
	Scheduling      SchedulingMode
	PageSize        int32
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ForcePathStyle  bool
	MaxRetries      int
	Timeout         time.Duration
	CustomAWSConfig *aws.Config
	HTTPClient      *http.Client
	Presigner       s3api.Presigner
	Filesystem      billy.Filesystem
	Logger          *slog.Logger
}

// UploadOptionConfig holds per-call configuration for upload operations.
type UploadOptionConfig struct {
	ContentType  string
	Metadata     map[string]string
	StorageClass StorageClass
	SSE          *SSEConfig
	ACL          ObjectACL
}

// Option is a functional option for configuring the client.
type (
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring upload operations.
	UploadOption func(*UploadOptionConfig)
)
