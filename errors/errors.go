// Package errors provides error types and handling for s3batch operations.
package errors

import (
	"errors"
	"fmt"
	"strings"

	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Error represents an S3 operation error with context about the operation that failed.
// It wraps the underlying AWS SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "upload", "download", "remove")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key or prefix (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3batch.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3batch.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3batch.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3batch.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the classification of the wrapped error.
func (e *Error) Kind() Kind {
	return KindOf(e.Err)
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrBucketNotSelected indicates that no bucket has been selected on the client
	ErrBucketNotSelected = errors.New("s3batch: bucket is not selected")

	// ErrBucketUnavailable indicates that the bucket is not among the account's buckets
	ErrBucketUnavailable = errors.New("s3batch: bucket is unavailable")

	// ErrAlreadyExists indicates that the destination exists and overwrite was not requested
	ErrAlreadyExists = errors.New("s3batch: already exists")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3batch: object not found")

	// ErrBucketNotFound indicates that the bucket reported by the store does not exist
	ErrBucketNotFound = errors.New("s3batch: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3batch: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3batch: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3batch: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3batch: invalid object key")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAlreadyExists checks if an error indicates that a destination already exists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsBucketNotSelected checks if an error was caused by a missing bucket selection.
func IsBucketNotSelected(err error) bool {
	return errors.Is(err, ErrBucketNotSelected)
}

// classified keeps the original SDK error in the chain while also matching a sentinel.
type classified struct {
	sentinel error
	err      error
}

func (c *classified) Error() string { return c.err.Error() }

func (c *classified) Unwrap() []error { return []error{c.sentinel, c.err} }

// FromAWS maps AWS SDK errors onto the sentinel errors of this package.
// The returned error matches both the sentinel and the original error.
func FromAWS(err error) error {
	if err == nil {
		return nil
	}

	var (
		noSuchKey    *awstypes.NoSuchKey
		notFound     *awstypes.NotFound
		noSuchBucket *awstypes.NoSuchBucket
		apiErr       smithy.APIError
	)

	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &notFound):
		return &classified{sentinel: ErrObjectNotFound, err: err}
	case errors.As(err, &noSuchBucket):
		return &classified{sentinel: ErrBucketNotFound, err: err}
	case errors.As(err, &apiErr):
		switch code := apiErr.ErrorCode(); {
		case code == "NoSuchKey" || code == "NotFound":
			return &classified{sentinel: ErrObjectNotFound, err: err}
		case code == "NoSuchBucket":
			return &classified{sentinel: ErrBucketNotFound, err: err}
		case strings.HasPrefix(code, "AccessDenied") || code == "Forbidden":
			return &classified{sentinel: ErrAccessDenied, err: err}
		}
	}

	return err
}
