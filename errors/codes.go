package errors

import (
	"errors"
)

// Kind classifies a failure reported by the client.
// Kinds are string-based so they read well in logs and CLI output.
type Kind string

const (
	// KindBucketNotSelected indicates an operation ran before a bucket was selected.
	KindBucketNotSelected Kind = "BUCKET_NOT_SELECTED"

	// KindBucketUnavailable indicates the requested bucket is not visible to the account.
	KindBucketUnavailable Kind = "BUCKET_UNAVAILABLE"

	// KindAlreadyExists indicates a destination (object or local file) already exists
	// and overwriting was not requested.
	KindAlreadyExists Kind = "ALREADY_EXISTS"

	// KindNotFound indicates a probed object does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindInvalidInput indicates the caller supplied an unusable argument.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindUnderlying wraps any failure reported by the object store itself
	// (network, auth, throttling, ...).
	KindUnderlying Kind = "UNDERLYING"
)

// KindOf reports the Kind of err. A nil error has the empty Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBucketNotSelected):
		return KindBucketNotSelected
	case errors.Is(err, ErrBucketUnavailable):
		return KindBucketUnavailable
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidBucketName),
		errors.Is(err, ErrInvalidObjectKey):
		return KindInvalidInput
	default:
		return KindUnderlying
	}
}
