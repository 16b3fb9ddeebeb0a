package validation

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/s3types"
)

const (
	// MaxKeyLength is the longest object key S3 accepts, in bytes.
	MaxKeyLength = 1024

	maxMetadataKeyLength   = 128
	maxMetadataValueLength = 2048
)

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	fail := func(msg string) error {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(msg)
	}

	if len(bucket) < 3 || len(bucket) > 63 {
		return fail("bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return fail("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := bucket[0], bucket[len(bucket)-1]
	if !isAlphaNum(first) || !isAlphaNum(last) {
		return fail("bucket name must start and end with a letter or number")
	}

	if strings.Contains(bucket, "..") {
		return fail("bucket name cannot contain two adjacent periods")
	}

	if looksLikeIPv4(bucket) {
		return fail("bucket name cannot be formatted as an IP address")
	}

	return nil
}

// ValidateObjectKey validates a key named directly by the caller.
// S3 keys are arbitrary UTF-8, so only emptiness, length and control
// characters are rejected here; local path safety is checked by LocalPath.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot be empty")
	}
	return checkKeyText("validateObjectKey", errors.ErrInvalidObjectKey, key)
}

// ValidatePrefix validates a listing prefix. The empty prefix selects the
// whole bucket and is valid.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	return checkKeyText("validatePrefix", errors.ErrInvalidInput, prefix)
}

// ValidateChunkSize rejects non-positive chunk sizes for ranged downloads.
func ValidateChunkSize(size int64) error {
	if size <= 0 {
		return errors.NewError("validateChunkSize", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("chunk size must be positive, got %d", size))
	}
	return nil
}

// ValidateMetadata validates metadata keys and values according to S3 rules.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if key == "" {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata key cannot be empty")
		}
		if len(key) > maxMetadataKeyLength {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata key %q exceeds %d characters", key, maxMetadataKeyLength))
		}
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "x-amz-") || strings.HasPrefix(lower, "aws:") {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata key %q uses a reserved prefix", key))
		}
		for _, char := range key {
			if char <= ' ' || char > '~' {
				return errors.NewError("validateMetadata", errors.ErrInvalidInput).
					WithMessage(fmt.Sprintf("metadata key %q must be printable ASCII without spaces", key))
			}
		}
		if len(value) > maxMetadataValueLength {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata value for %q exceeds %d characters", key, maxMetadataValueLength))
		}
	}
	return nil
}

// ValidateUploadOptions checks the per-call upload configuration.
func ValidateUploadOptions(cfg *s3types.UploadOptionConfig) error {
	if cfg == nil {
		return nil
	}
	if err := ValidateMetadata(cfg.Metadata); err != nil {
		return err
	}
	switch cfg.ACL {
	case "", s3types.ACLPrivate, s3types.ACLPublicRead, s3types.ACLAuthenticatedRead,
		s3types.ACLBucketOwnerRead, s3types.ACLBucketOwnerFullControl:
	default:
		return errors.NewError("validateUploadOptions", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unsupported ACL %q", cfg.ACL))
	}
	if cfg.SSE != nil {
		switch cfg.SSE.Type {
		case s3types.SSES3:
			if cfg.SSE.KMSKeyID != "" {
				return errors.NewError("validateUploadOptions", errors.ErrInvalidInput).
					WithMessage("a KMS key id requires SSE-KMS")
			}
		case s3types.SSEKMS:
		default:
			return errors.NewError("validateUploadOptions", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("unsupported server-side encryption %q", cfg.SSE.Type))
		}
	}
	return nil
}

// LocalPath maps an object key to a slash-separated path relative to the
// download root. The prefix is stripped from the key (leading slashes
// trimmed); a key equal to the prefix maps to its base name. Keys whose
// path would escape the root, or that name a directory, are rejected.
func LocalPath(key, prefix string) (string, error) {
	if strings.HasSuffix(key, "/") {
		return "", errors.NewError("localPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key is a directory marker")
	}

	var rel string
	if key == prefix {
		rel = path.Base(key)
	} else {
		rel = strings.TrimLeft(strings.TrimPrefix(key, prefix), "/")
	}

	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", errors.NewError("localPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key does not name a file")
	}

	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.NewError("localPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key resolves outside the destination directory")
	}

	return cleaned, nil
}

func checkKeyText(op string, sentinel error, key string) error {
	if len(key) > MaxKeyLength {
		return errors.NewError(op, sentinel).
			WithKey(key).
			WithMessage(fmt.Sprintf("cannot exceed %d bytes", MaxKeyLength))
	}
	for _, char := range key {
		if unicode.IsControl(char) {
			return errors.NewError(op, sentinel).
				WithKey(key).
				WithMessage("cannot contain control characters")
		}
	}
	return nil
}

func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

func isAlphaNum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z')
}

// looksLikeIPv4 reports whether s has the shape of a dotted quad.
func looksLikeIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return false
			}
		}
	}
	return true
}
