package errors

import (
	"errors"
	"fmt"
	"testing"

	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"bucket and key", NewObjectError("copy", "b", "k", cause), "s3batch.copy b/k: boom"},
		{"bucket only", NewError("remove", cause).WithBucket("b"), "s3batch.remove bucket b: boom"},
		{"key only", NewError("validate", cause).WithKey("k"), "s3batch.validate object k: boom"},
		{"bare", NewError("list", cause), "s3batch.list: boom"},
		{"with message", NewError("list", cause).WithMessage("page 2"), "s3batch.list: page 2: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"not selected", NewError("download", ErrBucketNotSelected), KindBucketNotSelected},
		{"unavailable", NewError("selectBucket", ErrBucketUnavailable), KindBucketUnavailable},
		{"already exists", NewObjectError("copy", "b", "k", ErrAlreadyExists), KindAlreadyExists},
		{"not found", fmt.Errorf("wrapped: %w", ErrObjectNotFound), KindNotFound},
		{"invalid input", ErrInvalidInput, KindInvalidInput},
		{"invalid bucket", ErrInvalidBucketName, KindInvalidInput},
		{"invalid key", ErrInvalidObjectKey, KindInvalidInput},
		{"anything else", errors.New("socket closed"), KindUnderlying},
		{"access denied", ErrAccessDenied, KindUnderlying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Kind(t *testing.T) {
	assert.Equal(t, KindAlreadyExists, NewError("upload", ErrAlreadyExists).Kind())
}

func TestFromAWS(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"no such key", &awstypes.NoSuchKey{}, ErrObjectNotFound},
		{"not found", &awstypes.NotFound{}, ErrObjectNotFound},
		{"no such bucket", &awstypes.NoSuchBucket{}, ErrBucketNotFound},
		{"generic no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, ErrObjectNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, ErrAccessDenied},
		{"forbidden", &smithy.GenericAPIError{Code: "Forbidden"}, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromAWS(fmt.Errorf("operation error S3: %w", tt.err))
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.sentinel)
		})
	}

	assert.NoError(t, FromAWS(nil))

	other := &smithy.GenericAPIError{Code: "SlowDown"}
	assert.Same(t, error(other), FromAWS(other))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsObjectNotFound(FromAWS(&awstypes.NoSuchKey{})))
	assert.True(t, IsAlreadyExists(NewError("copy", ErrAlreadyExists)))
	assert.True(t, IsBucketNotSelected(NewError("remove", ErrBucketNotSelected)))
	assert.False(t, IsAlreadyExists(errors.New("x")))
}
