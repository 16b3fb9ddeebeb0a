package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/s3batch/internal/s3api"
)

// Operation names used by MemoryS3 hooks and counters.
const (
	OpListBuckets   = "ListBuckets"
	OpCreateBucket  = "CreateBucket"
	OpListObjects   = "ListObjectsV2"
	OpHeadObject    = "HeadObject"
	OpGetObject     = "GetObject"
	OpPutObject     = "PutObject"
	OpCopyObject    = "CopyObject"
	OpDeleteObjects = "DeleteObjects"
	OpDeleteObject  = "DeleteObject"
	OpPresign       = "PresignGetObject"
)

type memObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

// MemoryS3 is an in-memory object store implementing s3api.S3API and
// s3api.Presigner. Keys list in binary order and listings paginate with
// opaque continuation tokens.
//
// Object-level calls (get, put, copy, delete, presign) are instrumented:
// MaxInFlight reports the highest number that were ever executing at once.
type MemoryS3 struct {
	// Latency is added to every object-level call so overlapping calls are observable.
	Latency time.Duration

	// Fail, when set, is consulted before every call; a non-nil error fails it.
	// key is the object key, or the bucket name for bucket-level calls.
	Fail func(op, key string) error

	// Delay, when set, adds a per-call delay for object-level calls.
	// rng is the requested Range header for GetObject and empty otherwise.
	Delay func(op, key, rng string) time.Duration

	mu            sync.Mutex
	buckets       map[string]map[string]*memObject
	calls         map[string]int
	deleteBatches []int

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

// NewMemoryS3 creates a store holding the given empty buckets.
func NewMemoryS3(buckets ...string) *MemoryS3 {
	m := &MemoryS3{
		buckets: make(map[string]map[string]*memObject),
		calls:   make(map[string]int),
	}
	for _, b := range buckets {
		m.buckets[b] = make(map[string]*memObject)
	}
	return m
}

// Seed stores an object directly, bypassing hooks and counters.
func (m *MemoryS3) Seed(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.buckets[bucket]
	if !ok {
		objs = make(map[string]*memObject)
		m.buckets[bucket] = objs
	}
	objs[key] = &memObject{data: slices.Clone(data), modified: time.Now()}
}

// Object returns a copy of the stored object's bytes.
func (m *MemoryS3) Object(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return slices.Clone(obj.data), true
}

// ContentType returns the content type recorded for a stored object.
func (m *MemoryS3) ContentType(bucket, key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.buckets[bucket][key]; ok {
		return obj.contentType
	}
	return ""
}

// Metadata returns the user metadata recorded for a stored object.
func (m *MemoryS3) Metadata(bucket, key string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.buckets[bucket][key]; ok {
		return obj.metadata
	}
	return nil
}

// Keys returns the sorted keys of a bucket.
func (m *MemoryS3) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedKeysLocked(bucket, "")
}

// Calls returns how many times op was invoked.
func (m *MemoryS3) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// DeleteBatchSizes returns the number of keys in each DeleteObjects call, in call order.
func (m *MemoryS3) DeleteBatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.deleteBatches)
}

// MaxInFlight returns the peak number of concurrent object-level calls.
func (m *MemoryS3) MaxInFlight() int {
	return int(m.maxInFlight.Load())
}

func (m *MemoryS3) record(op, key string) error {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail(op, key)
	}
	return nil
}

// enter marks an object-level call as executing and sleeps for the configured latency.
func (m *MemoryS3) enter(ctx context.Context, op, key, rng string) (func(), error) {
	current := m.inFlight.Add(1)
	for {
		peak := m.maxInFlight.Load()
		if current <= peak || m.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}
	done := func() { m.inFlight.Add(-1) }

	wait := m.Latency
	if m.Delay != nil {
		wait += m.Delay(op, key, rng)
	}
	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			done()
			return nil, ctx.Err()
		}
	}
	return done, nil
}

func (m *MemoryS3) sortedKeysLocked(bucket, prefix string) []string {
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// ListBuckets returns every bucket in name order.
func (m *MemoryS3) ListBuckets(
	_ context.Context,
	_ *s3.ListBucketsInput,
	_ ...func(*s3.Options),
) (*s3.ListBucketsOutput, error) {
	if err := m.record(OpListBuckets, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.buckets))
	for name := range m.buckets {
		names = append(names, name)
	}
	slices.Sort(names)
	out := &s3.ListBucketsOutput{}
	for _, name := range names {
		out.Buckets = append(out.Buckets, awstypes.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

// CreateBucket creates an empty bucket.
func (m *MemoryS3) CreateBucket(
	_ context.Context,
	params *s3.CreateBucketInput,
	_ ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	name := aws.ToString(params.Bucket)
	if err := m.record(OpCreateBucket, name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[name]; ok {
		return nil, &awstypes.BucketAlreadyOwnedByYou{}
	}
	m.buckets[name] = make(map[string]*memObject)
	return &s3.CreateBucketOutput{}, nil
}

// ListObjectsV2 lists keys under the prefix, MaxKeys at a time.
func (m *MemoryS3) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	bucket := aws.ToString(params.Bucket)
	if err := m.record(OpListObjects, aws.ToString(params.Prefix)); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		return nil, &awstypes.NoSuchBucket{}
	}

	maxKeys := int(aws.ToInt32(params.MaxKeys))
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000
	}

	keys := m.sortedKeysLocked(bucket, aws.ToString(params.Prefix))
	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		after, err := url.QueryUnescape(strings.TrimPrefix(token, "after:"))
		if err != nil {
			return nil, fmt.Errorf("invalid continuation token %q", token)
		}
		start, _ = slices.BinarySearch(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}

	end := min(start+maxKeys, len(keys))
	out := &s3.ListObjectsV2Output{
		Name:     params.Bucket,
		Prefix:   params.Prefix,
		MaxKeys:  aws.Int32(int32(maxKeys)),
		KeyCount: aws.Int32(int32(end - start)),
	}
	for _, k := range keys[start:end] {
		obj := m.buckets[bucket][k]
		out.Contents = append(out.Contents, awstypes.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
			ETag:         aws.String(fmt.Sprintf("\"%x\"", len(obj.data))),
			StorageClass: awstypes.ObjectStorageClassStandard,
		})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("after:" + url.QueryEscape(keys[end-1]))
	} else {
		out.IsTruncated = aws.Bool(false)
	}
	return out, nil
}

// HeadObject reports the size of an object.
func (m *MemoryS3) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	key := aws.ToString(params.Key)
	if err := m.record(OpHeadObject, key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[aws.ToString(params.Bucket)][key]
	if !ok {
		return nil, &awstypes.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		Metadata:      obj.metadata,
	}, nil
}

// GetObject returns an object, or the inclusive byte range named by params.Range.
func (m *MemoryS3) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	rng := aws.ToString(params.Range)
	done, err := m.enter(ctx, OpGetObject, key, rng)
	if err != nil {
		return nil, err
	}
	defer done()
	if err := m.record(OpGetObject, key); err != nil {
		return nil, err
	}

	m.mu.Lock()
	obj, ok := m.buckets[aws.ToString(params.Bucket)][key]
	var data []byte
	if ok {
		data = slices.Clone(obj.data)
	}
	m.mu.Unlock()
	if !ok {
		return nil, &awstypes.NoSuchKey{}
	}

	if rng != "" {
		var start, end int
		if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", rng, err)
		}
		if start < 0 || start >= len(data) || end < start {
			return nil, fmt.Errorf("range %q not satisfiable for %d bytes", rng, len(data))
		}
		data = data[start:min(end+1, len(data))]
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// PutObject stores the request body.
func (m *MemoryS3) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	key := aws.ToString(params.Key)
	done, err := m.enter(ctx, OpPutObject, key, "")
	if err != nil {
		return nil, err
	}
	defer done()
	if err := m.record(OpPutObject, key); err != nil {
		return nil, err
	}

	var data []byte
	if params.Body != nil {
		if data, err = io.ReadAll(params.Body); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &awstypes.NoSuchBucket{}
	}
	objs[key] = &memObject{
		data:        data,
		contentType: aws.ToString(params.ContentType),
		metadata:    params.Metadata,
		modified:    time.Now(),
	}
	return &s3.PutObjectOutput{ETag: aws.String(fmt.Sprintf("\"%x\"", len(data)))}, nil
}

// CopyObject copies an object within the store. CopySource is "bucket/escaped-key".
func (m *MemoryS3) CopyObject(
	ctx context.Context,
	params *s3.CopyObjectInput,
	_ ...func(*s3.Options),
) (*s3.CopyObjectOutput, error) {
	srcBucket, rawKey, _ := strings.Cut(aws.ToString(params.CopySource), "/")
	srcKey, err := url.PathUnescape(rawKey)
	if err != nil {
		return nil, fmt.Errorf("invalid copy source %q: %w", aws.ToString(params.CopySource), err)
	}

	done, err := m.enter(ctx, OpCopyObject, srcKey, "")
	if err != nil {
		return nil, err
	}
	defer done()
	if err := m.record(OpCopyObject, srcKey); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.buckets[srcBucket][srcKey]
	if !ok {
		return nil, &awstypes.NoSuchKey{}
	}
	dst, ok := m.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &awstypes.NoSuchBucket{}
	}
	dst[aws.ToString(params.Key)] = &memObject{
		data:        slices.Clone(src.data),
		contentType: src.contentType,
		metadata:    src.metadata,
		modified:    time.Now(),
	}
	return &s3.CopyObjectOutput{}, nil
}

// DeleteObjects removes the listed keys. Missing keys count as deleted.
// Fail is consulted with OpDeleteObjects and the bucket for the whole call,
// then with OpDeleteObject for each key; rejected keys are reported in Errors.
func (m *MemoryS3) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	bucket := aws.ToString(params.Bucket)
	done, err := m.enter(ctx, OpDeleteObjects, bucket, "")
	if err != nil {
		return nil, err
	}
	defer done()

	var identifiers []awstypes.ObjectIdentifier
	if params.Delete != nil {
		identifiers = params.Delete.Objects
	}

	m.mu.Lock()
	m.deleteBatches = append(m.deleteBatches, len(identifiers))
	m.mu.Unlock()

	if err := m.record(OpDeleteObjects, bucket); err != nil {
		return nil, err
	}
	if len(identifiers) > 1000 {
		return nil, fmt.Errorf("MalformedXML: %d keys exceeds 1000", len(identifiers))
	}

	out := &s3.DeleteObjectsOutput{}
	for _, id := range identifiers {
		key := aws.ToString(id.Key)
		if m.Fail != nil {
			if ferr := m.Fail(OpDeleteObject, key); ferr != nil {
				out.Errors = append(out.Errors, awstypes.Error{
					Key:     id.Key,
					Code:    aws.String("InternalError"),
					Message: aws.String(ferr.Error()),
				})
				continue
			}
		}
		m.mu.Lock()
		delete(m.buckets[bucket], key)
		m.mu.Unlock()
		out.Deleted = append(out.Deleted, awstypes.DeletedObject{Key: id.Key})
	}
	return out, nil
}

// PresignGetObject returns a fake URL that embeds the bucket, key and expiry.
func (m *MemoryS3) PresignGetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	key := aws.ToString(params.Key)
	done, err := m.enter(ctx, OpPresign, key, "")
	if err != nil {
		return nil, err
	}
	defer done()
	if err := m.record(OpPresign, key); err != nil {
		return nil, err
	}

	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &v4.PresignedHTTPRequest{
		Method: "GET",
		URL: fmt.Sprintf("https://%s.memory.invalid/%s?X-Amz-Expires=%d",
			aws.ToString(params.Bucket), key, int64(opts.Expires/time.Second)),
	}, nil
}

var (
	_ s3api.S3API     = (*MemoryS3)(nil)
	_ s3api.Presigner = (*MemoryS3)(nil)
)
