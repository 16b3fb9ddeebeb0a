package download

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/pool"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	HeadObject(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Downloader handles S3 download operations.
type Downloader struct {
	client S3Interface
}

// New creates a new Downloader instance.
func New(client S3Interface) *Downloader {
	return &Downloader{
		client: client,
	}
}

// Range is an inclusive byte range of an object.
type Range struct {
	Start int64
	End   int64
}

// Header renders the range as an HTTP Range header value.
func (r Range) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Len is the number of bytes covered by the range.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// ChunkRanges splits an object of size bytes into ceil(size/chunkSize)
// consecutive ranges. The last range may be shorter. chunkSize must be positive.
func ChunkRanges(size, chunkSize int64) []Range {
	if size <= 0 || chunkSize <= 0 {
		return nil
	}
	n := (size + chunkSize - 1) / chunkSize
	ranges := make([]Range, 0, n)
	for start := int64(0); start < size; start += chunkSize {
		end := min(start+chunkSize, size) - 1
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// Size returns the size of bucket/key in bytes.
// A missing object is reported as errors.ErrObjectNotFound.
func (d *Downloader) Size(ctx context.Context, bucket, key string) (int64, error) {
	output, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, errors.NewObjectError("head", bucket, key, errors.FromAWS(err))
	}
	return aws.ToInt64(output.ContentLength), nil
}

// ReadRange fetches the bytes of one range of bucket/key.
func (d *Downloader) ReadRange(ctx context.Context, bucket, key string, r Range) ([]byte, error) {
	output, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(r.Header()),
	})
	if err != nil {
		return nil, errors.NewObjectError("getRange", bucket, key, errors.FromAWS(err))
	}
	defer output.Body.Close()

	data := make([]byte, 0, r.Len())
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	if _, err := buf.ReadFrom(output.Body); err != nil {
		return nil, errors.NewObjectError("getRange", bucket, key, err).
			WithMessage(fmt.Sprintf("read %s", r.Header()))
	}
	return append(data, buf.Bytes()...), nil
}

// ToFile streams bucket/key into filename on fs, creating or truncating it.
// A partially written file is removed when the transfer fails.
func (d *Downloader) ToFile(ctx context.Context, bucket, key string, fs billy.Filesystem, filename string) (int64, error) {
	output, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, errors.NewObjectError("download", bucket, key, errors.FromAWS(err))
	}
	defer output.Body.Close()

	file, err := fs.Create(filename)
	if err != nil {
		return 0, errors.NewObjectError("download", bucket, key, err).
			WithMessage("create " + filename)
	}

	buf := pool.GetCopyBuffer()
	defer pool.PutCopyBuffer(buf)

	written, err := io.CopyBuffer(file, output.Body, *buf)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fs.Remove(filename)
		return 0, errors.NewObjectError("download", bucket, key, err).
			WithMessage("write " + filename)
	}
	return written, nil
}
