package s3batch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/operations/upload"
	"github.com/input-output-hk/s3batch/internal/pool"
	"github.com/input-output-hk/s3batch/internal/validation"
	"github.com/input-output-hk/s3batch/s3types"
)

// UploadFile uploads the local file at localPath to key in the selected bucket.
// An empty key uses the base name of localPath. Unless overwrite is set, an
// existing object with exactly that key fails the call with ErrAlreadyExists
// before anything is written.
//
// The content type is taken from WithContentType, else sniffed from the
// file's leading bytes, else derived from its extension.
func (c *Client) UploadFile(
	ctx context.Context,
	localPath, key string,
	overwrite bool,
	opts ...s3types.UploadOption,
) error {
	bucket, err := c.requireBucket("uploadFile")
	if err != nil {
		return err
	}

	if key == "" {
		key = filepath.Base(localPath)
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	cfg := applyUploadOptions(opts)
	if err := validation.ValidateUploadOptions(cfg); err != nil {
		return err
	}

	if !overwrite {
		exists, err := c.keyExists(ctx, bucket, key)
		if err != nil {
			return errors.NewObjectError("uploadFile", bucket, key, err)
		}
		if exists {
			return errors.NewObjectError("uploadFile", bucket, key, errors.ErrAlreadyExists)
		}
	}

	info, err := c.fs.Stat(localPath)
	if err != nil {
		return errors.NewObjectError("uploadFile", bucket, key, err)
	}
	if info.IsDir() {
		return errors.NewObjectError("uploadFile", bucket, key, errors.ErrInvalidInput).
			WithMessage(localPath + " is a directory")
	}

	file, err := c.fs.Open(localPath)
	if err != nil {
		return errors.NewObjectError("uploadFile", bucket, key, err)
	}
	defer file.Close()

	if cfg.ContentType == "" {
		head := make([]byte, upload.SniffLen)
		n, err := io.ReadFull(file, head)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return errors.NewObjectError("uploadFile", bucket, key, err)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return errors.NewObjectError("uploadFile", bucket, key, err)
		}
		cfg.ContentType = upload.DetectContentType(localPath, head[:n])
	}

	c.log(ctx, slog.LevelDebug, "uploading file",
		slog.String("bucket", bucket), slog.String("key", key), slog.String("path", localPath))

	err = c.limiter.Do(ctx, func(ctx context.Context) error {
		return c.uploader.Put(ctx, bucket, key, file, info.Size(), cfg)
	})
	if err != nil {
		c.log(ctx, slog.LevelWarn, "upload failed",
			slog.String("bucket", bucket), slog.String("key", key), slog.Any("error", err))
		return err
	}

	c.log(ctx, slog.LevelInfo, "file uploaded",
		slog.String("bucket", bucket), slog.String("key", key), slog.Int64("size", info.Size()))
	return nil
}

// UploadStream reads stream to its end and uploads the bytes to key,
// replacing any existing object. If the call fails for any reason the
// stream is rewound to offset 0 so the caller can retry with it.
func (c *Client) UploadStream(
	ctx context.Context,
	stream io.ReadSeeker,
	key string,
	opts ...s3types.UploadOption,
) (err error) {
	defer func() {
		if err != nil && stream != nil {
			_, _ = stream.Seek(0, io.SeekStart)
		}
	}()

	bucket, err := c.requireBucket("uploadStream")
	if err != nil {
		return err
	}
	if stream == nil {
		return errors.NewObjectError("uploadStream", bucket, key, errors.ErrInvalidInput).
			WithMessage("stream cannot be nil")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	cfg := applyUploadOptions(opts)
	if err := validation.ValidateUploadOptions(cfg); err != nil {
		return err
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if _, err := buf.ReadFrom(stream); err != nil {
		return errors.NewObjectError("uploadStream", bucket, key, err).WithMessage("read stream")
	}

	data := buf.Bytes()
	if cfg.ContentType == "" {
		cfg.ContentType = upload.DetectContentType(key, data[:min(len(data), upload.SniffLen)])
	}

	err = c.limiter.Do(ctx, func(ctx context.Context) error {
		return c.uploader.Put(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), cfg)
	})
	if err != nil {
		c.log(ctx, slog.LevelWarn, "stream upload failed",
			slog.String("bucket", bucket), slog.String("key", key), slog.Any("error", err))
		return err
	}

	c.log(ctx, slog.LevelInfo, "stream uploaded",
		slog.String("bucket", bucket), slog.String("key", key), slog.Int("size", len(data)))
	return nil
}

func applyUploadOptions(opts []s3types.UploadOption) *s3types.UploadOptionConfig {
	cfg := &s3types.UploadOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
