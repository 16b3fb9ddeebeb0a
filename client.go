package s3batch

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/limiter"
	copyop "github.com/input-output-hk/s3batch/internal/operations/copy"
	deleteop "github.com/input-output-hk/s3batch/internal/operations/delete"
	"github.com/input-output-hk/s3batch/internal/operations/download"
	"github.com/input-output-hk/s3batch/internal/operations/list"
	"github.com/input-output-hk/s3batch/internal/operations/upload"
	"github.com/input-output-hk/s3batch/internal/s3api"
	"github.com/input-output-hk/s3batch/internal/scheduler"
	"github.com/input-output-hk/s3batch/s3types"
)

const defaultRegion = "us-east-1"

// Client runs batch operations against one selected bucket.
// It is safe for concurrent use; every batch call shares the client's
// concurrency limit.
type Client struct {
	// api is the underlying S3 API client
	api s3api.S3API

	// presigner produces presigned URLs; nil when none is available
	presigner s3api.Presigner

	// config holds the AWS configuration the client was built from
	config aws.Config

	// fs is the local filesystem used by uploads and downloads
	fs billy.Filesystem

	// logger is nil when logging is disabled
	logger *slog.Logger

	limiter   *limiter.Limiter
	scheduler scheduler.Scheduler
	pageSize  int32

	lister     *list.Lister
	uploader   *upload.Uploader
	downloader *download.Downloader
	copier     *copyop.Copier
	deleter    *deleteop.BatchDeleter

	// mu protects bucket
	mu     sync.RWMutex
	bucket string
}

func defaultClientConfig() *s3types.ClientConfig {
	return &s3types.ClientConfig{
		Concurrency: limiter.DefaultCapacity,
		Scheduling:  s3types.SchedulingParallel,
		PageSize:    list.MaxPageSize,
	}
}

// New creates a client backed by the AWS SDK. Credentials, region and the
// rest of the AWS configuration come from the default credential chain
// unless overridden by options.
//
// Example:
//
//	client, err := s3batch.New(
//	    s3batch.WithEndpoint("http://localhost:4566"),
//	    s3batch.WithForcePathStyle(true),
//	    s3batch.WithBucket("uploads"),
//	)
func New(opts ...s3types.Option) (*Client, error) {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(clientCfg.Region))
		}
		if clientCfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					clientCfg.AccessKeyID,
					clientCfg.SecretAccessKey,
					clientCfg.SessionToken,
				),
			))
		}

		var err error
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	httpClient := clientCfg.HTTPClient
	if httpClient == nil && clientCfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: clientCfg.Timeout}
	}
	if httpClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)
	if clientCfg.Presigner == nil {
		clientCfg.Presigner = s3.NewPresignClient(s3Client)
	}

	client, err := newClient(s3Client, clientCfg)
	if err != nil {
		return nil, err
	}
	client.config = cfg
	return client, nil
}

// NewWithClient creates a client around a custom S3API implementation.
// This is primarily used for testing with mocked clients.
// When no presigner is configured, api is used as one if it can presign.
func NewWithClient(api s3api.S3API, opts ...s3types.Option) (*Client, error) {
	if api == nil {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("S3 API client cannot be nil")
	}

	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	if clientCfg.Presigner == nil {
		switch p := api.(type) {
		case *s3.Client:
			clientCfg.Presigner = s3.NewPresignClient(p)
		case s3api.Presigner:
			clientCfg.Presigner = p
		}
	}

	return newClient(api, clientCfg)
}

func newClient(api s3api.S3API, clientCfg *s3types.ClientConfig) (*Client, error) {
	sched, err := scheduler.New(clientCfg.Scheduling)
	if err != nil {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		// Default to OS filesystem rooted at /
		filesystem = osfs.New("/")
	}

	pageSize := clientCfg.PageSize
	if pageSize <= 0 || pageSize > list.MaxPageSize {
		pageSize = list.MaxPageSize
	}

	return &Client{
		api:        api,
		presigner:  clientCfg.Presigner,
		fs:         filesystem,
		logger:     clientCfg.Logger,
		limiter:    limiter.New(clientCfg.Concurrency),
		scheduler:  sched,
		pageSize:   pageSize,
		lister:     list.New(api),
		uploader:   upload.New(api),
		downloader: download.New(api),
		copier:     copyop.New(api),
		deleter:    deleteop.New(api),
		bucket:     clientCfg.Bucket,
	}, nil
}

// Concurrency returns the client's concurrency limit.
func (c *Client) Concurrency() int {
	return c.limiter.Capacity()
}

// Scheduling returns the scheduling mode used for batch calls.
func (c *Client) Scheduling() s3types.SchedulingMode {
	return c.scheduler.Mode()
}

// Close releases any resources held by the client.
// The client holds no connections of its own; Close exists so callers can
// scope a client the same way as other closable resources.
func (c *Client) Close() error {
	return nil
}
