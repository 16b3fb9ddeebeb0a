package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/s3batch"
	"github.com/input-output-hk/s3batch/internal/config"
	"github.com/input-output-hk/s3batch/s3types"
)

const clientKey = "client"

var bucketLevel = map[string]bool{"buckets": true, "create-bucket": true}

// setup resolves the configuration, applies flag overrides and stores the
// client in the app metadata.
func setup(c *cli.Context) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.String("config"),
		EnvFile:    c.String("env-file"),
	})
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client, err := s3batch.New(clientOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	// bucket-level commands must work before the bucket exists
	if !bucketLevel[c.Args().First()] {
		if err := selectConfigured(ctxOf(c), client, cfg.Bucket); err != nil {
			return err
		}
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[clientKey] = client
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("bucket") {
		cfg.Bucket = c.String("bucket")
	}
	if c.IsSet("region") {
		cfg.Region = c.String("region")
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if c.IsSet("path-style") {
		cfg.ForcePathStyle = c.Bool("path-style")
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("scheduling") {
		cfg.Scheduling = c.String("scheduling")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}

func clientOptions(cfg *config.Config, logger *slog.Logger) []s3types.Option {
	opts := []s3types.Option{
		s3batch.WithRegion(cfg.Region),
		s3batch.WithConcurrency(cfg.Concurrency),
		s3batch.WithScheduling(s3types.SchedulingMode(cfg.Scheduling)),
		s3batch.WithPageSize(int32(cfg.PageSize)),
		s3batch.WithForcePathStyle(cfg.ForcePathStyle),
		s3batch.WithLogger(logger),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, s3batch.WithEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, s3batch.WithCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, s3batch.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, s3batch.WithTimeout(cfg.Timeout))
	}
	return opts
}

// selectConfigured selects bucket on client after checking that the
// account has it. An empty bucket leaves the client without a selection.
func selectConfigured(ctx context.Context, client *s3batch.Client, bucket string) error {
	if bucket == "" {
		return nil
	}
	if err := client.SelectBucket(ctx, bucket); err != nil {
		return fmt.Errorf("select bucket %s: %w", bucket, err)
	}
	return nil
}

// clientFrom returns the client stored by setup.
func clientFrom(c *cli.Context) *s3batch.Client {
	client, _ := c.App.Metadata[clientKey].(*s3batch.Client)
	return client
}

// selected returns the client once a bucket has been selected through
// configuration or the --bucket flag.
func selected(c *cli.Context) (*s3batch.Client, error) {
	client := clientFrom(c)
	if client == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	if _, err := client.SelectedBucket(); err != nil {
		return nil, fmt.Errorf("%w: set --bucket or S3BATCH_BUCKET", err)
	}
	return client, nil
}

// absPath resolves p against the working directory; the client's
// filesystem is rooted at "/".
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

func ctxOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
