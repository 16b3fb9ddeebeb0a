// Package config loads the settings of the s3batch command line tool from
// environment variables, an optional .env file and an optional config file.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/validation"
	"github.com/input-output-hk/s3batch/s3types"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "S3BATCH"

// Defaults applied when a setting is not provided anywhere.
const (
	DefaultRegion      = "us-east-1"
	DefaultConcurrency = 5
	DefaultPageSize    = 1000
	DefaultLogLevel    = "info"
	DefaultEnvFile     = ".env"
)

// Config holds the resolved settings.
type Config struct {
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	SessionToken    string        `mapstructure:"session_token"`
	ForcePathStyle  bool          `mapstructure:"force_path_style"`
	Concurrency     int           `mapstructure:"concurrency"`
	Scheduling      string        `mapstructure:"scheduling"`
	PageSize        int           `mapstructure:"page_size"`
	MaxRetries      int           `mapstructure:"max_retries"`
	Timeout         time.Duration `mapstructure:"timeout"`
	LogLevel        string        `mapstructure:"log_level"`
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// ConfigFile is a YAML, TOML or JSON file. Empty means none.
	ConfigFile string

	// EnvFile is loaded into the process environment without overriding
	// variables that are already set. A missing DefaultEnvFile is ignored.
	EnvFile string
}

var defaults = map[string]any{
	"bucket":            "",
	"region":            DefaultRegion,
	"endpoint":          "",
	"access_key_id":     "",
	"secret_access_key": "",
	"session_token":     "",
	"force_path_style":  false,
	"concurrency":       DefaultConcurrency,
	"scheduling":        string(s3types.SchedulingParallel),
	"page_size":         DefaultPageSize,
	"max_retries":       0,
	"timeout":           time.Duration(0),
	"log_level":         DefaultLogLevel,
}

// Load resolves the configuration. Environment variables take precedence
// over the config file, which takes precedence over the defaults.
// The result is validated.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewError("config", err).WithMessage("read " + opts.ConfigFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewError("config", err).WithMessage("decode settings")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && stderrors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return errors.NewError("config", err).WithMessage("load env file " + path)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return errors.NewError("config", errors.ErrInvalidInput).WithMessage(msg)
	}

	if c.Bucket != "" {
		if err := validation.ValidateBucketName(c.Bucket); err != nil {
			return err
		}
	}
	if c.Region == "" {
		return invalid("region cannot be empty")
	}
	if c.Concurrency < 1 {
		return invalid(fmt.Sprintf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.PageSize < 1 || c.PageSize > DefaultPageSize {
		return invalid(fmt.Sprintf("page size must be between 1 and %d, got %d", DefaultPageSize, c.PageSize))
	}
	switch s3types.SchedulingMode(c.Scheduling) {
	case s3types.SchedulingParallel, s3types.SchedulingSequential:
	default:
		return invalid(fmt.Sprintf("unknown scheduling mode %q", c.Scheduling))
	}
	if c.MaxRetries < 0 {
		return invalid("max retries cannot be negative")
	}
	if c.Timeout < 0 {
		return invalid("timeout cannot be negative")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return invalid("access key id and secret access key must be set together")
	}
	if _, err := c.Level(); err != nil {
		return invalid(err.Error())
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}
