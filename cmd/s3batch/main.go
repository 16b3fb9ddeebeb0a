// Command s3batch runs batch operations against an S3-compatible bucket.
package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("s3batch failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "s3batch",
		Usage: "Batch operations on the objects under an S3 prefix",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Config file (YAML, TOML or JSON)", EnvVars: []string{"S3BATCH_CONFIG"}},
			&cli.StringFlag{Name: "env-file", Usage: "Env file loaded before reading settings"},
			&cli.StringFlag{Name: "bucket", Aliases: []string{"b"}, Usage: "Bucket to operate on"},
			&cli.StringFlag{Name: "region", Usage: "AWS region"},
			&cli.StringFlag{Name: "endpoint", Usage: "Custom S3 endpoint URL"},
			&cli.BoolFlag{Name: "path-style", Usage: "Use path-style addressing"},
			&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Usage: "Maximum object operations in flight"},
			&cli.StringFlag{Name: "scheduling", Usage: "parallel or sequential"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before: setup,
		Commands: []*cli.Command{
			bucketsCommand(),
			createBucketCommand(),
			listCommand(),
			existsCommand(),
			countCommand(),
			sizesCommand(),
			uploadCommand(),
			putCommand(),
			downloadCommand(),
			chunksCommand(),
			copyCommand(),
			moveCommand(),
			removeCommand(),
			urlsCommand(),
		},
	}
}
