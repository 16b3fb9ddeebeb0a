package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/s3batch"
	"github.com/input-output-hk/s3batch/s3types"
)

var overwriteFlag = &cli.BoolFlag{Name: "overwrite", Aliases: []string{"f"}, Usage: "Replace existing destinations"}

func bucketsCommand() *cli.Command {
	return &cli.Command{
		Name:  "buckets",
		Usage: "List the buckets of the account",
		Action: func(c *cli.Context) error {
			names, err := clientFrom(c).ListBuckets(ctxOf(c))
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(c.App.Writer, name)
			}
			return nil
		},
	}
}

func createBucketCommand() *cli.Command {
	return &cli.Command{
		Name:      "create-bucket",
		Usage:     "Create a bucket unless it already exists",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			name, err := arg(c, 0, "NAME")
			if err != nil {
				return err
			}
			return clientFrom(c).CreateBucket(ctxOf(c), name)
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the objects under a prefix",
		ArgsUsage: "[PREFIX]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "long", Aliases: []string{"l"}, Usage: "Show size and modification time"},
		},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			for obj, err := range client.ListObjects(ctxOf(c), c.Args().First()) {
				if err != nil {
					return err
				}
				if c.Bool("long") {
					fmt.Fprintf(c.App.Writer, "%12d  %s  %s\n", obj.Size, obj.LastModified.Format("2006-01-02T15:04:05Z07:00"), obj.Key)
					continue
				}
				fmt.Fprintln(c.App.Writer, obj.Key)
			}
			return nil
		},
	}
}

func existsCommand() *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "Exit with status 0 if any object exists under the prefix",
		ArgsUsage: "[PREFIX]",
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			ok, err := client.Exists(ctxOf(c), c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, ok)
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Count the objects under a prefix",
		ArgsUsage: "[PREFIX]",
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			n, err := client.CountFiles(ctxOf(c), c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, n)
			return nil
		},
	}
}

func sizesCommand() *cli.Command {
	return &cli.Command{
		Name:      "sizes",
		Usage:     "Print the size of every object under a prefix",
		ArgsUsage: "[PREFIX]",
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			sizes, err := client.GetSizes(ctxOf(c), c.Args().First())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(sizes))
			for k := range sizes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var total int64
			for _, k := range keys {
				fmt.Fprintf(c.App.Writer, "%12d  %s\n", sizes[k], k)
				total += sizes[k]
			}
			fmt.Fprintf(c.App.Writer, "%12d  total\n", total)
			return nil
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a local file",
		ArgsUsage: "FILE [KEY]",
		Flags: []cli.Flag{
			overwriteFlag,
			&cli.StringFlag{Name: "content-type", Usage: "Content type instead of detection"},
			&cli.StringFlag{Name: "storage-class", Usage: "S3 storage class"},
		},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			file, err := arg(c, 0, "FILE")
			if err != nil {
				return err
			}
			local, err := absPath(file)
			if err != nil {
				return err
			}
			return client.UploadFile(ctxOf(c), local, c.Args().Get(1), c.Bool("overwrite"), uploadOptions(c)...)
		},
	}
}

func putCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Upload standard input to a key, replacing any existing object",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content-type", Usage: "Content type instead of detection"},
			&cli.StringFlag{Name: "storage-class", Usage: "S3 storage class"},
		},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			key, err := arg(c, 0, "KEY")
			if err != nil {
				return err
			}
			data, err := io.ReadAll(c.App.Reader)
			if err != nil {
				return fmt.Errorf("read standard input: %w", err)
			}
			return client.UploadStream(ctxOf(c), bytes.NewReader(data), key, uploadOptions(c)...)
		},
	}
}

func uploadOptions(c *cli.Context) []s3types.UploadOption {
	var opts []s3types.UploadOption
	if ct := c.String("content-type"); ct != "" {
		opts = append(opts, s3batch.WithContentType(ct))
	}
	if sc := c.String("storage-class"); sc != "" {
		opts = append(opts, s3batch.WithStorageClass(s3types.StorageClass(sc)))
	}
	return opts
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download every object under a prefix into a directory",
		ArgsUsage: "PREFIX DIR",
		Flags:     []cli.Flag{overwriteFlag},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			dir, err := arg(c, 1, "DIR")
			if err != nil {
				return err
			}
			dest, err := absPath(dir)
			if err != nil {
				return err
			}
			outcomes, err := client.Download(ctxOf(c), c.Args().First(), dest, c.Bool("overwrite"))
			if err != nil {
				return err
			}
			return report(c, outcomes)
		},
	}
}

func chunksCommand() *cli.Command {
	return &cli.Command{
		Name:      "chunks",
		Usage:     "Fetch an object with concurrent ranged reads and write it out",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "chunk-size", Value: 8 << 20, Usage: "Bytes per ranged read"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default standard output)"},
		},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			key, err := arg(c, 0, "KEY")
			if err != nil {
				return err
			}
			chunks, err := client.DownloadByChunks(ctxOf(c), key, c.Int64("chunk-size"))
			if err != nil {
				return err
			}

			w := c.App.Writer
			if out := c.String("out"); out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			for _, chunk := range chunks {
				if _, err := w.Write(chunk); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func copyCommand() *cli.Command {
	return &cli.Command{
		Name:      "cp",
		Usage:     "Copy every object under a prefix to another prefix",
		ArgsUsage: "PREFIX DEST_PREFIX",
		Flags:     []cli.Flag{overwriteFlag},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			dest, err := arg(c, 1, "DEST_PREFIX")
			if err != nil {
				return err
			}
			outcomes, err := client.Copy(ctxOf(c), c.Args().First(), dest, c.Bool("overwrite"))
			if err != nil {
				return err
			}
			return report(c, outcomes)
		},
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:      "mv",
		Usage:     "Move every object under a prefix to another prefix",
		ArgsUsage: "PREFIX NEW_PREFIX",
		Flags:     []cli.Flag{overwriteFlag},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			dest, err := arg(c, 1, "NEW_PREFIX")
			if err != nil {
				return err
			}
			outcomes, err := client.Move(ctxOf(c), c.Args().First(), dest, c.Bool("overwrite"))
			if err != nil {
				return err
			}
			return report(c, outcomes)
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete every object under a prefix",
		ArgsUsage: "PREFIX",
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			prefix, err := arg(c, 0, "PREFIX")
			if err != nil {
				return err
			}
			outcomes, err := client.Remove(ctxOf(c), prefix)
			if err != nil {
				return err
			}
			return report(c, outcomes)
		},
	}
}

func urlsCommand() *cli.Command {
	return &cli.Command{
		Name:      "urls",
		Usage:     "Print a presigned GET URL for every object under a prefix",
		ArgsUsage: "[PREFIX]",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "ttl", Usage: "URL lifetime (default 1h)"},
		},
		Action: func(c *cli.Context) error {
			client, err := selected(c)
			if err != nil {
				return err
			}
			urls, err := client.GetURLs(ctxOf(c), c.Args().First(), c.Duration("ttl"))
			keys := make([]string, 0, len(urls))
			for k := range urls {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", k, urls[k])
			}
			return err
		},
	}
}

// arg returns the positional argument at i or a usage error naming it.
func arg(c *cli.Context, i int, name string) (string, error) {
	if v := c.Args().Get(i); v != "" {
		return v, nil
	}
	return "", cli.Exit(fmt.Sprintf("missing %s argument", name), 2)
}

// report prints one line per outcome and fails when any object failed.
func report(c *cli.Context, outcomes []s3types.Outcome) error {
	failures := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failures++
			fmt.Fprintf(c.App.ErrWriter, "FAIL %s: %v\n", o.Key, o.Err)
		case o.Target != "":
			fmt.Fprintf(c.App.Writer, "ok   %s -> %s\n", o.Key, o.Target)
		default:
			fmt.Fprintf(c.App.Writer, "ok   %s\n", o.Key)
		}
	}
	if failures > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d objects failed", failures, len(outcomes)), 1)
	}
	return nil
}
