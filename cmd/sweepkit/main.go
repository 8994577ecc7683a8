package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dev-tams/sweepkit/internal/app"
	"github.com/dev-tams/sweepkit/internal/config"
	"github.com/dev-tams/sweepkit/internal/logging"
)

// Exit codes: 0 clean, 1 fatal error, 3 partial failure (some shards or
// deletions failed but the run completed).
const exitPartialFailure = 3

func main() {
	cliApp := &cli.App{
		Name:  "sweepkit",
		Usage: "bulk-delete bucket objects whose keys match regular expressions",
		Commands: []*cli.Command{
			{
				Name:  "sweep",
				Usage: "list, filter and delete matching objects (honors --dry-run)",
				Flags: sweepFlags(),
				Action: func(c *cli.Context) error {
					return runWithSignals(c, func(ctx context.Context, cfg *config.Config) error {
						return app.RunSweep(ctx, cfg, logging.New(cfg.LogLevel, nil), false)
					})
				},
			},
			{
				Name:  "scan",
				Usage: "report what a sweep would delete without deleting anything",
				Flags: sweepFlags(),
				Action: func(c *cli.Context) error {
					return runWithSignals(c, func(ctx context.Context, cfg *config.Config) error {
						return app.RunSweep(ctx, cfg, logging.New(cfg.LogLevel, nil), true)
					})
				},
			},
			{
				Name:  "daemon",
				Usage: "run sweeps on a cron schedule",
				Flags: append(sweepFlags(), &cli.StringFlag{
					Name:  "schedule",
					Usage: "five-field cron expression (e.g. \"0 3 * * *\")",
				}),
				Action: func(c *cli.Context) error {
					return runWithSignals(c, func(ctx context.Context, cfg *config.Config) error {
						return app.RunDaemon(ctx, cfg, logging.New(cfg.LogLevel, nil))
					})
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sweepFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to optional config yaml; flags override file values",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "storage provider: s3, minio or local",
		},
		&cli.StringFlag{
			Name:    "bucket",
			Aliases: []string{"b"},
			Usage:   "bucket to sweep",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "bucket region (s3)",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "custom endpoint URL (s3-compatible services)",
		},
		&cli.StringFlag{
			Name:  "access-key",
			Usage: "access key; falls back to AWS_ACCESS_KEY_ID / MINIO_ACCESS_KEY",
		},
		&cli.StringFlag{
			Name:  "secret-key",
			Usage: "secret key; falls back to AWS_SECRET_ACCESS_KEY / MINIO_SECRET_KEY",
		},
		&cli.BoolFlag{
			Name:  "use-ssl",
			Usage: "use TLS for the minio provider",
		},
		&cli.StringFlag{
			Name:  "local-path",
			Usage: "base directory for the local provider",
		},
		&cli.StringSliceFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "key prefix to list (repeat or comma-separate for several)",
		},
		&cli.StringSliceFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "regular expression a key must match to be deleted (repeatable)",
		},
		&cli.IntFlag{
			Name:    "threads",
			Aliases: []string{"t"},
			Usage:   "worker count for listing and deletion pools",
			Value:   4,
		},
		&cli.BoolFlag{
			Name:  "multi-read",
			Usage: "shard listing across the worker pool",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "log intended deletions without calling delete",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn or error",
			Value: "info",
		},
	}
}

func runWithSignals(c *cli.Context, run func(context.Context, *config.Config) error) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, app.ErrPartialFailure) {
			return cli.Exit(err.Error(), exitPartialFailure)
		}
		return err
	}
	return nil
}

// buildConfig loads the optional config file and lets explicitly set flags
// override it.
func buildConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("provider") {
		cfg.Provider = c.String("provider")
	}
	if c.IsSet("bucket") {
		cfg.Bucket = c.String("bucket")
	}
	if c.IsSet("region") {
		cfg.Region = c.String("region")
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if c.IsSet("access-key") {
		cfg.AccessKey = c.String("access-key")
	}
	if c.IsSet("secret-key") {
		cfg.SecretKey = c.String("secret-key")
	}
	if c.IsSet("use-ssl") {
		cfg.UseSSL = c.Bool("use-ssl")
	}
	if c.IsSet("local-path") {
		cfg.LocalPath = c.String("local-path")
	}
	if c.IsSet("prefix") {
		cfg.Prefixes = c.StringSlice("prefix")
	}
	if c.IsSet("filter") {
		cfg.Patterns = c.StringSlice("filter")
	}
	if c.IsSet("threads") || cfg.Threads == 0 {
		cfg.Threads = c.Int("threads")
	}
	if c.IsSet("multi-read") {
		cfg.MultiRead = c.Bool("multi-read")
	}
	if c.IsSet("dry-run") {
		cfg.DryRun = c.Bool("dry-run")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("schedule") {
		cfg.Schedule = c.String("schedule")
	}

	return cfg, nil
}
