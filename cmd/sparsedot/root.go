package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/sparsedot"
	"github.com/hupe1980/sparsedot/resource"
)

// app carries the state shared by all subcommands.
type app struct {
	logLevel      string
	logFormat     string
	ioLimit       string
	s3Endpoint    string
	minioEndpoint string
	minioTLS      bool

	logger        *sparsedot.Logger
	ioBytesPerSec int64
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "sparsedot",
		Short:        "Top-N truncated sparse matrix multiplication",
		Long:         `Multiply sparse matrices keeping only the N largest entries of every result row.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&a.ioLimit, "io-limit", "", "Throttle matrix file IO, e.g. 50MB (per second)")
	rootCmd.PersistentFlags().StringVar(&a.s3Endpoint, "s3-endpoint", "", "Custom endpoint for s3:// locations")
	rootCmd.PersistentFlags().StringVar(&a.minioEndpoint, "minio-endpoint", "localhost:9000", "Server for minio:// locations")
	rootCmd.PersistentFlags().BoolVar(&a.minioTLS, "minio-tls", false, "Use HTTPS for minio:// locations")

	rootCmd.AddCommand(newMultiplyCmd(a))
	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newInspectCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch a.logFormat {
	case "text":
		a.logger = sparsedot.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
	case "json":
		a.logger = sparsedot.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	default:
		return fmt.Errorf("invalid --log-format %q", a.logFormat)
	}

	rate, err := parseBytes("io-limit", a.ioLimit)
	if err != nil {
		return err
	}
	a.ioBytesPerSec = rate
	return nil
}

// controller returns a resource controller enforcing the IO limit and the
// given memory limit, or nil when neither is set.
func (a *app) controller(memoryLimit int64) *resource.Controller {
	if a.ioBytesPerSec == 0 && memoryLimit == 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   memoryLimit,
		IOLimitBytesPerSec: a.ioBytesPerSec,
	})
}

// parseBytes parses a human readable size such as "512MiB". Empty is zero.
func parseBytes(flag, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("invalid --%s: %s is too large", flag, s)
	}
	return int64(n), nil
}
