package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/crawlsearch/internal/config"
	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/frontier"
	cslog "github.com/nao1215/crawlsearch/internal/log"
	"github.com/nao1215/crawlsearch/internal/report"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the process logger and installs it as the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := cslog.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// addStorageFlags registers the corpus storage flags.
func addStorageFlags(flags *pflag.FlagSet) {
	flags.String("db-dir", "",
		"Directory of the SQLite corpus database (default: XDG data directory)")
	flags.String("postgres-dsn", "",
		"Store corpora in PostgreSQL instead of SQLite")
}

// readStorageFlags copies the storage flags into cfg.
func readStorageFlags(cmd *cobra.Command, cfg *config.Config) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.PostgresDSN, err = cmd.Flags().GetString("postgres-dsn")
	return err
}

// openStore opens the corpus store selected by cfg.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (corpus.Store, error) {
	if cfg.PostgresDSN != "" {
		store, err := corpus.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("corpus store opened", "backend", "postgres", "dsn", cfg.PostgresDSN)
		return store, nil
	}

	store, err := corpus.Open(cfg.StorageDir(), corpus.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("corpus store opened", "backend", "sqlite", "path", store.Path())
	return store, nil
}

// newFrontierFactory returns the frontier factory selected by cfg and a
// function releasing its resources.
func newFrontierFactory(ctx context.Context, cfg *config.Config) (frontier.Factory, func() error, error) {
	if cfg.Frontier != config.FrontierRedis {
		return frontier.MemoryFactory(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return frontier.RedisFactory(client, config.AppName+":"), client.Close, nil
}

// closeAll runs every closer and returns their failures together.
func closeAll(closers ...func() error) error {
	var errs *multierror.Error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// addOutputFlags registers the report format flags on cmd.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output CSV report (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// readOutputFlags copies the report format flags into cfg.
func readOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	return err
}

// openOutput returns the report destination: cfg.ReportFile when set,
// otherwise stdout. The returned function closes the file.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter returns the writer for the format selected by cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	case cfg.CSVReport:
		return report.NewCSVWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
