package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"parupload/internal/app"
	"parupload/internal/config"
	"parupload/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "parupload <directory>",
	Short: "Upload a directory tree to object storage through a pre-authenticated URL",
	Long: `A concurrent directory uploader for object-storage buckets reachable through
a single pre-authenticated request (PAR) URL, with chunked transfers for
large files, dry runs, and progress reporting.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML)")

	rootCmd.Flags().String("base-url", "", "Pre-authenticated request URL for uploads (required)")
	rootCmd.Flags().String("prefix", "", "Prefix to add to object names (e.g. 'data/')")
	rootCmd.Flags().Bool("dry-run", false, "Simulate the upload without transferring files")
	rootCmd.Flags().Bool("no-recursive", false, "Do not recursively scan directories")
	rootCmd.Flags().Int("concurrency", 5, "Number of concurrent uploads")
	rootCmd.Flags().Int64("chunk-size", config.DefaultChunkSize, "Chunk size for chunked uploads in bytes")
	rootCmd.Flags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.Flags().String("log-level", "info", "Log level (debug/info/warn/error)")
	rootCmd.Flags().Bool("show-progress", true, "Show progress display (auto-disabled for dry-run)")
	rootCmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :8080)")
	rootCmd.Flags().String("journal", "", "Write per-file outcomes to this SQLite file")
}

func runUpload(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(configFile, args[0], cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Create application
	uploader, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create uploader: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	// Run upload
	report, err := uploader.Run(ctx)

	// Close uploader resources after the run completes or is cancelled
	if closeErr := uploader.Close(); closeErr != nil {
		log.Error("Error closing uploader", zap.Error(closeErr))
	}

	if err != nil {
		return err
	}

	verb := "uploaded"
	if report.DryRun {
		verb = "would have uploaded"
	}
	log.Info("Upload summary",
		zap.String("result", fmt.Sprintf("%s %d of %d files", verb, report.Succeeded, report.Attempted)),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.Elapsed),
	)
	if report.DryRun {
		log.Info("Dry run completed. No files were uploaded.")
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", report.Failed, report.Attempted)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
