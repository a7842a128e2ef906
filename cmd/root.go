package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"media-trimmer/infrastructure/config"
	"media-trimmer/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	cfg      *config.Config
	cfgFound bool
	cfgErr   error
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "media-trimmer",
	Short: "Cut a time range out of a video without re-encoding",
	Long: `media-trimmer extracts a segment of a local video file by stream copy.

  - Pick a source video and a start/end time (HH:MM:SS)
  - The clip is cut by a locally loaded ffmpeg engine, no upload involved
  - The result is saved as trimmed_<original name>

Example:
  media-trimmer trim --source clip.mov --start 00:00:02 --end 00:00:07`,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel a running trim.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing file falls back to defaults; a broken one is reported by the
	// commands that need it.
	cfg, cfgFound, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr != nil {
		cfg = nil
		logger = logging.NewLogger("info", "text", os.Stderr)
		return
	}
	logger = logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
}

// GetConfig returns the loaded configuration, or an error if the config file
// exists but could not be used
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// GetLogger returns the logger configured from the logging section
func GetLogger() *slog.Logger {
	if logger == nil {
		return logging.Discard()
	}
	return logger
}
