package main

import (
	"fmt"
	"os"
	"time"

	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/recorder"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfgPath string

// rootCmd is the base command for the screener CLI
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Daily stock screener for Taiwan-listed securities",
	Long: `screener evaluates configured screens (conjunctions of chip-flow,
price, volume and indicator conditions) against the daily snapshot table.
Run a one-off scan from the shell or start the daemon to scan on a cron
schedule and push reports to Telegram.`,
	SilenceUsage: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "Path to the YAML configuration")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConditionsCmd())
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, then applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newCollector(cfg *config.Config) *collector.Collector {
	var loader collector.Loader
	if cfg.DataSource.SnapshotURL != "" {
		loader = collector.NewHTTPLoader(cfg.DataSource.SnapshotURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		loader = collector.NewFileLoader(cfg.DataSource.SnapshotPath)
	}
	log.Info().Str("loader", loader.Name()).Bool("enrich", cfg.EnrichIndicators()).Msg("data source")
	return collector.NewCollector(loader, cfg.EnrichIndicators())
}

// openRecorder falls back to the no-op recorder when SQLite cannot be opened.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
