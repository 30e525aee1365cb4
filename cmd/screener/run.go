package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockScreener/internal/metrics"
	"StockScreener/internal/notifier"
	"StockScreener/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the daemon: scheduled scans and Telegram commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateNotifier(); err != nil {
				return err
			}
			log.Info().Msg("screener starting")

			tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			rec := openRecorder(cfg)
			defer rec.Close()

			// Context for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, newCollector(cfg), cfg.BuildScreens(), tn, rec, cfg.Workers)
			if cfg.MetricsAddr != "" {
				m, stop := serveMetrics(cfg.MetricsAddr)
				sched.Metrics = m
				defer stop()
			}
			if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info().Msg("telegram polling started")

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Info().Msg("run on start enabled, scanning now")
				go sched.RunScanNow()
			}

			log.Info().Str("cron", cfg.Schedule.ScanCron).Msg("screener is running, press Ctrl+C to stop")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Info().Msg("shutdown signal received, stopping")
			cancel()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Scan immediately after starting")
	return cmd
}

// serveMetrics exposes the scan collectors plus Go runtime metrics on addr.
// The returned func shuts the server down.
func serveMetrics(addr string) (*metrics.Metrics, func()) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics server started")

	return m, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("metrics shutdown")
		}
	}
}
