package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/strategy"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sender delivers formatted reports.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the configured screens on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Screens   []*strategy.Screen
	Notifier  Sender
	Recorder  recorder.Recorder
	Workers   int
	Metrics   *metrics.Metrics
	Ctx       context.Context

	mu sync.Mutex // one scan at a time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, screens []*strategy.Screen, n Sender, rec recorder.Recorder, workers int) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
		Collector: col,
		Screens:   screens,
		Notifier:  n,
		Recorder:  rec,
		Workers:   workers,
		Ctx:       ctx,
	}
}

// RegisterAll registers the scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, func() { s.scanTask(model.TriggerScheduled, "") }); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("screens", len(s.Screens)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunScanNow runs every screen immediately and sends the reports.
func (s *Scheduler) RunScanNow() {
	s.scanTask(model.TriggerManual, "")
}

// Scan collects the table once and evaluates each screen against it. With
// only set, just that screen runs. Every result is recorded; recording
// failures are logged and do not fail the scan.
func (s *Scheduler) Scan(ctx context.Context, trigger model.TriggerType, only string) ([]*model.ScreenResult, error) {
	screens, err := s.selectScreens(only)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	scanID := uuid.NewString()
	results, rows, err := s.scan(ctx, scanID, trigger, screens)
	s.Metrics.ObserveScan(string(trigger), rows, time.Since(start), err)
	if err != nil {
		return results, err
	}
	log.Info().Str("scan_id", scanID).Str("trigger", string(trigger)).Dur("elapsed", time.Since(start)).Msg("scan finished")
	return results, nil
}

func (s *Scheduler) scan(ctx context.Context, scanID string, trigger model.TriggerType, screens []*strategy.Screen) ([]*model.ScreenResult, int, error) {
	rows, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, 0, err
	}

	results := make([]*model.ScreenResult, 0, len(screens))
	for _, sc := range screens {
		res, err := sc.Evaluate(ctx, rows, s.Workers)
		if err != nil {
			return results, len(rows), fmt.Errorf("screen %s: %w", sc.Name, err)
		}
		res.ScanID = scanID
		res.TriggerType = trigger
		log.Info().Str("scan_id", scanID).Str("screen", sc.Name).Int("rows", res.Total).Int("matched", len(res.Matches)).Msg("screen evaluated")

		passed := make(map[string]int, len(res.Conditions))
		for _, c := range res.Conditions {
			passed[c.Name] = c.Passed
		}
		s.Metrics.ObserveScreen(sc.Name, len(res.Matches), passed)

		if err := s.Recorder.RecordScan(res); err != nil {
			log.Error().Err(err).Str("screen", sc.Name).Msg("record scan")
		}
		results = append(results, res)
	}
	return results, len(rows), nil
}

func (s *Scheduler) selectScreens(only string) ([]*strategy.Screen, error) {
	if only == "" {
		return s.Screens, nil
	}
	for _, sc := range s.Screens {
		if sc.Name == only {
			return []*strategy.Screen{sc}, nil
		}
	}
	return nil, fmt.Errorf("unknown screen %q", only)
}

func (s *Scheduler) scanTask(trigger model.TriggerType, only string) {
	log.Info().Str("trigger", string(trigger)).Msg("running scan task")
	results, err := s.Scan(s.Ctx, trigger, only)
	if err != nil {
		log.Error().Err(err).Msg("scan failed")
		s.trySend(fmt.Sprintf("❌ 選股掃描失敗: %v", err))
	}
	for _, res := range results {
		s.trySend(notifier.FormatScanReport(res))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/scan", "立即掃描":
		only := ""
		if len(fields) > 1 {
			only = fields[1]
		}
		if _, err := s.selectScreens(only); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		s.scanTask(model.TriggerManual, only)
		return ""
	case "/screens", "查看策略":
		return notifier.FormatScreenList(s.Screens)
	case "/history", "查看紀錄":
		runs, err := s.Recorder.RecentRuns(10)
		if err != nil {
			log.Error().Err(err).Msg("load history")
			return "❌ 無法讀取掃描紀錄"
		}
		return notifier.FormatHistory(runs)
	default:
		return helpText
	}
}

const helpText = "可用命令:\n• /scan [策略名稱]\n• /screens\n• /history"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
