package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/strategy"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockSender) SendWithRetry(_ context.Context, text string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return m.err
}

type mockRecorder struct {
	recorder.NoopRecorder
	results []*model.ScreenResult
	err     error
}

func (m *mockRecorder) RecordScan(res *model.ScreenResult) error {
	m.results = append(m.results, res)
	return m.err
}

func (m *mockRecorder) RecentRuns(limit int) ([]recorder.RunSummary, error) {
	var runs []recorder.RunSummary
	for i := len(m.results) - 1; i >= 0 && len(runs) < limit; i-- {
		r := m.results[i]
		runs = append(runs, recorder.RunSummary{Screen: r.Screen, TriggerType: r.TriggerType, Total: r.Total, Matched: len(r.Matches)})
	}
	return runs, nil
}

func series(vals ...float64) []model.Point {
	out := make([]model.Point, len(vals))
	for i, v := range vals {
		out[i] = model.Point{Date: model.NewDate(2024, 3, 1+i), Value: v}
	}
	return out
}

func row(code string, k ...float64) *model.Row {
	return &model.Row{
		Code:       code,
		Name:       "stock " + code,
		ForeignNet: model.Float(1),
		DailyK:     []model.Bar{{Date: model.NewDate(2024, 3, 3), Close: 100}},
		K9:         series(k...),
		D9:         series(9, 9, 9),
	}
}

func newTestScheduler(loader collector.Loader) (*Scheduler, *mockSender, *mockRecorder) {
	screens := []*strategy.Screen{
		{Name: "cross", Conditions: []strategy.Condition{&strategy.GoldenCross{Indicator1: strategy.K9, Indicator2: strategy.D9, Days: 3}}},
		{Name: "foreign", Conditions: []strategy.Condition{&strategy.ForeignNetPositive{}}},
	}
	sender := &mockSender{}
	rec := &mockRecorder{}
	s := NewScheduler(context.Background(), collector.NewCollector(loader, false), screens, sender, rec, 2)
	return s, sender, rec
}

func testRows() []*model.Row {
	return []*model.Row{row("2330", 6, 8, 10), row("2317", 12, 11, 10), row("1101", 5, 5, 12)}
}

func TestScan(t *testing.T) {
	s, _, rec := newTestScheduler(&collector.MockLoader{Rows: testRows()})

	results, err := s.Scan(context.Background(), model.TriggerCLI, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "cross", results[0].Screen)
	assert.Equal(t, model.TriggerCLI, results[0].TriggerType)
	require.Len(t, results[0].Matches, 2)
	assert.Equal(t, "2330", results[0].Matches[0].Code)
	assert.Equal(t, "1101", results[0].Matches[1].Code)
	assert.Equal(t, 100.0, results[0].Matches[0].Close)
	assert.Len(t, results[1].Matches, 3)
	assert.Len(t, rec.results, 2)
	assert.NotEmpty(t, results[0].ScanID)
	assert.Equal(t, results[0].ScanID, results[1].ScanID, "one scan id per scan")

	only, err := s.Scan(context.Background(), model.TriggerCLI, "foreign")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "foreign", only[0].Screen)
	assert.NotEqual(t, results[0].ScanID, only[0].ScanID)

	_, err = s.Scan(context.Background(), model.TriggerCLI, "nope")
	assert.Error(t, err)
}

func TestScan_RecorderFailureDoesNotFail(t *testing.T) {
	s, _, rec := newTestScheduler(&collector.MockLoader{Rows: testRows()})
	rec.err = errors.New("disk full")

	results, err := s.Scan(context.Background(), model.TriggerCLI, "")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRunScanNow_SendsReports(t *testing.T) {
	s, sender, rec := newTestScheduler(&collector.MockLoader{Rows: testRows()})
	s.RunScanNow()

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0], "<b>cross</b>")
	assert.Contains(t, sender.sent[0], "2 / 3")
	assert.Contains(t, sender.sent[1], "<b>foreign</b>")
	require.Len(t, rec.results, 2)
	assert.Equal(t, model.TriggerManual, rec.results[0].TriggerType)
}

func TestScanTask_CollectFailureIsReported(t *testing.T) {
	s, sender, rec := newTestScheduler(&collector.MockLoader{Err: errors.New("snapshot missing")})
	s.RunScanNow()

	require.Len(t, sender.sent, 1)
	assert.True(t, strings.HasPrefix(sender.sent[0], "❌"))
	assert.Contains(t, sender.sent[0], "snapshot missing")
	assert.Empty(t, rec.results)
}

func TestHandleCommand(t *testing.T) {
	s, sender, _ := newTestScheduler(&collector.MockLoader{Rows: testRows()})

	assert.Contains(t, s.HandleCommand("/screens"), "golden_cross")
	assert.Contains(t, s.HandleCommand("/help"), "/scan")
	assert.Contains(t, s.HandleCommand(""), "/scan")
	assert.Equal(t, "尚無掃描紀錄", s.HandleCommand("/history"))

	assert.Equal(t, "", s.HandleCommand("/scan cross"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "<b>cross</b>")

	assert.Contains(t, s.HandleCommand("/scan bogus"), "unknown screen")
	assert.Len(t, sender.sent, 1)

	assert.Contains(t, s.HandleCommand("/history"), "cross 2/3 (MANUAL)")
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockLoader{})
	require.NoError(t, s.RegisterAll("0 30 14 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.RegisterAll("30 14 * *"))
}

func TestScan_Metrics(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockLoader{Rows: testRows()})
	s.Metrics = metrics.New(prometheus.NewRegistry())

	_, err := s.Scan(context.Background(), model.TriggerCLI, "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Scans.WithLabelValues("CLI", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.Metrics.Rows))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.Metrics.Matches.WithLabelValues("cross")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.Metrics.Conditions.WithLabelValues("foreign", "foreign_net_positive")))

	s.Collector = collector.NewCollector(&collector.MockLoader{Err: errors.New("down")}, false)
	_, err = s.Scan(context.Background(), model.TriggerCLI, "")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Scans.WithLabelValues("CLI", "error")))
}
