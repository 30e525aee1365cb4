package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the screener's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Scans        *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	Rows         prometheus.Gauge
	Matches      *prometheus.GaugeVec
	Conditions   *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_scans_total",
				Help: "Scans run, by trigger and result",
			},
			[]string{"trigger", "result"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "screener_scan_duration_seconds",
				Help:    "Wall time of a full scan including collection",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		Rows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "screener_rows",
				Help: "Rows in the last collected snapshot",
			},
		),
		Matches: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_matches",
				Help: "Securities matched by each screen in its last run",
			},
			[]string{"screen"},
		),
		Conditions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_condition_passed",
				Help: "Rows passing each condition of a screen in its last run",
			},
			[]string{"screen", "condition"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.Scans, m.ScanDuration, m.Rows, m.Matches, m.Conditions)
	return m
}

// ObserveScan records a finished scan.
func (m *Metrics) ObserveScan(trigger string, rows int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.Rows.Set(float64(rows))
	}
	m.Scans.WithLabelValues(trigger, result).Inc()
	m.ScanDuration.Observe(elapsed.Seconds())
}

// ObserveScreen records one screen's last result.
func (m *Metrics) ObserveScreen(screen string, matched int, passed map[string]int) {
	if m == nil {
		return
	}
	m.Matches.WithLabelValues(screen).Set(float64(matched))
	for cond, n := range passed {
		m.Conditions.WithLabelValues(screen, cond).Set(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
