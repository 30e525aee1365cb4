package recorder

import (
	"time"

	"StockScreener/internal/model"
)

// RunSummary is one persisted scan run.
type RunSummary struct {
	ID          int64
	ScanID      string
	Timestamp   time.Time
	Screen      string
	TriggerType model.TriggerType
	Total       int
	Matched     int
}

// Recorder persists scan history for later review.
type Recorder interface {
	RecordScan(res *model.ScreenResult) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
