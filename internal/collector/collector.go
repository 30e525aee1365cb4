package collector

import (
	"context"
	"fmt"
	"sort"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"

	"github.com/rs/zerolog/log"
)

// Collector loads the daily table and prepares it for screening.
type Collector struct {
	Loader Loader
	Enrich bool
}

// NewCollector creates a new Collector. With enrich set, indicator series
// missing from the snapshot are computed from each row's K line.
func NewCollector(loader Loader, enrich bool) *Collector {
	return &Collector{Loader: loader, Enrich: enrich}
}

// Collect loads rows, drops those without a code, puts every series in
// chronological order and optionally derives missing indicators.
func (c *Collector) Collect(ctx context.Context) ([]*model.Row, error) {
	raw, err := c.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s snapshot: %w", c.Loader.Name(), err)
	}

	rows := make([]*model.Row, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		if r == nil || r.Code == "" {
			skipped++
			continue
		}
		sortSeries(r)
		if c.Enrich {
			_, failed := calculator.Enrich(r)
			for _, e := range failed {
				log.Debug().Str("code", r.Code).Err(e).Msg("indicator not derived")
			}
		}
		rows = append(rows, r)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("rows without a code dropped")
	}
	log.Info().Str("loader", c.Loader.Name()).Int("rows", len(rows)).Msg("snapshot collected")
	return rows, nil
}

// sortSeries orders every series by date, oldest first.
func sortSeries(r *model.Row) {
	sort.SliceStable(r.DailyK, func(i, j int) bool { return r.DailyK[i].Date.Before(r.DailyK[j].Date.Time) })
	for _, s := range []*[]model.Point{
		&r.Volume, &r.K9, &r.D9, &r.DIF, &r.MACD, &r.OSC,
		&r.Mean5, &r.Mean10, &r.Mean20, &r.Mean60,
	} {
		points := *s
		sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date.Time) })
	}
}
