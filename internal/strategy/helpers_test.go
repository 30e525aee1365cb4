package strategy

import (
	"time"

	"StockScreener/internal/model"
)

var day0 = model.NewDate(2024, time.March, 1)

// points builds a chronological series, oldest first.
func points(values ...float64) []model.Point {
	out := make([]model.Point, len(values))
	for i, v := range values {
		out[i] = model.Point{Date: model.Date{Time: day0.AddDate(0, 0, i)}, Value: v}
	}
	return out
}

// closes builds a K line whose open is one below close, oldest first.
func closes(values ...float64) []model.Bar {
	out := make([]model.Bar, len(values))
	for i, c := range values {
		out[i] = model.Bar{
			Date:  model.Date{Time: day0.AddDate(0, 0, i)},
			Open:  c - 1,
			High:  c + 1,
			Low:   c - 2,
			Close: c,
		}
	}
	return out
}
