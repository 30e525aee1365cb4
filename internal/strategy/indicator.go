package strategy

import (
	"fmt"
	"math"
	"strings"

	"StockScreener/internal/model"

	"gopkg.in/yaml.v3"
)

// Indicator names a value sequence that can be read from a row.
type Indicator string

const (
	Open   Indicator = "open"
	High   Indicator = "high"
	Low    Indicator = "low"
	Close  Indicator = "close"
	Volume Indicator = "volume"
	K9     Indicator = "k9"
	D9     Indicator = "d9"
	DIF    Indicator = "dif"
	MACD   Indicator = "macd"
	OSC    Indicator = "osc"
	Mean5  Indicator = "mean5"
	Mean10 Indicator = "mean10"
	Mean20 Indicator = "mean20"
	Mean60 Indicator = "mean60"
)

// aliases accepts the K-line names used by the exchange's own reports.
var aliases = map[string]Indicator{
	"開盤": Open,
	"最高": High,
	"最低": Low,
	"收盤": Close,
}

type accessor func(r *model.Row) []float64

func barField(pick func(model.Bar) float64) accessor {
	return func(r *model.Row) []float64 {
		if r.DailyK == nil {
			return nil
		}
		out := make([]float64, len(r.DailyK))
		for i, b := range r.DailyK {
			out[i] = pick(b)
		}
		return out
	}
}

func series(pick func(*model.Row) []model.Point) accessor {
	return func(r *model.Row) []float64 {
		points := pick(r)
		if points == nil {
			return nil
		}
		return model.Values(points)
	}
}

var accessors = map[Indicator]accessor{
	Open:   barField(func(b model.Bar) float64 { return b.Open }),
	High:   barField(func(b model.Bar) float64 { return b.High }),
	Low:    barField(func(b model.Bar) float64 { return b.Low }),
	Close:  barField(func(b model.Bar) float64 { return b.Close }),
	Volume: series(func(r *model.Row) []model.Point { return r.Volume }),
	K9:     series(func(r *model.Row) []model.Point { return r.K9 }),
	D9:     series(func(r *model.Row) []model.Point { return r.D9 }),
	DIF:    series(func(r *model.Row) []model.Point { return r.DIF }),
	MACD:   series(func(r *model.Row) []model.Point { return r.MACD }),
	OSC:    series(func(r *model.Row) []model.Point { return r.OSC }),
	Mean5:  series(func(r *model.Row) []model.Point { return r.Mean5 }),
	Mean10: series(func(r *model.Row) []model.Point { return r.Mean10 }),
	Mean20: series(func(r *model.Row) []model.Point { return r.Mean20 }),
	Mean60: series(func(r *model.Row) []model.Point { return r.Mean60 }),
}

// Indicators lists every resolvable indicator.
func Indicators() []Indicator {
	return []Indicator{Open, High, Low, Close, Volume, K9, D9, DIF, MACD, OSC, Mean5, Mean10, Mean20, Mean60}
}

// ParseIndicator maps a name (case-insensitive, or a K-line alias) to an Indicator.
func ParseIndicator(s string) (Indicator, error) {
	if ind, ok := aliases[strings.TrimSpace(s)]; ok {
		return ind, nil
	}
	ind := Indicator(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := accessors[ind]; !ok {
		return "", fmt.Errorf("unknown indicator %q", s)
	}
	return ind, nil
}

// Valid reports whether the indicator has an accessor.
func (i Indicator) Valid() bool {
	_, ok := accessors[i]
	return ok
}

// IsPrice reports whether the indicator is one of the four K-line prices.
func (i Indicator) IsPrice() bool {
	switch i {
	case Open, High, Low, Close:
		return true
	}
	return false
}

// UnmarshalYAML normalizes aliases and case. Unknown names are kept as-is so
// that Validate can report them with the condition's context.
func (i *Indicator) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if parsed, err := ParseIndicator(s); err == nil {
		*i = parsed
		return nil
	}
	*i = Indicator(s)
	return nil
}

// resolve returns the most recent n values of ind, newest first.
// ok is false if the indicator is unknown, the series is absent or shorter
// than n, or any value in the window is not finite.
func resolve(r *model.Row, ind Indicator, n int) ([]float64, bool) {
	if r == nil || n < 1 {
		return nil, false
	}
	get, ok := accessors[ind]
	if !ok {
		return nil, false
	}
	return lookback(get(r), n)
}

// lookback reverses the last n values of a chronological series.
func lookback(values []float64, n int) ([]float64, bool) {
	if n < 1 || len(values) < n {
		return nil, false
	}
	out := make([]float64, n)
	last := len(values) - 1
	for i := 0; i < n; i++ {
		v := values[last-i]
		if !finite(v) {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// scalar dereferences an optional row field.
func scalar(v *float64) (float64, bool) {
	if v == nil || !finite(*v) {
		return 0, false
	}
	return *v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
