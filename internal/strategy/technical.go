package strategy

import (
	"fmt"
	"math"

	"StockScreener/internal/model"
)

// Technical conditions. Same-day checks over Days look at today plus Days-1
// prior sessions; today-vs-yesterday checks read one extra session so every
// checked day has a prior partner. Windows are newest first.

func pair(r *model.Row, a, b Indicator, n int) (wa, wb []float64, ok bool) {
	if wa, ok = resolve(r, a, n); !ok {
		return nil, nil, false
	}
	if wb, ok = resolve(r, b, n); !ok {
		return nil, nil, false
	}
	return wa, wb, true
}

func maxOf(w []float64) float64 {
	m := math.Inf(-1)
	for _, v := range w {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(w []float64) float64 {
	m := math.Inf(1)
	for _, v := range w {
		if v < m {
			m = v
		}
	}
	return m
}

func validatePrice(p Indicator, days int) error {
	if !p.IsPrice() {
		return fmt.Errorf("price must be one of open/high/low/close, got %q", p)
	}
	return validateDays(days)
}

// PriceIsMax passes when today's price is the highest of the last Days
// sessions. Ties count as the high.
type PriceIsMax struct {
	Price Indicator `yaml:"price"`
	Days  int       `yaml:"days"`
}

func (c *PriceIsMax) Name() string { return "price_is_max" }

func (c *PriceIsMax) Match(r *model.Row) bool {
	if !c.Price.IsPrice() {
		return false
	}
	w, ok := resolve(r, c.Price, c.Days)
	return ok && w[0] == maxOf(w)
}

func (c *PriceIsMax) Validate() error { return validatePrice(c.Price, c.Days) }

// PriceNotMin passes unless today's price is the lowest of the last Days
// sessions.
type PriceNotMin struct {
	Price Indicator `yaml:"price"`
	Days  int       `yaml:"days"`
}

func (c *PriceNotMin) Name() string { return "price_not_min" }

func (c *PriceNotMin) Match(r *model.Row) bool {
	if !c.Price.IsPrice() {
		return false
	}
	w, ok := resolve(r, c.Price, c.Days)
	return ok && w[0] != minOf(w)
}

func (c *PriceNotMin) Validate() error { return validatePrice(c.Price, c.Days) }

// VolumeNotMin passes unless today's volume is the lowest of the last Days
// sessions.
type VolumeNotMin struct {
	Days int `yaml:"days"`
}

func (c *VolumeNotMin) Name() string { return "volume_not_min" }

func (c *VolumeNotMin) Match(r *model.Row) bool {
	w, ok := resolve(r, Volume, c.Days)
	return ok && w[0] != minOf(w)
}

func (c *VolumeNotMin) Validate() error { return validateDays(c.Days) }

// VolumeAtLeast passes when volume stayed at or above ThresholdLots for the
// last Days sessions.
//
// For a single day the traded-shares scalar wins over the volume series when
// it is reported and non-zero, since the daily quote is more precise than the
// accumulated history.
type VolumeAtLeast struct {
	ThresholdLots float64 `yaml:"threshold_lots"`
	Days          int     `yaml:"days"`
}

func (c *VolumeAtLeast) Name() string { return "volume_at_least" }

func (c *VolumeAtLeast) Match(r *model.Row) bool {
	if r == nil {
		return false
	}
	if c.Days == 1 && r.TradedShares != nil && *r.TradedShares != 0 {
		shares := *r.TradedShares
		return finite(shares) && shares/1000 >= c.ThresholdLots
	}
	w, ok := resolve(r, Volume, c.Days)
	if !ok {
		return false
	}
	for _, v := range w {
		if v < c.ThresholdLots {
			return false
		}
	}
	return true
}

func (c *VolumeAtLeast) Validate() error { return validateDays(c.Days) }

// IndicatorAbove passes when Indicator1 > Indicator2 on each of the last Days
// sessions, e.g. close above mean5 or K9 above D9.
type IndicatorAbove struct {
	Indicator1 Indicator `yaml:"indicator_1"`
	Indicator2 Indicator `yaml:"indicator_2"`
	Days       int       `yaml:"days"`
}

func (c *IndicatorAbove) Name() string { return "indicator_above" }

func (c *IndicatorAbove) Match(r *model.Row) bool {
	w1, w2, ok := pair(r, c.Indicator1, c.Indicator2, c.Days)
	if !ok {
		return false
	}
	for i := range w1 {
		if !(w1[i] > w2[i]) {
			return false
		}
	}
	return true
}

func (c *IndicatorAbove) Validate() error {
	if err := validateIndicators(c.Indicator1, c.Indicator2); err != nil {
		return err
	}
	return validateDays(c.Days)
}

// IndicatorSpreadWithin passes when |Indicator1 - Indicator2| < Threshold on
// each of the last Days sessions.
type IndicatorSpreadWithin struct {
	Indicator1 Indicator `yaml:"indicator_1"`
	Indicator2 Indicator `yaml:"indicator_2"`
	Threshold  float64   `yaml:"threshold"`
	Days       int       `yaml:"days"`
}

func (c *IndicatorSpreadWithin) Name() string { return "indicator_spread_within" }

func (c *IndicatorSpreadWithin) Match(r *model.Row) bool {
	w1, w2, ok := pair(r, c.Indicator1, c.Indicator2, c.Days)
	if !ok {
		return false
	}
	for i := range w1 {
		if !(math.Abs(w1[i]-w2[i]) < c.Threshold) {
			return false
		}
	}
	return true
}

func (c *IndicatorSpreadWithin) Validate() error {
	if err := validateIndicators(c.Indicator1, c.Indicator2); err != nil {
		return err
	}
	return validateDays(c.Days)
}

// IndicatorVsPrior compares today's Indicator1 against Factor times the
// previous session's Indicator2, for each of the last Days sessions.
// K9 vs K9 with factor 1 means "K9 rising"; close vs close with direction
// less and factor 1.08 caps the daily gain below 8%.
type IndicatorVsPrior struct {
	Indicator1 Indicator `yaml:"indicator_1"`
	Indicator2 Indicator `yaml:"indicator_2"`
	Direction  Direction `yaml:"direction"`
	Factor     float64   `yaml:"factor"`
	Days       int       `yaml:"days"`
}

func (c *IndicatorVsPrior) Name() string { return "indicator_vs_prior" }

func (c *IndicatorVsPrior) Match(r *model.Row) bool {
	if c.Days < 1 {
		return false
	}
	w1, w2, ok := pair(r, c.Indicator1, c.Indicator2, c.Days+1)
	if !ok {
		return false
	}
	for i := 0; i < c.Days; i++ {
		if !c.Direction.compare(w1[i], c.Factor*w2[i+1]) {
			return false
		}
	}
	return true
}

func (c *IndicatorVsPrior) Validate() error {
	if err := validateIndicators(c.Indicator1, c.Indicator2); err != nil {
		return err
	}
	if err := c.Direction.validate(); err != nil {
		return err
	}
	return validateDays(c.Days)
}

// SpreadVsPrior passes when today's (Indicator1 - Indicator2) stays below
// Factor times the previous session's Indicator3, for each of the last Days
// sessions. The default bounds the candle body (close - open) by 8% of the
// prior close.
type SpreadVsPrior struct {
	Indicator1 Indicator `yaml:"indicator_1"`
	Indicator2 Indicator `yaml:"indicator_2"`
	Factor     float64   `yaml:"factor"`
	Indicator3 Indicator `yaml:"indicator_3"`
	Days       int       `yaml:"days"`
}

func (c *SpreadVsPrior) Name() string { return "spread_vs_prior" }

func (c *SpreadVsPrior) Match(r *model.Row) bool {
	if c.Days < 1 {
		return false
	}
	w1, w2, ok := pair(r, c.Indicator1, c.Indicator2, c.Days+1)
	if !ok {
		return false
	}
	w3, ok := resolve(r, c.Indicator3, c.Days+1)
	if !ok {
		return false
	}
	for i := 0; i < c.Days; i++ {
		if !(w1[i]-w2[i] < c.Factor*w3[i+1]) {
			return false
		}
	}
	return true
}

func (c *SpreadVsPrior) Validate() error {
	if err := validateIndicators(c.Indicator1, c.Indicator2, c.Indicator3); err != nil {
		return err
	}
	return validateDays(c.Days)
}

// SpreadNonDecreasing passes when (Indicator1 - Indicator2) has not shrunk from
// one session to the next over the last Days+1 sessions: each day's spread is
// at least the previous day's.
type SpreadNonDecreasing struct {
	Indicator1 Indicator `yaml:"indicator_1"`
	Indicator2 Indicator `yaml:"indicator_2"`
	Days       int       `yaml:"days"`
}

func (c *SpreadNonDecreasing) Name() string { return "spread_non_decreasing" }

func (c *SpreadNonDecreasing) Match(r *model.Row) bool {
	if c.Days < 1 {
		return false
	}
	w1, w2, ok := pair(r, c.Indicator1, c.Indicator2, c.Days+1)
	if !ok {
		return false
	}
	return spreadsNonDecreasing(w1, w2)
}

// spreadsNonDecreasing checks newest-first windows: diff[i] >= diff[i+1].
func spreadsNonDecreasing(w1, w2 []float64) bool {
	for i := 0; i+1 < len(w1); i++ {
		if !(w1[i]-w2[i] >= w1[i+1]-w2[i+1]) {
			return false
		}
	}
	return true
}

func (c *SpreadNonDecreasing) Validate() error {
	if err := validateIndicators(c.Indicator1, c.Indicator2); err != nil {
		return err
	}
	return validateDays(c.Days)
}

// GoldenCross passes when Indicator1 is above Indicator2 today and was below
// it on at least one of the last Days sessions. The crossing day itself is
// not located.
type GoldenCross struct {
	Indicator1 Indicator `yaml:"indicator_1"`
	Indicator2 Indicator `yaml:"indicator_2"`
	Days       int       `yaml:"days"`
}

func (c *GoldenCross) Name() string { return "golden_cross" }

func (c *GoldenCross) Match(r *model.Row) bool {
	w1, w2, ok := pair(r, c.Indicator1, c.Indicator2, c.Days)
	if !ok || !(w1[0] > w2[0]) {
		return false
	}
	for i := range w1 {
		if w1[i] < w2[i] {
			return true
		}
	}
	return false
}

func (c *GoldenCross) Validate() error {
	if err := validateIndicators(c.Indicator1, c.Indicator2); err != nil {
		return err
	}
	return validateDays(c.Days)
}

// IndicatorThreshold passes when Indicator stayed above (more) or below (less)
// Threshold for the last Days sessions, e.g. K9 under 20.
type IndicatorThreshold struct {
	Indicator Indicator `yaml:"indicator"`
	Direction Direction `yaml:"direction"`
	Threshold float64   `yaml:"threshold"`
	Days      int       `yaml:"days"`
}

func (c *IndicatorThreshold) Name() string { return "indicator_threshold" }

func (c *IndicatorThreshold) Match(r *model.Row) bool {
	w, ok := resolve(r, c.Indicator, c.Days)
	if !ok {
		return false
	}
	for _, v := range w {
		if !c.Direction.compare(v, c.Threshold) {
			return false
		}
	}
	return true
}

func (c *IndicatorThreshold) Validate() error {
	if err := validateIndicators(c.Indicator); err != nil {
		return err
	}
	if err := c.Direction.validate(); err != nil {
		return err
	}
	return validateDays(c.Days)
}
