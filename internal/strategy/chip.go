package strategy

import (
	"fmt"

	"StockScreener/internal/model"
)

// Ownership-flow conditions. They read only the current-day scalars of a row.

// volumeShare returns pct percent of the row's traded shares.
func volumeShare(r *model.Row, pct float64) (float64, bool) {
	if r == nil {
		return 0, false
	}
	traded, ok := scalar(r.TradedShares)
	if !ok {
		return 0, false
	}
	return traded * (pct / 100), true
}

// atLeastShareOf reports field >= pct% of traded shares.
func atLeastShareOf(r *model.Row, field func(*model.Row) *float64, pct float64) bool {
	limit, ok := volumeShare(r, pct)
	if !ok {
		return false
	}
	v, ok := scalar(field(r))
	return ok && v >= limit
}

func validatePct(pct float64) error {
	if !finite(pct) {
		return fmt.Errorf("threshold_pct must be finite")
	}
	return nil
}

// InstitutionalAnyBuy passes when the foreign, trust or dealer net volume is at
// least ThresholdPct% of traded shares. All three categories must be reported.
type InstitutionalAnyBuy struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *InstitutionalAnyBuy) Name() string { return "institutional_any_buy" }

func (c *InstitutionalAnyBuy) Match(r *model.Row) bool {
	limit, ok := volumeShare(r, c.ThresholdPct)
	if !ok {
		return false
	}
	passed := false
	for _, field := range []*float64{r.ForeignNet, r.TrustNet, r.DealerNet} {
		v, ok := scalar(field)
		if !ok {
			return false
		}
		if v >= limit {
			passed = true
		}
	}
	return passed
}

func (c *InstitutionalAnyBuy) Validate() error { return validatePct(c.ThresholdPct) }

// InstitutionalTotalBuy passes when the combined institutional net volume is
// at least ThresholdPct% of traded shares.
type InstitutionalTotalBuy struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *InstitutionalTotalBuy) Name() string { return "institutional_total_buy" }

func (c *InstitutionalTotalBuy) Match(r *model.Row) bool {
	return atLeastShareOf(r, func(r *model.Row) *float64 { return r.InstitutionalNet }, c.ThresholdPct)
}

func (c *InstitutionalTotalBuy) Validate() error { return validatePct(c.ThresholdPct) }

// ForeignBuy passes when the foreign net volume is at least ThresholdPct% of
// traded shares.
type ForeignBuy struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *ForeignBuy) Name() string { return "foreign_buy" }

func (c *ForeignBuy) Match(r *model.Row) bool {
	return atLeastShareOf(r, func(r *model.Row) *float64 { return r.ForeignNet }, c.ThresholdPct)
}

func (c *ForeignBuy) Validate() error { return validatePct(c.ThresholdPct) }

// ForeignHolding passes when foreign holding is at least ThresholdPct percent.
type ForeignHolding struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *ForeignHolding) Name() string { return "foreign_holding" }

func (c *ForeignHolding) Match(r *model.Row) bool {
	if r == nil {
		return false
	}
	v, ok := scalar(r.ForeignHoldingPct)
	return ok && v >= c.ThresholdPct
}

func (c *ForeignHolding) Validate() error { return validatePct(c.ThresholdPct) }

// InstitutionalNetPositive passes on any combined institutional net buying.
type InstitutionalNetPositive struct{}

func (c *InstitutionalNetPositive) Name() string { return "institutional_net_positive" }

func (c *InstitutionalNetPositive) Match(r *model.Row) bool {
	if r == nil {
		return false
	}
	v, ok := scalar(r.InstitutionalNet)
	return ok && v > 0
}

func (c *InstitutionalNetPositive) Validate() error { return nil }

// ForeignNetPositive passes on any foreign net buying.
type ForeignNetPositive struct{}

func (c *ForeignNetPositive) Name() string { return "foreign_net_positive" }

func (c *ForeignNetPositive) Match(r *model.Row) bool {
	if r == nil {
		return false
	}
	v, ok := scalar(r.ForeignNet)
	return ok && v > 0
}

func (c *ForeignNetPositive) Validate() error { return nil }

// MarginIncrease passes when margin purchases grew by at least ThresholdPct%
// of traded shares.
type MarginIncrease struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *MarginIncrease) Name() string { return "margin_increase" }

func (c *MarginIncrease) Match(r *model.Row) bool {
	return atLeastShareOf(r, func(r *model.Row) *float64 { return r.MarginDelta }, c.ThresholdPct)
}

func (c *MarginIncrease) Validate() error { return validatePct(c.ThresholdPct) }

// ShortDecrease passes when short positions shrank by at least ThresholdPct%
// of traded shares.
type ShortDecrease struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *ShortDecrease) Name() string { return "short_decrease" }

func (c *ShortDecrease) Match(r *model.Row) bool {
	limit, ok := volumeShare(r, c.ThresholdPct)
	if !ok {
		return false
	}
	v, ok := scalar(r.ShortDelta)
	return ok && -v >= limit
}

func (c *ShortDecrease) Validate() error { return validatePct(c.ThresholdPct) }

// ShortMarginRatio passes when the short/margin ratio is at least ThresholdPct.
type ShortMarginRatio struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
}

func (c *ShortMarginRatio) Name() string { return "short_margin_ratio" }

func (c *ShortMarginRatio) Match(r *model.Row) bool {
	if r == nil {
		return false
	}
	v, ok := scalar(r.ShortMarginRatio)
	return ok && v >= c.ThresholdPct
}

func (c *ShortMarginRatio) Validate() error { return validatePct(c.ThresholdPct) }
