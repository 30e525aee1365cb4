package strategy

import (
	"errors"
	"fmt"
	"sort"

	"StockScreener/internal/model"
)

// ErrUnknownCondition is returned by New for names outside the menu.
var ErrUnknownCondition = errors.New("unknown condition")

// Condition is a screening predicate over a single row.
// Match never panics and returns false whenever the row lacks the data the
// condition needs.
type Condition interface {
	Name() string
	Match(r *model.Row) bool
	Validate() error
}

// Direction selects the comparison used by directional conditions.
type Direction string

const (
	More Direction = "more"
	Less Direction = "less"
)

// compare returns a > b for More and a < b for Less. Any other direction
// never matches.
func (d Direction) compare(a, b float64) bool {
	switch d {
	case More:
		return a > b
	case Less:
		return a < b
	}
	return false
}

func (d Direction) validate() error {
	if d != More && d != Less {
		return fmt.Errorf("direction must be %q or %q, got %q", More, Less, d)
	}
	return nil
}

var menu = map[string]func() Condition{
	// ownership flow
	"institutional_any_buy":      func() Condition { return &InstitutionalAnyBuy{ThresholdPct: 10} },
	"institutional_total_buy":    func() Condition { return &InstitutionalTotalBuy{ThresholdPct: 10} },
	"foreign_buy":                func() Condition { return &ForeignBuy{ThresholdPct: 10} },
	"foreign_holding":            func() Condition { return &ForeignHolding{ThresholdPct: 30} },
	"institutional_net_positive": func() Condition { return &InstitutionalNetPositive{} },
	"foreign_net_positive":       func() Condition { return &ForeignNetPositive{} },
	"margin_increase":            func() Condition { return &MarginIncrease{ThresholdPct: 1} },
	"short_decrease":             func() Condition { return &ShortDecrease{ThresholdPct: 1} },
	"short_margin_ratio":         func() Condition { return &ShortMarginRatio{ThresholdPct: 5} },

	// price and volume
	"price_is_max":    func() Condition { return &PriceIsMax{Price: Close, Days: 3} },
	"price_not_min":   func() Condition { return &PriceNotMin{Price: Close, Days: 3} },
	"volume_not_min":  func() Condition { return &VolumeNotMin{Days: 3} },
	"volume_at_least": func() Condition { return &VolumeAtLeast{ThresholdLots: 500, Days: 1} },

	// indicators
	"indicator_above": func() Condition {
		return &IndicatorAbove{Indicator1: Close, Indicator2: Mean5, Days: 1}
	},
	"indicator_spread_within": func() Condition {
		return &IndicatorSpreadWithin{Indicator1: K9, Indicator2: D9, Threshold: 10, Days: 1}
	},
	"indicator_vs_prior": func() Condition {
		return &IndicatorVsPrior{Indicator1: K9, Indicator2: K9, Direction: More, Factor: 1, Days: 1}
	},
	"spread_vs_prior": func() Condition {
		return &SpreadVsPrior{Indicator1: Close, Indicator2: Open, Factor: 0.08, Indicator3: Close, Days: 1}
	},
	"spread_non_decreasing": func() Condition { return &SpreadNonDecreasing{Indicator1: K9, Indicator2: D9, Days: 1} },
	"golden_cross":          func() Condition { return &GoldenCross{Indicator1: K9, Indicator2: D9, Days: 5} },
	"indicator_threshold": func() Condition {
		return &IndicatorThreshold{Indicator: K9, Direction: More, Threshold: 20, Days: 1}
	},
}

// New returns the named condition with its default parameters.
func New(name string) (Condition, error) {
	build, ok := menu[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCondition, name)
	}
	return build(), nil
}

// Names returns the menu in sorted order.
func Names() []string {
	names := make([]string, 0, len(menu))
	for name := range menu {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateDays(days int) error {
	if days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", days)
	}
	return nil
}

func validateIndicators(inds ...Indicator) error {
	for _, ind := range inds {
		if !ind.Valid() {
			return fmt.Errorf("unknown indicator %q", ind)
		}
	}
	return nil
}
