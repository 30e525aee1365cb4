package strategy

import (
	"math"
	"testing"

	"StockScreener/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestEveryCondition_EmptyRowIsFalse(t *testing.T) {
	for _, name := range Names() {
		c, err := New(name)
		if !assert.NoError(t, err, name) {
			continue
		}
		assert.False(t, c.Match(&model.Row{}), "%s on empty row", name)
		assert.False(t, c.Match(nil), "%s on nil row", name)
		assert.NoError(t, c.Validate(), "%s defaults must validate", name)
	}
}

func TestPriceIsMax(t *testing.T) {
	c := &PriceIsMax{Price: Close, Days: 3}

	assert.True(t, c.Match(&model.Row{DailyK: closes(5, 6, 7)}))
	assert.True(t, c.Match(&model.Row{DailyK: closes(5, 7, 7)}), "tie with prior high counts")
	assert.False(t, c.Match(&model.Row{DailyK: closes(5, 8, 7)}))
	assert.True(t, c.Match(&model.Row{DailyK: closes(9, 5, 6, 7)}), "older high outside window")
	assert.False(t, c.Match(&model.Row{DailyK: closes(6, 7)}), "short history")

	high := &PriceIsMax{Price: High, Days: 2}
	assert.True(t, high.Match(&model.Row{DailyK: closes(5, 6)}))

	assert.False(t, (&PriceIsMax{Price: K9, Days: 1}).Match(&model.Row{K9: points(1)}), "non-price field")
	assert.Error(t, (&PriceIsMax{Price: K9, Days: 1}).Validate())
}

func TestPriceNotMin(t *testing.T) {
	c := &PriceNotMin{Price: Close, Days: 3}
	assert.True(t, c.Match(&model.Row{DailyK: closes(5, 4, 6)}))
	assert.False(t, c.Match(&model.Row{DailyK: closes(5, 6, 4)}))
	assert.False(t, c.Match(&model.Row{DailyK: closes(5, 4, 4)}), "tie with prior low is the low")
}

func TestVolumeNotMin(t *testing.T) {
	c := &VolumeNotMin{Days: 3}
	assert.True(t, c.Match(&model.Row{Volume: points(900, 800, 850)}))
	assert.False(t, c.Match(&model.Row{Volume: points(900, 800, 700)}))
	assert.False(t, c.Match(&model.Row{Volume: points(800, 700)}))
}

func TestVolumeAtLeast_ScalarOverride(t *testing.T) {
	c := &VolumeAtLeast{ThresholdLots: 500, Days: 1}

	row := &model.Row{TradedShares: model.Float(600_000), Volume: points(1)}
	assert.True(t, c.Match(row), "600000 shares = 600 lots, series ignored")

	row = &model.Row{TradedShares: model.Float(600_000)}
	assert.True(t, c.Match(row), "no series needed")

	row = &model.Row{TradedShares: model.Float(400_000), Volume: points(9999)}
	assert.False(t, c.Match(row))
}

func TestVolumeAtLeast_SeriesFallback(t *testing.T) {
	one := &VolumeAtLeast{ThresholdLots: 500, Days: 1}
	assert.True(t, one.Match(&model.Row{TradedShares: model.Float(0), Volume: points(100, 700)}), "zero scalar falls back")
	assert.True(t, one.Match(&model.Row{Volume: points(700)}))

	three := &VolumeAtLeast{ThresholdLots: 500, Days: 3}
	row := &model.Row{TradedShares: model.Float(9_000_000), Volume: points(100, 500, 600, 700)}
	assert.True(t, three.Match(row), "multi-day uses the series only")
	row.Volume = points(500, 499, 600)
	assert.False(t, three.Match(row))
	row.Volume = points(600, 700)
	assert.False(t, three.Match(row))
}

func TestIndicatorAbove(t *testing.T) {
	c := &IndicatorAbove{Indicator1: Close, Indicator2: Mean5, Days: 2}
	row := &model.Row{DailyK: closes(9, 11, 12), Mean5: points(10, 10, 10)}
	assert.True(t, c.Match(row))

	c.Days = 3
	assert.False(t, c.Match(row), "9 < 10 three sessions back")

	c.Days = 2
	row.Mean5 = points(11, 12)
	assert.False(t, c.Match(row), "equal is not above")

	c.Days = 4
	assert.False(t, c.Match(row), "short history")
}

func TestIndicatorAbove_MismatchedDepth(t *testing.T) {
	row := &model.Row{K9: points(60, 70, 80, 90, 95), D9: points(50)}

	assert.False(t, (&IndicatorAbove{Indicator1: K9, Indicator2: D9, Days: 3}).Match(row), "no truncation to the shorter series")
	assert.True(t, (&IndicatorAbove{Indicator1: K9, Indicator2: D9, Days: 1}).Match(row))
}

func TestIndicatorSpreadWithin(t *testing.T) {
	row := &model.Row{K9: points(80, 50, 55), D9: points(20, 45, 50)}

	assert.True(t, (&IndicatorSpreadWithin{Indicator1: K9, Indicator2: D9, Threshold: 10, Days: 2}).Match(row))
	assert.False(t, (&IndicatorSpreadWithin{Indicator1: K9, Indicator2: D9, Threshold: 5, Days: 1}).Match(row), "strict bound")
	assert.False(t, (&IndicatorSpreadWithin{Indicator1: K9, Indicator2: D9, Threshold: 10, Days: 3}).Match(row))
	assert.True(t, (&IndicatorSpreadWithin{Indicator1: D9, Indicator2: K9, Threshold: 10, Days: 2}).Match(row), "absolute value")
}

func TestIndicatorVsPrior(t *testing.T) {
	row := &model.Row{K9: points(10, 20, 30)}

	rising := &IndicatorVsPrior{Indicator1: K9, Indicator2: K9, Direction: More, Factor: 1, Days: 2}
	assert.True(t, rising.Match(row))

	rising.Days = 3
	assert.False(t, rising.Match(row), "needs Days+1 sessions")

	falling := &IndicatorVsPrior{Indicator1: K9, Indicator2: K9, Direction: Less, Factor: 1, Days: 1}
	assert.False(t, falling.Match(row))

	capped := &IndicatorVsPrior{Indicator1: Close, Indicator2: Close, Direction: Less, Factor: 1.08, Days: 1}
	assert.True(t, capped.Match(&model.Row{DailyK: closes(100, 107)}))
	assert.False(t, capped.Match(&model.Row{DailyK: closes(100, 109)}))

	bogus := &IndicatorVsPrior{Indicator1: K9, Indicator2: K9, Direction: "up", Factor: 1, Days: 1}
	assert.False(t, bogus.Match(row))
	assert.Error(t, bogus.Validate())
}

func TestSpreadVsPrior(t *testing.T) {
	c := &SpreadVsPrior{Indicator1: Close, Indicator2: Open, Factor: 0.08, Indicator3: Close, Days: 1}

	// open is close-1, so the body is 1 against 8% of the prior close
	assert.True(t, c.Match(&model.Row{DailyK: closes(100, 101)}))
	assert.False(t, c.Match(&model.Row{DailyK: closes(10, 11)}))
	assert.False(t, c.Match(&model.Row{DailyK: closes(100)}), "needs a prior session")
}

func TestSpreadNonDecreasing(t *testing.T) {
	c := &SpreadNonDecreasing{Indicator1: K9, Indicator2: D9, Days: 3}
	zero := points(0, 0, 0, 0)

	// spreads newest first: 5, 5, 3, 2
	assert.True(t, c.Match(&model.Row{K9: points(2, 3, 5, 5), D9: zero}))
	// spreads newest first: 2, 5, 3, 2
	assert.False(t, c.Match(&model.Row{K9: points(2, 3, 5, 2), D9: zero}))

	assert.False(t, c.Match(&model.Row{K9: points(3, 5, 5), D9: points(0, 0, 0)}), "needs Days+1 sessions")

	one := &SpreadNonDecreasing{Indicator1: K9, Indicator2: D9, Days: 1}
	assert.True(t, one.Match(&model.Row{K9: points(40, 52), D9: points(38, 45)}))
	assert.False(t, one.Match(&model.Row{K9: points(40, 44), D9: points(30, 40)}))
}

func TestGoldenCross(t *testing.T) {
	c := &GoldenCross{Indicator1: K9, Indicator2: D9, Days: 3}

	// newest first: 10 8 6 against 9 9 9
	assert.True(t, c.Match(&model.Row{K9: points(6, 8, 10), D9: points(9, 9, 9)}))
	// newest first: 10 11 12, never below
	assert.False(t, c.Match(&model.Row{K9: points(12, 11, 10), D9: points(9, 9, 9)}))
	// below today
	assert.False(t, c.Match(&model.Row{K9: points(6, 8, 8), D9: points(9, 9, 9)}))
	// the dip is outside the window
	assert.False(t, c.Match(&model.Row{K9: points(1, 10, 11, 12), D9: points(9, 9, 9, 9)}))
	// touching is not below
	assert.False(t, c.Match(&model.Row{K9: points(9, 9, 10), D9: points(9, 9, 9)}))
}

func TestIndicatorThreshold(t *testing.T) {
	row := &model.Row{K9: points(30, 15, 10)}

	assert.True(t, (&IndicatorThreshold{Indicator: K9, Direction: Less, Threshold: 20, Days: 2}).Match(row))
	assert.False(t, (&IndicatorThreshold{Indicator: K9, Direction: Less, Threshold: 20, Days: 3}).Match(row))
	assert.False(t, (&IndicatorThreshold{Indicator: K9, Direction: More, Threshold: 20, Days: 1}).Match(row))
	assert.False(t, (&IndicatorThreshold{Indicator: K9, Direction: Less, Threshold: 10, Days: 1}).Match(row), "strict")
}

func TestNonFiniteValuesNeverMatch(t *testing.T) {
	row := &model.Row{
		K9:     points(10, math.NaN()),
		D9:     points(5, 5),
		Volume: points(100, math.Inf(1)),
	}
	assert.False(t, (&IndicatorAbove{Indicator1: K9, Indicator2: D9, Days: 1}).Match(row))
	assert.False(t, (&VolumeNotMin{Days: 2}).Match(row))
	assert.False(t, (&VolumeAtLeast{ThresholdLots: 1, Days: 1}).Match(&model.Row{TradedShares: model.Float(math.NaN())}))
}

func TestValidate_RejectsBadParameters(t *testing.T) {
	assert.Error(t, (&GoldenCross{Indicator1: K9, Indicator2: D9, Days: 0}).Validate())
	assert.Error(t, (&GoldenCross{Indicator1: "kd", Indicator2: D9, Days: 5}).Validate())
	assert.Error(t, (&IndicatorThreshold{Indicator: K9, Direction: "", Threshold: 1, Days: 1}).Validate())
	assert.Error(t, (&SpreadVsPrior{Indicator1: Close, Indicator2: Open, Indicator3: "x", Days: 1}).Validate())
	assert.Error(t, (&ForeignBuy{ThresholdPct: math.NaN()}).Validate())
}
