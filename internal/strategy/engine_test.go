package strategy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"StockScreener/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crossRow(code string, crossed bool) *model.Row {
	k := points(6, 8, 10)
	if !crossed {
		k = points(12, 11, 10)
	}
	return &model.Row{
		Code:         code,
		Name:         "stock " + code,
		TradedShares: model.Float(2_000_000),
		ForeignNet:   model.Float(300_000),
		DailyK:       closes(50, 51, 52),
		K9:           k,
		D9:           points(9, 9, 9),
	}
}

func TestApply_OrderAndLength(t *testing.T) {
	rows := []*model.Row{
		crossRow("1101", true),
		crossRow("1102", false),
		nil,
		{Code: "1104"},
		crossRow("1105", true),
	}
	got := Apply(&GoldenCross{Indicator1: K9, Indicator2: D9, Days: 3}, rows)
	assert.Equal(t, []bool{true, false, false, false, true}, got)
	assert.Empty(t, Apply(&ForeignNetPositive{}, nil))
}

func TestApplyParallel_MatchesSequential(t *testing.T) {
	var rows []*model.Row
	for i := 0; i < 1000; i++ {
		rows = append(rows, crossRow(fmt.Sprintf("%04d", i), i%3 == 0))
	}
	c := &GoldenCross{Indicator1: K9, Indicator2: D9, Days: 3}
	want := Apply(c, rows)

	for _, workers := range []int{0, 1, 3, 8, 2000} {
		got, err := ApplyParallel(context.Background(), c, rows, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestApplyParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows := []*model.Row{crossRow("1", true), crossRow("2", true)}

	_, err := ApplyParallel(ctx, &ForeignNetPositive{}, rows, 4)
	assert.True(t, errors.Is(err, context.Canceled))
	_, err = ApplyParallel(ctx, &ForeignNetPositive{}, rows, 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScreen_Evaluate(t *testing.T) {
	s := &Screen{
		Name: "kd_cross_with_foreign",
		Conditions: []Condition{
			&GoldenCross{Indicator1: K9, Indicator2: D9, Days: 3},
			&ForeignBuy{ThresholdPct: 10},
		},
	}
	require.NoError(t, s.Validate())

	weak := crossRow("2303", true)
	weak.ForeignNet = model.Float(1)
	rows := []*model.Row{crossRow("2330", true), crossRow("2317", false), weak, crossRow("2454", true)}

	res, err := s.Evaluate(context.Background(), rows, 2)
	require.NoError(t, err)
	assert.Equal(t, "kd_cross_with_foreign", res.Screen)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, []model.ConditionHit{{Name: "golden_cross", Passed: 3}, {Name: "foreign_buy", Passed: 3}}, res.Conditions)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "2330", res.Matches[0].Code)
	assert.Equal(t, "2454", res.Matches[1].Code)
	assert.Equal(t, 52.0, res.Matches[0].Close)

	assert.True(t, s.Match(rows[0]))
	assert.False(t, s.Match(rows[2]))
}

func TestScreen_Validate(t *testing.T) {
	assert.Error(t, (&Screen{Name: "empty"}).Validate())
	assert.Error(t, (&Screen{Conditions: []Condition{&ForeignNetPositive{}}}).Validate())

	err := (&Screen{Name: "bad", Conditions: []Condition{&GoldenCross{Indicator1: K9, Indicator2: D9}}}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "golden_cross")
}

func TestNew(t *testing.T) {
	c, err := New("golden_cross")
	require.NoError(t, err)
	assert.Equal(t, &GoldenCross{Indicator1: K9, Indicator2: D9, Days: 5}, c)

	_, err = New("rsi_divergence")
	assert.True(t, errors.Is(err, ErrUnknownCondition))

	names := Names()
	assert.Len(t, names, 20)
	assert.IsIncreasing(t, names)
	for _, name := range names {
		c, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}
