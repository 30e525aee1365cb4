package calculator

import (
	"errors"

	"StockScreener/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the rolling simple moving average of closes, one point per
// bar starting at the period-th bar.
func SMASeries(bars []model.Bar, period int) ([]model.Point, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(bars) < period {
		return nil, errors.New("not enough data for SMA series")
	}
	closes := extractCloses(bars)
	out := make([]model.Point, 0, len(bars)-period+1)
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out = append(out, model.Point{Date: bars[i].Date, Value: sum / float64(period)})
		}
	}
	return out, nil
}

// emaSeries returns the exponential moving average of values, seeded with the
// SMA of the first period values. out[0] lines up with values[period-1].
func emaSeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(values) < period {
		return nil, errors.New("not enough data for EMA calculation")
	}
	seed, _ := CalculateSMA(values[:period], period)
	alpha := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)
	prev := seed
	for _, v := range values[period:] {
		prev = alpha*v + (1-alpha)*prev
		out = append(out, prev)
	}
	return out, nil
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
