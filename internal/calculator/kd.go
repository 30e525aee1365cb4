package calculator

import (
	"errors"
	"math"

	"StockScreener/internal/model"
)

// KDSeries computes the stochastic oscillator with the local convention:
// RSV over period bars, K and D smoothed by 1/3 and seeded at 50.
// A flat range (high == low) yields an RSV of 50.
func KDSeries(bars []model.Bar, period int) (k, d []model.Point, err error) {
	if period <= 0 {
		return nil, nil, errors.New("period must be positive")
	}
	if len(bars) < period {
		return nil, nil, errors.New("not enough data for KD calculation")
	}
	prevK, prevD := 50.0, 50.0
	k = make([]model.Point, 0, len(bars)-period+1)
	d = make([]model.Point, 0, len(bars)-period+1)
	for i := period - 1; i < len(bars); i++ {
		hh, ll := math.Inf(-1), math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hh = math.Max(hh, bars[j].High)
			ll = math.Min(ll, bars[j].Low)
		}
		rsv := 50.0
		if hh > ll {
			rsv = (bars[i].Close - ll) / (hh - ll) * 100
		}
		prevK = prevK*2/3 + rsv/3
		prevD = prevD*2/3 + prevK/3
		k = append(k, model.Point{Date: bars[i].Date, Value: prevK})
		d = append(d, model.Point{Date: bars[i].Date, Value: prevD})
	}
	return k, d, nil
}
