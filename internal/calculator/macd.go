package calculator

import (
	"fmt"

	"StockScreener/internal/model"
)

// MACDSeries computes DIF = EMA(fast) - EMA(slow) on closes, MACD = EMA(signal)
// of DIF and OSC = DIF - MACD. DIF starts at the slow-th bar, MACD and OSC
// signal-1 bars later.
func MACDSeries(bars []model.Bar, fast, slow, signal int) (dif, macd, osc []model.Point, err error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return nil, nil, nil, fmt.Errorf("invalid MACD periods %d/%d/%d", fast, slow, signal)
	}
	closes := extractCloses(bars)
	fastEMA, err := emaSeries(closes, fast)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fast EMA: %w", err)
	}
	slowEMA, err := emaSeries(closes, slow)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("slow EMA: %w", err)
	}

	// align fast EMA with slow EMA, both ending at the last bar
	offset := len(fastEMA) - len(slowEMA)
	difValues := make([]float64, len(slowEMA))
	for i := range slowEMA {
		difValues[i] = fastEMA[i+offset] - slowEMA[i]
	}
	first := slow - 1
	dif = make([]model.Point, len(difValues))
	for i, v := range difValues {
		dif[i] = model.Point{Date: bars[first+i].Date, Value: v}
	}

	signalEMA, err := emaSeries(difValues, signal)
	if err != nil {
		return dif, nil, nil, fmt.Errorf("signal EMA: %w", err)
	}
	first += signal - 1
	macd = make([]model.Point, len(signalEMA))
	osc = make([]model.Point, len(signalEMA))
	for i, v := range signalEMA {
		date := bars[first+i].Date
		macd[i] = model.Point{Date: date, Value: v}
		osc[i] = model.Point{Date: date, Value: difValues[signal-1+i] - v}
	}
	return dif, macd, osc, nil
}
