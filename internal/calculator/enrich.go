package calculator

import (
	"fmt"

	"StockScreener/internal/model"
)

// Standard periods for the derived series.
const (
	KDPeriod   = 9
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// Enrich fills every absent indicator series of r from its daily K line.
// Series already present are left untouched. It returns the names filled and
// one error per series the available history was too short for.
func Enrich(r *model.Row) (filled []string, failed []error) {
	if r == nil || len(r.DailyK) == 0 {
		return nil, nil
	}

	means := []struct {
		name   string
		period int
		dst    *[]model.Point
	}{
		{"mean5", 5, &r.Mean5},
		{"mean10", 10, &r.Mean10},
		{"mean20", 20, &r.Mean20},
		{"mean60", 60, &r.Mean60},
	}
	for _, m := range means {
		if *m.dst != nil {
			continue
		}
		s, err := SMASeries(r.DailyK, m.period)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		*m.dst = s
		filled = append(filled, m.name)
	}

	if r.K9 == nil || r.D9 == nil {
		k, d, err := KDSeries(r.DailyK, KDPeriod)
		if err != nil {
			failed = append(failed, fmt.Errorf("kd: %w", err))
		} else {
			if r.K9 == nil {
				r.K9 = k
				filled = append(filled, "k9")
			}
			if r.D9 == nil {
				r.D9 = d
				filled = append(filled, "d9")
			}
		}
	}

	if r.DIF == nil || r.MACD == nil || r.OSC == nil {
		dif, macd, osc, err := MACDSeries(r.DailyK, MACDFast, MACDSlow, MACDSignal)
		if r.DIF == nil && dif != nil {
			r.DIF = dif
			filled = append(filled, "dif")
		}
		if err != nil {
			failed = append(failed, fmt.Errorf("macd: %w", err))
		} else {
			if r.MACD == nil {
				r.MACD = macd
				filled = append(filled, "macd")
			}
			if r.OSC == nil {
				r.OSC = osc
				filled = append(filled, "osc")
			}
		}
	}
	return filled, failed
}
