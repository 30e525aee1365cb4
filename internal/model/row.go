package model

// Row is one security's snapshot for the evaluation date.
//
// Scalar fields are nil when the data source did not report them. Series are
// chronological with the latest observation last; a nil series is absent.
type Row struct {
	Code string `json:"code"`
	Name string `json:"name"`

	// Share counts; net figures are signed, positive means net buying.
	TradedShares      *float64 `json:"traded_shares,omitempty"`
	ForeignNet        *float64 `json:"foreign_net,omitempty"`
	TrustNet          *float64 `json:"trust_net,omitempty"`
	DealerNet         *float64 `json:"dealer_net,omitempty"`
	InstitutionalNet  *float64 `json:"institutional_net,omitempty"`
	ForeignHoldingPct *float64 `json:"foreign_holding_pct,omitempty"`
	MarginDelta       *float64 `json:"margin_delta,omitempty"`
	ShortDelta        *float64 `json:"short_delta,omitempty"`
	ShortMarginRatio  *float64 `json:"short_margin_ratio,omitempty"`

	// Volume is in lots of 1000 shares.
	DailyK []Bar   `json:"daily_k,omitempty"`
	Volume []Point `json:"volume,omitempty"`
	K9     []Point `json:"k9,omitempty"`
	D9     []Point `json:"d9,omitempty"`
	DIF    []Point `json:"dif,omitempty"`
	MACD   []Point `json:"macd,omitempty"`
	OSC    []Point `json:"osc,omitempty"`
	Mean5  []Point `json:"mean5,omitempty"`
	Mean10 []Point `json:"mean10,omitempty"`
	Mean20 []Point `json:"mean20,omitempty"`
	Mean60 []Point `json:"mean60,omitempty"`
}

// LastClose returns the most recent close, or 0 if the K line is empty.
func (r *Row) LastClose() float64 {
	if r == nil || len(r.DailyK) == 0 {
		return 0
	}
	return r.DailyK[len(r.DailyK)-1].Close
}

// Float returns a pointer to v, for building rows by hand.
func Float(v float64) *float64 { return &v }
