package model

import "time"

// TriggerType indicates what started a scan.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerManual    TriggerType = "MANUAL"
	TriggerCLI       TriggerType = "CLI"
)

// ConditionHit counts how many rows passed one condition of a screen.
type ConditionHit struct {
	Name   string
	Passed int
}

// Match is a security that passed every condition of a screen.
type Match struct {
	Code  string
	Name  string
	Close float64
}

// ScreenResult is the output of one screen over one table. Results from
// the same scan share a ScanID.
type ScreenResult struct {
	ScanID      string
	Screen      string
	TriggerType TriggerType
	Total       int
	Conditions  []ConditionHit
	Matches     []Match
	EvaluatedAt time.Time
}
