package model

import (
	"encoding/json"
	"time"
)

// Direction identifies which side of a setup fired.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Word returns the trader-facing action word for alert messages.
func (d Direction) Word() string {
	if d == DirectionShort {
		return "SELL"
	}
	return "BUY"
}

// Condition is one named check of a setup's condition set, in evaluation order.
// A slice keeps alert output deterministic (a map would shuffle it).
type Condition struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`
}

// RiskPlan holds risk-managed trade levels for a fired long setup.
type RiskPlan struct {
	Entry       float64 `json:"entry"`
	Stop        float64 `json:"stop"`
	Target1     float64 `json:"target_1"`
	Target2     float64 `json:"target_2"`
	Target3     float64 `json:"target_3"`
	RiskPercent float64 `json:"risk_percent"`
}

// Valid reports whether the plan is actionable: the stop must sit below entry.
func (p *RiskPlan) Valid() bool {
	return p != nil && p.Entry > p.Stop
}

// SetupResult is the outcome of evaluating one direction's condition set for
// one symbol. Created fresh per evaluation and never mutated afterwards.
type SetupResult struct {
	Symbol    string      `json:"symbol"`
	Direction Direction   `json:"direction"`
	Fired     bool        `json:"fired"`
	Reason    string      `json:"reason,omitempty"` // set when short-circuited
	Price     float64     `json:"price"`
	EMAFast   float64     `json:"ema_fast"`
	EMASlow   float64     `json:"ema_slow"`
	VWAP      float64     `json:"vwap"`
	RSI       float64     `json:"rsi"`
	Volume    float64     `json:"volume"`
	Checks    []Condition `json:"checks,omitempty"`
	At        time.Time   `json:"at"`
	Risk      *RiskPlan   `json:"risk,omitempty"` // long setups only
}

// Check returns the outcome of the named condition, false if absent.
func (r *SetupResult) Check(name string) bool {
	for _, c := range r.Checks {
		if c.Name == name {
			return c.Pass
		}
	}
	return false
}

// JSON returns the JSON-encoded result.
func (r *SetupResult) JSON() []byte {
	b, _ := json.Marshal(r)
	return b
}
