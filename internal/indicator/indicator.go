// Package indicator provides technical indicator calculations over candle data.
//
// Unlike streaming engines that carry incremental per-candle state, everything
// here is a pure function from a candle series to a derived series of equal
// length. Indices before an indicator's lookback is satisfied hold NaN and
// must be treated as not ready.
package indicator

import (
	"math"

	"signal-botv1/internal/model"
)

// Default periods for the setup rule set.
const (
	DefaultFastPeriod = 21
	DefaultSlowPeriod = 200
	DefaultRSIPeriod  = 14
)

// Config specifies the periods used to build a Snapshot.
type Config struct {
	FastPeriod int
	SlowPeriod int
	RSIPeriod  int
}

// DefaultConfig returns the standard EMA 21/200 + RSI 14 configuration.
func DefaultConfig() Config {
	return Config{
		FastPeriod: DefaultFastPeriod,
		SlowPeriod: DefaultSlowPeriod,
		RSIPeriod:  DefaultRSIPeriod,
	}
}

// Snapshot holds derived series aligned by index to the candle series that
// produced them. It is returned alongside the candles, never fused into them.
type Snapshot struct {
	EMAFast []float64
	EMASlow []float64
	VWAP    []float64
	RSI     []float64
}

// Compute derives all indicator series for the given candles.
func Compute(series model.Series, cfg Config) Snapshot {
	closes := series.Closes()
	return Snapshot{
		EMAFast: EMA(closes, cfg.FastPeriod),
		EMASlow: EMA(closes, cfg.SlowPeriod),
		VWAP:    VWAP(series),
		RSI:     RSI(closes, cfg.RSIPeriod),
	}
}

// Len returns the snapshot length (all series share it).
func (s *Snapshot) Len() int {
	return len(s.EMAFast)
}

// Ready reports whether every indicator has a defined value at index i.
func (s *Snapshot) Ready(i int) bool {
	if i < 0 || i >= s.Len() {
		return false
	}
	return !math.IsNaN(s.EMAFast[i]) && !math.IsNaN(s.EMASlow[i]) &&
		!math.IsNaN(s.VWAP[i]) && !math.IsNaN(s.RSI[i])
}
