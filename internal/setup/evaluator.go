// Package setup evaluates the long and short trading setups against the
// latest indicator values for a symbol. Each setup is a fixed, named
// condition set combined with logical AND — there is no partial scoring.
package setup

import (
	"math"
	"time"

	"signal-botv1/internal/indicator"
	"signal-botv1/internal/model"
)

const (
	// MinCandles is the shortest series the evaluator accepts; shorter input
	// short-circuits to a non-signal. Driven by the slow EMA lookback.
	MinCandles = 200

	// proximityPct is the "near support/resistance" band around EMA-fast/VWAP.
	proximityPct = 0.015

	// volumeLookback is the trailing window for the volume_up check.
	volumeLookback = 3

	rsiMin = 40.0
	rsiMax = 65.0
)

const ReasonInsufficientData = "insufficient data"

// Evaluate runs both condition sets against the newest candle of the series
// and its indicator snapshot. The snapshot must be aligned to the series.
// Returns one result per direction; at most one can have Fired=true per call
// (long and short condition sets are mutually exclusive on close vs EMA-slow).
func Evaluate(symbol string, series model.Series, snap indicator.Snapshot, at time.Time) (long, short model.SetupResult) {
	if len(series) < MinCandles || snap.Len() != len(series) {
		long = nonSignal(symbol, model.DirectionLong, at)
		short = nonSignal(symbol, model.DirectionShort, at)
		return long, short
	}

	i := len(series) - 1
	last := series.Last()
	prev := series.Prev()

	emaFast := snap.EMAFast[i]
	emaSlow := snap.EMASlow[i]
	vwap := snap.VWAP[i]
	rsi := snap.RSI[i]

	nearBand := nearEither(last.Close, emaFast, vwap)

	longChecks := []model.Condition{
		{Name: "trend_up", Pass: last.Close > emaSlow},
		{Name: "near_support", Pass: nearBand},
		{Name: "rsi_range", Pass: rsi >= rsiMin && rsi <= rsiMax},
		{Name: "strong_candle", Pass: indicator.StrongBullish(last)},
		{Name: "volume_up", Pass: indicator.VolumeIncreasing(series, volumeLookback)},
	}

	shortChecks := []model.Condition{
		{Name: "below_slow", Pass: last.Close < emaSlow},
		{Name: "vwap_above", Pass: vwap > last.Close},
		{Name: "near_resistance", Pass: nearBand},
		{Name: "rejection", Pass: last.Close < last.Open},
	}

	long = model.SetupResult{
		Symbol:    symbol,
		Direction: model.DirectionLong,
		Fired:     allPass(longChecks),
		Price:     last.Close,
		EMAFast:   emaFast,
		EMASlow:   emaSlow,
		VWAP:      vwap,
		RSI:       rsi,
		Volume:    last.Volume,
		Checks:    longChecks,
		At:        at,
	}

	if long.Fired {
		plan := PlanRisk(last, prev, emaFast)
		if plan.Valid() {
			long.Risk = plan
		} else {
			// Stop at or above entry — the signal is not actionable.
			long.Fired = false
			long.Reason = "degenerate risk plan"
		}
	}

	short = model.SetupResult{
		Symbol:    symbol,
		Direction: model.DirectionShort,
		Fired:     allPass(shortChecks),
		Price:     last.Close,
		EMAFast:   emaFast,
		EMASlow:   emaSlow,
		VWAP:      vwap,
		RSI:       rsi,
		Volume:    last.Volume,
		Checks:    shortChecks,
		At:        at,
	}

	return long, short
}

// nearEither reports whether close is within the proximity band of either
// reference level.
func nearEither(close, emaFast, vwap float64) bool {
	return within(close, emaFast, proximityPct) || within(close, vwap, proximityPct)
}

func within(close, level, pct float64) bool {
	if close == 0 || math.IsNaN(level) {
		return false
	}
	return math.Abs(close-level)/close < pct
}

func allPass(checks []model.Condition) bool {
	for _, c := range checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

func nonSignal(symbol string, dir model.Direction, at time.Time) model.SetupResult {
	return model.SetupResult{
		Symbol:    symbol,
		Direction: dir,
		Fired:     false,
		Reason:    ReasonInsufficientData,
		At:        at,
	}
}
