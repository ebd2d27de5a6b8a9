package indicator

import (
	"math"

	"signal-botv1/internal/model"
)

// VolumeIncreasing reports whether volume is strictly increasing across the
// last lookback candles. Fewer than 2 candles in the window means false —
// equal volumes do not count as increasing.
func VolumeIncreasing(series model.Series, lookback int) bool {
	if lookback > len(series) {
		lookback = len(series)
	}
	if lookback < 2 {
		return false
	}
	recent := series[len(series)-lookback:]
	for i := 0; i < len(recent)-1; i++ {
		if recent[i].Volume >= recent[i+1].Volume {
			return false
		}
	}
	return true
}

// StrongBullish classifies a candle as a strong bullish (force) candle:
// it closes above its open and the body covers more than 60% of the total
// range. A zero-range candle is never strong.
func StrongBullish(c model.Candle) bool {
	totalRange := c.High - c.Low
	if totalRange == 0 {
		return false
	}
	body := math.Abs(c.Close - c.Open)
	return c.Close > c.Open && body/totalRange > 0.6
}
