package indicator

import "math"

// RSI calculates the Relative Strength Index over close prices using rolling
// averages of gains and losses across the trailing window of deltas:
//
//	RSI = 100 - 100/(1 + avgGain/avgLoss)
//
// The first defined value is at index == period (the window needs `period`
// deltas); earlier indices hold NaN. When the average loss is zero the result
// is pinned to the 100 sentinel rather than dividing by zero.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	var gainSum, lossSum float64

	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}

		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			// Slide the window: drop the delta that fell out
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}

		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = 100.0
		} else {
			rs := avgGain / avgLoss
			out[i] = 100.0 - 100.0/(1.0+rs)
		}
	}
	return out
}
