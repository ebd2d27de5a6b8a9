package indicator

import "math"

// EMA calculates the Exponential Moving Average over close prices with
// smoothing factor 2/(period+1). The first close seeds the recursion
// ("adjust=false" semantics), so every index holds a defined value.
//
// EMA formula: EMA = (Price * multiplier) + (EMA_prev * (1 - multiplier))
func EMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	if period < 1 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	multiplier := 2.0 / float64(period+1)
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]*multiplier + out[i-1]*(1-multiplier)
	}
	return out
}
