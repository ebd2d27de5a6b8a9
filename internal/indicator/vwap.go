package indicator

import (
	"math"

	"signal-botv1/internal/model"
)

// VWAP calculates the Volume-Weighted Average Price as
// cumsum(typical_price * volume) / cumsum(volume), accumulated from the start
// of the supplied series, not a trailing window. With a fixed-size trailing
// fetch the anchor moves every cycle, so values are only comparable across
// cycles if the caller keeps the window's starting point fixed.
//
// Indices where the cumulative volume is still zero hold NaN.
func VWAP(series model.Series) []float64 {
	out := make([]float64, len(series))
	var cumPV, cumVol float64
	for i := range series {
		typical := (series[i].High + series[i].Low + series[i].Close) / 3.0
		cumPV += typical * series[i].Volume
		cumVol += series[i].Volume
		if cumVol == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cumPV / cumVol
	}
	return out
}
