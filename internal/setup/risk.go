package setup

import "signal-botv1/internal/model"

// PlanRisk computes risk-managed trade levels for a fired long setup:
// entry at the current high, stop at the lower of the previous low and the
// fast EMA, targets at 1x/2x/3x risk above entry. Short setups intentionally
// get no plan — the rule set is asymmetric.
func PlanRisk(last, prev model.Candle, emaFast float64) *model.RiskPlan {
	entry := last.High
	stop := prev.Low
	if emaFast < stop {
		stop = emaFast
	}

	risk := entry - stop
	plan := &model.RiskPlan{
		Entry:   entry,
		Stop:    stop,
		Target1: entry + risk,
		Target2: entry + risk*2,
		Target3: entry + risk*3,
	}
	if entry != 0 {
		plan.RiskPercent = risk / entry * 100
	}
	return plan
}
