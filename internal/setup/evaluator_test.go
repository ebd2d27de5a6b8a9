package setup

import (
	"testing"
	"time"

	"signal-botv1/internal/indicator"
	"signal-botv1/internal/model"
)

// buildLongSeries constructs a 200-candle series engineered to satisfy every
// long condition on its final candle:
//   - net uptrend (close > EMA-200)
//   - alternating +0.3/-0.2 deltas → trailing RSI(14) of exactly 60
//   - gentle drift keeps close within 1.5% of EMA-21
//   - final candle bullish with body/range = 0.75
//   - strictly increasing volume over the last 3 candles
func buildLongSeries() model.Series {
	series := make(model.Series, 0, 200)
	price := 100.0
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		// Down -0.2 on even indices, up +0.3 on odd — index 199 (the final
		// candle) is therefore the bullish one, with body/range = 0.3/0.4.
		delta := -0.2
		if i%2 == 1 {
			delta = 0.3
		}
		open := price
		price += delta

		var c model.Candle
		if delta > 0 {
			c = model.Candle{Open: open, High: price + 0.05, Low: open - 0.05, Close: price}
		} else {
			c = model.Candle{Open: open, High: open + 0.05, Low: price - 0.05, Close: price}
		}
		c.OpenTime = ts.Add(time.Duration(i) * 15 * time.Minute)
		c.Volume = 1000
		series = append(series, c)
	}

	// Volume must rise strictly into the final candle.
	n := len(series)
	series[n-2].Volume = 1200
	series[n-1].Volume = 1500

	return series
}

// buildShortSeries constructs a 200-candle gentle decline whose final candle
// satisfies every short condition.
func buildShortSeries() model.Series {
	series := make(model.Series, 0, 200)
	price := 120.0
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		open := price
		price -= 0.1
		series = append(series, model.Candle{
			OpenTime: ts.Add(time.Duration(i) * 15 * time.Minute),
			Open:     open,
			High:     open + 0.05,
			Low:      price - 0.05,
			Close:    price,
			Volume:   1000,
		})
	}
	return series
}

func evaluateBoth(t *testing.T, series model.Series) (long, short model.SetupResult) {
	t.Helper()
	snap := indicator.Compute(series, indicator.DefaultConfig())
	return Evaluate("BTCUSDT", series, snap, time.Date(2024, 3, 3, 10, 30, 0, 0, time.UTC))
}

func TestEvaluate_LongFiresWithRiskPlan(t *testing.T) {
	series := buildLongSeries()
	long, short := evaluateBoth(t, series)

	if !long.Fired {
		for _, c := range long.Checks {
			t.Logf("long check %s = %v", c.Name, c.Pass)
		}
		t.Fatalf("long setup should fire (rsi=%.2f price=%.2f emaFast=%.2f emaSlow=%.2f vwap=%.2f)",
			long.RSI, long.Price, long.EMAFast, long.EMASlow, long.VWAP)
	}
	if short.Fired {
		t.Error("short setup must not fire on an uptrend")
	}

	if long.Risk == nil {
		t.Fatal("fired long setup must carry a risk plan")
	}
	r := long.Risk
	if !(r.Entry > r.Stop) {
		t.Errorf("entry %.4f must exceed stop %.4f", r.Entry, r.Stop)
	}
	if !(r.Target3 > r.Target2 && r.Target2 > r.Target1 && r.Target1 > r.Entry) {
		t.Errorf("targets must be strictly ordered above entry: %.4f %.4f %.4f entry=%.4f",
			r.Target1, r.Target2, r.Target3, r.Entry)
	}
	if r.RiskPercent <= 0 {
		t.Errorf("risk percent must be positive, got %.4f", r.RiskPercent)
	}
}

func TestEvaluate_LongRSIInBand(t *testing.T) {
	// The alternating +0.3/-0.2 fixture pins the trailing RSI(14) at 60:
	// 7 gains of 0.3 vs 7 losses of 0.2 → RS=1.5 → RSI=60.
	long, _ := evaluateBoth(t, buildLongSeries())
	if long.RSI < 40 || long.RSI > 65 {
		t.Errorf("fixture RSI drifted out of band: %.4f", long.RSI)
	}
}

func TestEvaluate_ShortFires(t *testing.T) {
	long, short := evaluateBoth(t, buildShortSeries())

	if !short.Fired {
		for _, c := range short.Checks {
			t.Logf("short check %s = %v", c.Name, c.Pass)
		}
		t.Fatalf("short setup should fire (price=%.2f emaFast=%.2f emaSlow=%.2f vwap=%.2f)",
			short.Price, short.EMAFast, short.EMASlow, short.VWAP)
	}
	if long.Fired {
		t.Error("long setup must not fire on a decline")
	}
	if short.Risk != nil {
		t.Error("short setups never carry a risk plan")
	}
}

func TestEvaluate_InsufficientData(t *testing.T) {
	series := buildLongSeries()[:50]
	long, short := evaluateBoth(t, series)

	for _, res := range []model.SetupResult{long, short} {
		if res.Fired {
			t.Errorf("%s: must not fire below %d candles", res.Direction, MinCandles)
		}
		if res.Reason != ReasonInsufficientData {
			t.Errorf("%s: reason = %q, want %q", res.Direction, res.Reason, ReasonInsufficientData)
		}
		if len(res.Checks) != 0 {
			t.Errorf("%s: conditions must not be evaluated on short series", res.Direction)
		}
	}
}

func TestEvaluate_ConstantVolumeNeverVolumeUp(t *testing.T) {
	series := buildLongSeries()
	for i := range series {
		series[i].Volume = 1000
	}
	long, _ := evaluateBoth(t, series)
	if long.Check("volume_up") {
		t.Error("constant volume must fail volume_up")
	}
	if long.Fired {
		t.Error("long must not fire without rising volume")
	}
}

func TestPlanRisk_StopUsesLowerOfPrevLowAndEMA(t *testing.T) {
	last := model.Candle{Open: 100, High: 103, Low: 99, Close: 102}
	prev := model.Candle{Open: 99, High: 101, Low: 98, Close: 100}

	// EMA below prev low → EMA wins.
	plan := PlanRisk(last, prev, 97)
	if plan.Stop != 97 {
		t.Errorf("stop = %.2f, want 97 (EMA)", plan.Stop)
	}

	// Prev low below EMA → prev low wins.
	plan = PlanRisk(last, prev, 99.5)
	if plan.Stop != 98 {
		t.Errorf("stop = %.2f, want 98 (prev low)", plan.Stop)
	}

	// entry=103, stop=98 → risk=5: targets 108/113/118, risk% = 5/103*100.
	if plan.Target1 != 108 || plan.Target2 != 113 || plan.Target3 != 118 {
		t.Errorf("targets = %.2f/%.2f/%.2f, want 108/113/118", plan.Target1, plan.Target2, plan.Target3)
	}
	wantPct := 5.0 / 103.0 * 100
	if diff := plan.RiskPercent - wantPct; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("risk percent = %.4f, want %.4f", plan.RiskPercent, wantPct)
	}
}

func TestPlanRisk_InvalidWhenStopAboveEntry(t *testing.T) {
	// Gap down: previous low sits above the current high.
	last := model.Candle{Open: 90, High: 92, Low: 89, Close: 91.5}
	prev := model.Candle{Open: 99, High: 101, Low: 98, Close: 100}

	plan := PlanRisk(last, prev, 97)
	if plan.Valid() {
		t.Error("plan with stop above entry must be invalid")
	}
}
