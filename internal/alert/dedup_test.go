package alert

import (
	"fmt"
	"testing"
	"time"

	"signal-botv1/internal/model"
)

func TestShouldAlert_SameHourSuppressed(t *testing.T) {
	d := NewDeduper()
	at := time.Date(2024, 3, 3, 10, 5, 0, 0, time.UTC)

	k := KeyFor("BTCUSDT", model.DirectionLong, at)
	if !d.ShouldAlert(k) {
		t.Fatal("first sighting must alert")
	}
	if d.ShouldAlert(k) {
		t.Error("same key within the hour must be suppressed")
	}

	// Later in the same hour → same bucket, still suppressed.
	later := KeyFor("BTCUSDT", model.DirectionLong, at.Add(40*time.Minute))
	if d.ShouldAlert(later) {
		t.Error("same hour bucket must be suppressed regardless of minute")
	}
}

func TestShouldAlert_NextHourAlertsAgain(t *testing.T) {
	d := NewDeduper()
	at := time.Date(2024, 3, 3, 10, 55, 0, 0, time.UTC)

	if !d.ShouldAlert(KeyFor("BTCUSDT", model.DirectionLong, at)) {
		t.Fatal("first sighting must alert")
	}
	if !d.ShouldAlert(KeyFor("BTCUSDT", model.DirectionLong, at.Add(10*time.Minute))) {
		t.Error("next hour bucket must alert again even if the setup is unchanged")
	}
}

func TestShouldAlert_DirectionsIndependent(t *testing.T) {
	d := NewDeduper()
	at := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)

	if !d.ShouldAlert(KeyFor("ETHUSDT", model.DirectionLong, at)) {
		t.Fatal("long must alert")
	}
	if !d.ShouldAlert(KeyFor("ETHUSDT", model.DirectionShort, at)) {
		t.Error("short is a distinct key and must alert")
	}
}

func TestShouldAlert_ResetPastCeiling(t *testing.T) {
	d := NewDeduper()
	at := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)

	// 100 distinct keys fill the cache exactly to the ceiling.
	for i := 0; i < 100; i++ {
		k := KeyFor(fmt.Sprintf("SYM%dUSDT", i), model.DirectionLong, at)
		if !d.ShouldAlert(k) {
			t.Fatalf("key %d should alert", i)
		}
	}
	if d.Len() != 100 {
		t.Fatalf("cache size = %d, want 100", d.Len())
	}

	// Key 101 pushes past the ceiling → full clear.
	if !d.ShouldAlert(KeyFor("OVERUSDT", model.DirectionLong, at)) {
		t.Fatal("101st key should alert")
	}
	if d.Len() != 0 {
		t.Fatalf("cache should be cleared after exceeding ceiling, size = %d", d.Len())
	}

	// Key 102 is evaluated against an empty cache — even a repeat alerts.
	if !d.ShouldAlert(KeyFor("SYM0USDT", model.DirectionLong, at)) {
		t.Error("after reset, previously seen keys alert again")
	}
	if d.Len() != 1 {
		t.Errorf("cache size = %d, want 1", d.Len())
	}
}
