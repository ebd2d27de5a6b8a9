package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"signal-botv1/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	// Nested path: New must create missing parent directories.
	path := filepath.Join(t.TempDir(), "nested", "signals.db")
	j, err := New(JournalConfig{DBPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)

	at := time.Date(2024, 3, 3, 10, 30, 0, 0, time.UTC)
	long := model.SetupResult{
		Symbol:    "BTCUSDT",
		Direction: model.DirectionLong,
		Fired:     true,
		Price:     64250.50,
		EMAFast:   64100.25,
		EMASlow:   61000.00,
		VWAP:      63900.75,
		RSI:       55.3,
		At:        at,
		Risk: &model.RiskPlan{
			Entry: 64500, Stop: 64000,
			Target1: 65000, Target2: 65500, Target3: 66000,
			RiskPercent: 0.78,
		},
	}
	short := model.SetupResult{
		Symbol:    "ETHUSDT",
		Direction: model.DirectionShort,
		Fired:     true,
		Price:     3200.10,
		At:        at.Add(time.Minute),
	}

	if err := j.Record(long); err != nil {
		t.Fatalf("Record long: %v", err)
	}
	if err := j.Record(short); err != nil {
		t.Fatalf("Record short: %v", err)
	}

	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("recent count = %d, want 2", len(got))
	}

	// Newest first.
	if got[0].Symbol != "ETHUSDT" || got[1].Symbol != "BTCUSDT" {
		t.Errorf("ordering wrong: %s, %s", got[0].Symbol, got[1].Symbol)
	}

	back := got[1]
	if back.Direction != model.DirectionLong || back.Price != 64250.50 {
		t.Errorf("long row did not round-trip: %+v", back)
	}
	if !back.At.Equal(at) {
		t.Errorf("timestamp = %v, want %v", back.At, at)
	}
	if back.Risk == nil || back.Risk.Entry != 64500 || back.Risk.RiskPercent != 0.78 {
		t.Errorf("risk plan did not round-trip: %+v", back.Risk)
	}
	if got[0].Risk != nil {
		t.Error("short signal must have no risk plan")
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j := openTestJournal(t)

	at := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := j.Record(model.SetupResult{
			Symbol:    "BTCUSDT",
			Direction: model.DirectionLong,
			Fired:     true,
			Price:     64000 + float64(i),
			At:        at.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	got, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("recent count = %d, want 2", len(got))
	}
	if got[0].Price != 64004 {
		t.Errorf("newest price = %v, want 64004", got[0].Price)
	}
}
