package model

import "context"

// ── Port Interfaces ──
// These interfaces decouple the scan scheduler from concrete implementations
// (Binance REST, WS windows, SQLite, Redis). Each implementation satisfies
// one of these.

// CandleSource supplies an ordered (oldest→newest) candle series for a symbol.
// A transport failure is returned as an error; a short-but-valid series is
// returned as data, so the caller can distinguish "fetch failed" from
// "not enough history".
type CandleSource interface {
	Candles(ctx context.Context, symbol string, limit int) (Series, error)
}

// SignalJournal persists fired signals and serves recent history.
type SignalJournal interface {
	// Record stores one fired signal.
	Record(res SetupResult) error

	// Recent returns up to limit signals, newest first.
	Recent(limit int) ([]SetupResult, error)

	// Close releases underlying resources.
	Close() error
}

// SetupPublisher publishes the latest setup result for dashboard consumers.
// Best effort — implementations log failures instead of returning them.
type SetupPublisher interface {
	PublishSetup(ctx context.Context, res SetupResult)

	// Close releases underlying resources.
	Close() error
}
