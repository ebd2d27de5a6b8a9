// Package window maintains bounded in-memory candle windows, one per symbol.
// The websocket ingester appends closed candles; the scan loop reads the
// window through the same interface it uses for REST fetches.
package window

import (
	"context"
	"fmt"
	"sync"

	"signal-botv1/internal/model"
)

// Store holds one bounded candle window per symbol.
type Store struct {
	mu      sync.RWMutex
	cap     int
	windows map[string]model.Series
}

// NewStore creates a store whose windows hold at most capacity candles each.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		cap:     capacity,
		windows: make(map[string]model.Series),
	}
}

// Append adds a closed candle to the symbol's window. A candle with the same
// open time as the newest entry replaces it (the exchange re-serves the final
// version of a bucket on reconnect); older duplicates are dropped.
func (s *Store) Append(symbol string, c model.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[symbol]
	if n := len(w); n > 0 {
		last := w[n-1]
		if c.OpenTime.Equal(last.OpenTime) {
			w[n-1] = c
			return
		}
		if c.OpenTime.Before(last.OpenTime) {
			return
		}
	}

	w = append(w, c)
	if len(w) > s.cap {
		// Copy down instead of re-slicing so the backing array does not grow
		// without bound.
		copy(w, w[len(w)-s.cap:])
		w = w[:s.cap]
	}
	s.windows[symbol] = w
}

// Seed replaces the symbol's window with a fetched history, trimmed to
// capacity. Used to backfill before streaming starts.
func (s *Store) Seed(symbol string, series model.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(series) > s.cap {
		series = series[len(series)-s.cap:]
	}
	w := make(model.Series, len(series))
	copy(w, series)
	s.windows[symbol] = w
}

// Candles returns a copy of the symbol's window, newest-limit candles,
// oldest first. An unknown symbol is an error so the scan loop can tell
// "stream not warmed up" apart from an empty market.
func (s *Store) Candles(_ context.Context, symbol string, limit int) (model.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.windows[symbol]
	if !ok {
		return nil, fmt.Errorf("window: no candles for %s", symbol)
	}
	if limit > 0 && len(w) > limit {
		w = w[len(w)-limit:]
	}
	out := make(model.Series, len(w))
	copy(out, w)
	return out, nil
}

// Len returns the current window size for a symbol.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows[symbol])
}
