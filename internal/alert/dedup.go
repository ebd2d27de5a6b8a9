// Package alert tracks which notification opportunities have already been
// taken, so a setup that stays valid across scan passes alerts once per hour
// instead of once per pass.
package alert

import (
	"time"

	"signal-botv1/internal/model"
)

// maxEntries is the dedup cache ceiling. Crossing it clears the whole cache —
// an approximate memory bound, not an LRU: keys recorded just before a clear
// may re-alert once.
const maxEntries = 100

// Key is the deduplication identity of one notification opportunity.
type Key struct {
	Symbol    string
	Direction model.Direction
	Bucket    string // wall-clock hour, "2006010215"
}

// KeyFor builds the alert key for a signal observed at time t.
func KeyFor(symbol string, dir model.Direction, t time.Time) Key {
	return Key{
		Symbol:    symbol,
		Direction: dir,
		Bucket:    t.Format("2006010215"),
	}
}

// Deduper suppresses repeat alerts for the same (symbol, direction, hour).
// Owned and touched by a single scanner goroutine — no locks needed.
type Deduper struct {
	seen map[Key]struct{}
}

// NewDeduper creates an empty deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[Key]struct{}, maxEntries)}
}

// ShouldAlert reports whether this key has not alerted yet, recording it as
// seen in the same step (atomic check-and-insert, no separate confirm). The
// cache is cleared entirely once it outgrows the ceiling.
func (d *Deduper) ShouldAlert(k Key) bool {
	if _, ok := d.seen[k]; ok {
		return false
	}
	d.seen[k] = struct{}{}
	if len(d.seen) > maxEntries {
		d.seen = make(map[Key]struct{}, maxEntries)
	}
	return true
}

// Len returns the current cache cardinality.
func (d *Deduper) Len() int {
	return len(d.seen)
}
