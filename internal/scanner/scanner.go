// Package scanner runs the periodic scan loop: fetch candles, compute
// indicators, evaluate setups, dedup, and deliver alerts.
package scanner

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync/atomic"
	"time"

	"signal-botv1/internal/alert"
	"signal-botv1/internal/indicator"
	"signal-botv1/internal/logger"
	"signal-botv1/internal/metrics"
	"signal-botv1/internal/model"
	"signal-botv1/internal/notification"
	"signal-botv1/internal/setup"
)

// Scanner states.
const (
	stateIdle int32 = iota
	stateScanning
	stateSleeping
	stateStopped
)

func stateName(s int32) string {
	switch s {
	case stateIdle:
		return "idle"
	case stateScanning:
		return "scanning"
	case stateSleeping:
		return "sleeping"
	case stateStopped:
		return "stopped"
	}
	return "unknown"
}

// Config holds scan loop configuration.
type Config struct {
	Symbols   []string
	Timeframe string

	// Interval between scan passes. Defaults to 60s if zero.
	Interval time.Duration

	// SymbolPause between symbols within a pass, to stay under exchange
	// rate limits. Defaults to 2s if zero.
	SymbolPause time.Duration

	// RecoveryPause after a pass aborts with an unexpected error.
	// Defaults to 30s if zero.
	RecoveryPause time.Duration

	// KlineLimit is how many candles to request per symbol. Defaults to 500.
	KlineLimit int
}

func (c *Config) defaults() {
	if c.Interval == 0 {
		c.Interval = 60 * time.Second
	}
	if c.SymbolPause == 0 {
		c.SymbolPause = 2 * time.Second
	}
	if c.RecoveryPause == 0 {
		c.RecoveryPause = 30 * time.Second
	}
	if c.KlineLimit == 0 {
		c.KlineLimit = 500
	}
}

// Scanner drives the scan loop over a candle source, firing alerts through
// the notifier and recording signals in the journal.
type Scanner struct {
	cfg      Config
	indCfg   indicator.Config
	source   model.CandleSource
	notifier notification.Notifier
	deduper  *alert.Deduper
	metrics  *metrics.Metrics
	health   *metrics.HealthStatus

	// Optional sinks; nil-checked at use.
	journal   model.SignalJournal
	publisher model.SetupPublisher

	state   atomic.Int32
	passSeq atomic.Uint64
}

// New creates a Scanner. metrics and health must be non-nil; journal and
// publisher are optional.
func New(cfg Config, source model.CandleSource, notifier notification.Notifier,
	m *metrics.Metrics, health *metrics.HealthStatus) *Scanner {
	cfg.defaults()
	return &Scanner{
		cfg:      cfg,
		indCfg:   indicator.DefaultConfig(),
		source:   source,
		notifier: notifier,
		deduper:  alert.NewDeduper(),
		metrics:  m,
		health:   health,
	}
}

// SetJournal attaches a signal journal.
func (s *Scanner) SetJournal(j model.SignalJournal) { s.journal = j }

// SetPublisher attaches a setup publisher.
func (s *Scanner) SetPublisher(p model.SetupPublisher) { s.publisher = p }

// State returns the current loop state as a string, for diagnostics.
func (s *Scanner) State() string {
	return stateName(s.state.Load())
}

// Run executes the scan loop until ctx is cancelled. Sends the startup notice
// before the first pass and the shutdown notice on exit.
func (s *Scanner) Run(ctx context.Context) error {
	log.Printf("[scanner] starting: %d symbols, timeframe %s, interval %s",
		len(s.cfg.Symbols), s.cfg.Timeframe, s.cfg.Interval)

	s.notify(ctx, notification.Alert{
		Level: notification.AlertInfo,
		Message: notification.FormatStartup(
			s.cfg.Symbols, s.cfg.Timeframe, int(s.cfg.Interval.Seconds())),
	})

	defer func() {
		s.state.Store(stateStopped)
		// The loop context is already cancelled here; the shutdown notice
		// gets its own deadline.
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notify(sendCtx, notification.Alert{
			Level:   notification.AlertWarning,
			Message: notification.FormatShutdown(),
		})
		log.Println("[scanner] stopped")
	}()

	for {
		s.state.Store(stateScanning)
		passCtx := logger.WithPassID(ctx,
			logger.GeneratePassID(s.passSeq.Add(1), time.Now()))
		if err := s.scanPass(passCtx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.metrics.ScanFailuresTotal.Inc()
			log.Printf("[scanner] pass failed: %v", err)
			s.notify(ctx, notification.Alert{
				Level:   notification.AlertCritical,
				Title:   "Scanner error",
				Message: fmt.Sprintf("Scan pass failed: %v\nRetrying in %s.", err, s.cfg.RecoveryPause),
			})
			if !s.sleep(ctx, s.cfg.RecoveryPause) {
				return nil
			}
			continue
		}

		s.metrics.ScanPassesTotal.Inc()
		s.health.SetLastScanTime(time.Now())

		if !s.sleep(ctx, s.cfg.Interval) {
			return nil
		}
	}
}

// scanPass scans every configured symbol once. A panic anywhere in the pass
// is recovered into an error so one bad symbol can't kill the loop.
func (s *Scanner) scanPass(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	defer func() {
		s.metrics.ScanPassDur.Observe(time.Since(start).Seconds())
	}()

	for i, symbol := range s.cfg.Symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.scanSymbol(ctx, symbol)
		s.metrics.SymbolsScannedTotal.Inc()

		// Pause between symbols, not after the last one.
		if i < len(s.cfg.Symbols)-1 {
			if !s.sleep(ctx, s.cfg.SymbolPause) {
				return ctx.Err()
			}
		}
	}

	s.metrics.DedupCacheSize.Set(float64(s.deduper.Len()))
	slog.Info("scan pass complete",
		append([]any{
			slog.Int("symbols", len(s.cfg.Symbols)),
			slog.Duration("took", time.Since(start).Round(time.Millisecond)),
		}, logger.LogWithPass(ctx)...)...)
	return nil
}

// scanSymbol evaluates one symbol. Fetch and delivery failures are logged and
// counted; they never abort the pass.
func (s *Scanner) scanSymbol(ctx context.Context, symbol string) {
	series, err := s.source.Candles(ctx, symbol, s.cfg.KlineLimit)
	if err != nil {
		s.metrics.FetchErrorsTotal.Inc()
		log.Printf("[scanner] fetch %s: %v", symbol, err)
		return
	}

	snap := indicator.Compute(series, s.indCfg)
	long, short := setup.Evaluate(symbol, series, snap, time.Now().UTC())

	for _, res := range []model.SetupResult{long, short} {
		s.publish(ctx, res)
		if !res.Fired {
			continue
		}
		s.handleSignal(ctx, res)
	}
}

// handleSignal journals a fired setup and delivers the alert unless the
// (symbol, direction, hour) key already alerted. The key is recorded as seen
// before delivery: a notifier failure burns the slot for the hour rather than
// risking a duplicate.
func (s *Scanner) handleSignal(ctx context.Context, res model.SetupResult) {
	s.metrics.SignalsTotal.WithLabelValues(string(res.Direction)).Inc()

	if s.journal != nil {
		if err := s.journal.Record(res); err != nil {
			log.Printf("[scanner] journal %s %s: %v", res.Symbol, res.Direction, err)
		}
	}

	key := alert.KeyFor(res.Symbol, res.Direction, res.At)
	if !s.deduper.ShouldAlert(key) {
		s.metrics.AlertsSuppressed.Inc()
		log.Printf("[scanner] suppressed %s %s (already alerted this hour)",
			res.Symbol, res.Direction)
		return
	}

	err := s.notifier.Send(ctx, notification.Alert{
		Level:   notification.AlertSignal,
		Message: notification.FormatSignal(res),
		Signal:  &res,
	})
	if err != nil {
		s.metrics.NotifyFailures.Inc()
		log.Printf("[scanner] notify %s %s: %v", res.Symbol, res.Direction, err)
		return
	}

	s.metrics.AlertsSentTotal.Inc()
	log.Printf("[scanner] alerted %s %s @ %.2f", res.Symbol, res.Direction, res.Price)
}

// publish pushes every evaluation (fired or not) to the optional publisher so
// dashboards can show live condition state.
func (s *Scanner) publish(ctx context.Context, res model.SetupResult) {
	if s.publisher != nil {
		s.publisher.PublishSetup(ctx, res)
	}
}

// notify sends a lifecycle/operational alert, counting failures.
func (s *Scanner) notify(ctx context.Context, a notification.Alert) {
	if err := s.notifier.Send(ctx, a); err != nil {
		s.metrics.NotifyFailures.Inc()
		log.Printf("[scanner] notify: %v", err)
	}
}

// sleep waits for d or until ctx is cancelled; reports whether the full wait
// elapsed.
func (s *Scanner) sleep(ctx context.Context, d time.Duration) bool {
	s.state.Store(stateSleeping)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
