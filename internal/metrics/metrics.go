// Package metrics exposes Prometheus metrics, a health endpoint, and a
// recent-signals endpoint for the scanner.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signal-botv1/internal/model"
)

// Metrics holds all Prometheus metrics for the scanner.
type Metrics struct {
	ScanPassesTotal     prometheus.Counter
	SymbolsScannedTotal prometheus.Counter
	SignalsTotal        *prometheus.CounterVec // labels: direction
	AlertsSentTotal     prometheus.Counter
	AlertsSuppressed    prometheus.Counter
	FetchErrorsTotal    prometheus.Counter
	NotifyFailures      prometheus.Counter
	ScanFailuresTotal   prometheus.Counter
	WSReconnects        prometheus.Counter
	ScanPassDur         prometheus.Histogram
	DedupCacheSize      prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScanPassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_scan_passes_total",
			Help: "Total completed scan passes",
		}),
		SymbolsScannedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_symbols_scanned_total",
			Help: "Total symbol evaluations across all passes",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_signals_total",
			Help: "Total fired setups (by direction)",
		}, []string{"direction"}),
		AlertsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_alerts_sent_total",
			Help: "Total alerts delivered to notification channels",
		}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_alerts_suppressed_total",
			Help: "Alerts suppressed by hour-bucket deduplication",
		}),
		FetchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_fetch_errors_total",
			Help: "Candle fetch failures",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_notify_failures_total",
			Help: "Alert delivery failures",
		}),
		ScanFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_scan_failures_total",
			Help: "Scan passes aborted by an unexpected error",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_ws_reconnects_total",
			Help: "Total WebSocket reconnection attempts",
		}),
		ScanPassDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_scan_pass_duration_seconds",
			Help:    "Duration of one full scan pass across all symbols",
			Buckets: prometheus.DefBuckets,
		}),
		DedupCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_dedup_cache_size",
			Help: "Current number of keys in the alert dedup cache",
		}),
	}

	prometheus.MustRegister(
		m.ScanPassesTotal,
		m.SymbolsScannedTotal,
		m.SignalsTotal,
		m.AlertsSentTotal,
		m.AlertsSuppressed,
		m.FetchErrorsTotal,
		m.NotifyFailures,
		m.ScanFailuresTotal,
		m.WSReconnects,
		m.ScanPassDur,
		m.DedupCacheSize,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	LastScanTime   time.Time `json:"last_scan_time"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`

	// True when Redis is not configured; excluded from overall status then.
	redisOptional bool
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
		SQLiteOK:  true,
	}
}

// SetRedisOptional marks Redis as unconfigured so a missing connection does
// not degrade overall status.
func (h *HealthStatus) SetRedisOptional() {
	h.mu.Lock()
	h.redisOptional = true
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastScanTime(t time.Time) {
	h.mu.Lock()
	h.LastScanTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	redisOK := h.RedisConnected || h.redisOptional
	if !redisOK || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !redisOK && !h.SQLiteOK {
		overallStatus = "unhealthy"
	}

	scanAge := ""
	if !h.LastScanTime.IsZero() {
		scanAge = time.Since(h.LastScanTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		LastScanTime    string  `json:"last_scan_time"`
		ScanAge         string  `json:"scan_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		LastScanTime:    h.LastScanTime.Format(time.RFC3339),
		ScanAge:         scanAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics, /healthz, and /signals.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server. journal may be nil, in which
// case /signals responds 404.
func NewServer(addr string, health *HealthStatus, journal model.SignalJournal) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)
	mux.HandleFunc("/signals", func(w http.ResponseWriter, r *http.Request) {
		if journal == nil {
			http.NotFound(w, r)
			return
		}
		limit := 50
		if q := r.URL.Query().Get("limit"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		signals, err := journal.Recent(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if signals == nil {
			signals = []model.SetupResult{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(signals)
	})

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
