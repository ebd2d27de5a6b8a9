// Package sqlite persists fired signals to a local SQLite journal.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"signal-botv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// JournalConfig configures the SQLite journal.
type JournalConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/signals.db"
}

// Journal is a single-writer SQLite signal journal.
type Journal struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// New opens the journal database, initializing WAL mode and the schema.
// The database file's parent directory is created if missing.
func New(cfg JournalConfig) (*Journal, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened signal journal at %s", cfg.DBPath)
	return &Journal{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT    NOT NULL,
			direction TEXT    NOT NULL,
			ts        INTEGER NOT NULL,
			price     REAL    NOT NULL,
			ema_fast  REAL,
			ema_slow  REAL,
			vwap      REAL,
			rsi       REAL,
			risk      TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals (ts DESC);
	`)
	return err
}

// Record stores one fired signal.
func (j *Journal) Record(res model.SetupResult) error {
	var risk interface{}
	if res.Risk != nil {
		data, err := json.Marshal(res.Risk)
		if err != nil {
			return fmt.Errorf("sqlite marshal risk: %w", err)
		}
		risk = string(data)
	}

	_, err := j.db.Exec(`
		INSERT INTO signals (symbol, direction, ts, price, ema_fast, ema_slow, vwap, rsi, risk)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.Symbol, string(res.Direction), res.At.Unix(), res.Price,
		res.EMAFast, res.EMASlow, res.VWAP, res.RSI, risk)
	if err != nil {
		return fmt.Errorf("sqlite insert signal: %w", err)
	}
	return nil
}

// Recent returns up to limit signals, newest first.
func (j *Journal) Recent(limit int) ([]model.SetupResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.Query(`
		SELECT symbol, direction, ts, price, ema_fast, ema_slow, vwap, rsi, risk
		FROM signals ORDER BY ts DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query signals: %w", err)
	}
	defer rows.Close()

	var out []model.SetupResult
	for rows.Next() {
		var (
			res  model.SetupResult
			dir  string
			ts   int64
			risk sql.NullString
		)
		if err := rows.Scan(&res.Symbol, &dir, &ts, &res.Price,
			&res.EMAFast, &res.EMASlow, &res.VWAP, &res.RSI, &risk); err != nil {
			return nil, fmt.Errorf("sqlite scan signal: %w", err)
		}
		res.Direction = model.Direction(dir)
		res.Fired = true
		res.At = time.Unix(ts, 0).UTC()
		if risk.Valid {
			var plan model.RiskPlan
			if err := json.Unmarshal([]byte(risk.String), &plan); err == nil {
				res.Risk = &plan
			}
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
