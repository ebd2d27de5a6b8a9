// Package ws streams Binance kline updates over WebSocket into candle windows.
//
// It subscribes to the combined stream endpoint, e.g.
//
//	wss://stream.binance.com:9443/stream?streams=btcusdt@kline_15m/ethusdt@kline_15m
//
// Only closed candles (k.x == true) reach the window store — the scan loop
// evaluates finished buckets, not the in-progress one.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"signal-botv1/internal/marketdata/window"
	"signal-botv1/internal/model"
)

// Config holds configuration for the kline stream.
type Config struct {
	// BaseURL of the stream endpoint, e.g. "wss://stream.binance.com:9443".
	BaseURL string

	// Symbols to subscribe, e.g. ["BTCUSDT", "ETHUSDT"].
	Symbols []string

	// Interval is the kline interval string, e.g. "15m".
	Interval string

	// ReconnectDelay is the initial delay before reconnection attempts.
	// Defaults to 2 seconds if zero.
	ReconnectDelay time.Duration

	// MaxReconnectDelay caps the exponential backoff. Defaults to 30s.
	MaxReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Ingest connects to the Binance combined kline stream and appends closed
// candles to a window.Store.
type Ingest struct {
	cfg   Config
	url   string
	store *window.Store

	// Optional hook, called each time a reconnection happens.
	OnReconnect func()
}

// New creates a new Ingest. Returns an error if no symbols are configured.
func New(cfg Config, store *window.Store) (*Ingest, error) {
	cfg.defaults()
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("ws: no symbols configured")
	}

	streams := make([]string, len(cfg.Symbols))
	for i, s := range cfg.Symbols {
		streams[i] = strings.ToLower(s) + "@kline_" + cfg.Interval
	}
	url := strings.TrimRight(cfg.BaseURL, "/") + "/stream?streams=" + strings.Join(streams, "/")

	return &Ingest{cfg: cfg, url: url, store: store}, nil
}

// Start connects and streams closed candles into the window store.
// Blocks until ctx is cancelled. Reconnects automatically on disconnect.
func (ing *Ingest) Start(ctx context.Context) error {
	delay := ing.cfg.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := ing.runOnce(ctx)
		if err == nil {
			// Context cancelled cleanly
			return nil
		}

		log.Printf("[ws] disconnected (%v), reconnecting in %s...", err, delay)
		if ing.OnReconnect != nil {
			ing.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > ing.cfg.MaxReconnectDelay {
			delay = ing.cfg.MaxReconnectDelay
		}
	}
}

// combinedMsg is the envelope of the combined stream endpoint.
type combinedMsg struct {
	Stream string   `json:"stream"`
	Data   klineMsg `json:"data"`
}

type klineMsg struct {
	Symbol string   `json:"s"`
	Kline  klineRaw `json:"k"`
}

type klineRaw struct {
	OpenTime int64  `json:"t"` // epoch millis
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Final    bool   `json:"x"`
}

// runOnce makes a single connection attempt and reads until disconnect or ctx cancel.
func (ing *Ingest) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ing.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("[ws] connected, %d kline streams", len(ing.cfg.Symbols))

	// Async context watcher — closes the connection when ctx is cancelled.
	// done releases the watcher when this connection ends first, so reconnects
	// don't accumulate one blocked goroutine per dropped connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		var msg combinedMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[ws] parse error: %v", err)
			continue
		}
		if !msg.Data.Kline.Final {
			continue
		}

		candle, err := msg.Data.Kline.candle()
		if err != nil {
			log.Printf("[ws] bad kline for %s: %v", msg.Data.Symbol, err)
			continue
		}
		ing.store.Append(msg.Data.Symbol, candle)
	}
}

func (k *klineRaw) candle() (model.Candle, error) {
	var vals [5]float64
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = f
	}
	return model.Candle{
		OpenTime: time.UnixMilli(k.OpenTime).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}
