// Package binance fetches kline data from the Binance spot REST API.
package binance

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"signal-botv1/internal/model"
)

// Client is a REST kline source. The timeframe is fixed at construction so
// the scan loop can treat it as a plain model.CandleSource.
type Client struct {
	http     *resty.Client
	interval string
}

// NewClient creates a Binance REST client for the given base URL
// (e.g. https://api.binance.com) and kline interval (e.g. "15m").
func NewClient(baseURL, interval string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			// 429/418 are Binance rate-limit responses; honor them with a retry.
			return r.StatusCode() == 429 || r.StatusCode() == 418 || r.StatusCode() >= 500
		})

	return &Client{http: http, interval: interval}
}

// Candles fetches up to limit klines for symbol, oldest first.
func (c *Client) Candles(ctx context.Context, symbol string, limit int) (model.Series, error) {
	var raw [][]interface{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"interval": c.interval,
			"limit":    strconv.Itoa(limit),
		}).
		SetResult(&raw).
		Get("/api/v3/klines")
	if err != nil {
		return nil, fmt.Errorf("binance: fetch klines %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("binance: fetch klines %s: status %d: %s",
			symbol, resp.StatusCode(), resp.String())
	}

	series := make(model.Series, 0, len(raw))
	for i, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("binance: kline %s[%d]: %w", symbol, i, err)
		}
		series = append(series, candle)
	}

	log.Printf("[binance] fetched %d candles for %s %s", len(series), symbol, c.interval)
	return series, nil
}

// parseKline decodes one kline row. The API serves a 12-element array:
// [openTime, open, high, low, close, volume, closeTime, ...]; prices and
// volume are decimal strings, times are epoch millis.
func parseKline(row []interface{}) (model.Candle, error) {
	if len(row) < 6 {
		return model.Candle{}, fmt.Errorf("short row: %d fields", len(row))
	}

	ms, ok := row[0].(float64)
	if !ok {
		return model.Candle{}, fmt.Errorf("open time is %T, want number", row[0])
	}

	var vals [5]float64
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return model.Candle{}, fmt.Errorf("field %d is %T, want string", i, row[i])
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i-1] = f
	}

	return model.Candle{
		OpenTime: time.UnixMilli(int64(ms)).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}
