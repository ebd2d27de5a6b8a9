package model

import (
	"encoding/json"
	"time"
)

// Candle represents one OHLCV kline for a single symbol and timeframe.
// Prices are float64 — the exchange serves decimal strings and all of the
// indicator math downstream is floating point.
type Candle struct {
	OpenTime time.Time `json:"open_time"` // bucket start (UTC)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Series is an ordered sequence of candles for one symbol, oldest first.
type Series []Candle

// Last returns the most recent candle. Callers must check Len first.
func (s Series) Last() Candle {
	return s[len(s)-1]
}

// Prev returns the second most recent candle. Callers must check Len first.
func (s Series) Prev() Candle {
	return s[len(s)-2]
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Close
	}
	return out
}
