package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"signal-botv1/internal/model"
)

// WebhookNotifier POSTs alerts to a generic HTTP endpoint. Unlike the
// Telegram channel it carries the setup fields structured, not rendered —
// webhook consumers are dashboards and pipelines, not humans.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// webhookPayload is the JSON body of one delivery. The signal block is only
// present on SIGNAL-level alerts.
type webhookPayload struct {
	Level     string `json:"level"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"ts"`

	Symbol    string            `json:"symbol,omitempty"`
	Direction string            `json:"direction,omitempty"`
	Price     float64           `json:"price,omitempty"`
	EMAFast   float64           `json:"ema_fast,omitempty"`
	EMASlow   float64           `json:"ema_slow,omitempty"`
	VWAP      float64           `json:"vwap,omitempty"`
	RSI       float64           `json:"rsi,omitempty"`
	Checks    []model.Condition `json:"checks,omitempty"`
	Risk      *model.RiskPlan   `json:"risk,omitempty"`
}

// NewWebhookNotifier creates a webhook notifier for the given endpoint URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	payload := webhookPayload{
		Level:     string(alert.Level),
		Title:     alert.Title,
		Message:   alert.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if sig := alert.Signal; sig != nil {
		payload.Symbol = sig.Symbol
		payload.Direction = string(sig.Direction)
		payload.Price = sig.Price
		payload.EMAFast = sig.EMAFast
		payload.EMASlow = sig.EMASlow
		payload.VWAP = sig.VWAP
		payload.RSI = sig.RSI
		payload.Checks = sig.Checks
		payload.Risk = sig.Risk
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	log.Printf("[webhook] delivered %s alert", alert.Level)
	return nil
}
