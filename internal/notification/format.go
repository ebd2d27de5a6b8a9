package notification

import (
	"fmt"
	"strings"

	"signal-botv1/internal/model"
)

// FormatSignal renders a fired setup as a Telegram-ready HTML message:
// symbol, timestamp, price, all four indicator values, the per-condition
// outcomes, the risk plan for long signals, and a TradingView deep link.
func FormatSignal(res model.SetupResult) string {
	emoji := "🟢"
	if res.Direction == model.DirectionShort {
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s ALERT</b> %s\n\n", emoji, res.Direction.Word(), emoji)
	fmt.Fprintf(&b, "💎 <b>%s</b>\n", res.Symbol)
	fmt.Fprintf(&b, "⏰ %s\n", res.At.Format("2006-01-02 15:04:05"))
	b.WriteString("━━━━━━━━━━━━━━━━━\n\n")

	fmt.Fprintf(&b, "💰 <b>Price:</b> $%.2f\n\n", res.Price)

	b.WriteString("📊 <b>Indicators:</b>\n")
	fmt.Fprintf(&b, "  • EMA 21: $%.2f\n", res.EMAFast)
	fmt.Fprintf(&b, "  • EMA 200: $%.2f\n", res.EMASlow)
	fmt.Fprintf(&b, "  • VWAP: $%.2f\n", res.VWAP)
	fmt.Fprintf(&b, "  • RSI: %.1f\n", res.RSI)

	if res.Direction == model.DirectionLong && res.Risk != nil {
		b.WriteString("\n📈 <b>Risk Management:</b>\n")
		fmt.Fprintf(&b, "  ➡️ Entry: $%.2f\n", res.Risk.Entry)
		fmt.Fprintf(&b, "  🛑 Stop: $%.2f\n", res.Risk.Stop)
		fmt.Fprintf(&b, "  🎯 Target 1:1: $%.2f\n", res.Risk.Target1)
		fmt.Fprintf(&b, "  🎯 Target 1:2: $%.2f\n", res.Risk.Target2)
		fmt.Fprintf(&b, "  🎯 Target 1:3: $%.2f\n", res.Risk.Target3)
		fmt.Fprintf(&b, "  📊 Risk: %.2f%%\n", res.Risk.RiskPercent)
	}

	b.WriteString("\n✅ <b>Conditions:</b>\n")
	for _, c := range res.Checks {
		icon := "✗"
		if c.Pass {
			icon = "✓"
		}
		fmt.Fprintf(&b, "  %s %s\n", icon, conditionTitle(c.Name))
	}

	fmt.Fprintf(&b, "\n📊 <a href='https://www.tradingview.com/chart/?symbol=BINANCE:%s'>View on TradingView</a>", res.Symbol)

	return b.String()
}

// FormatStartup renders the monitoring-started notice.
func FormatStartup(symbols []string, timeframe string, interval int) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Scanner started!</b>\n\n")
	fmt.Fprintf(&b, "📊 Monitoring %d pairs\n", len(symbols))
	fmt.Fprintf(&b, "⏱️ Timeframe: %s\n", timeframe)
	fmt.Fprintf(&b, "🔄 Checking every %ds\n\n", interval)
	fmt.Fprintf(&b, "Pairs: %s", strings.Join(symbols, ", "))
	return b.String()
}

// FormatShutdown renders the monitoring-stopped notice.
func FormatShutdown() string {
	return "⚠️ <b>Scanner stopped</b>\n\nMonitoring interrupted."
}

// conditionTitle turns "near_support" into "Near Support".
func conditionTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
