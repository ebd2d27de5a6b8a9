package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Telegram credentials
	TelegramBotToken string
	TelegramChatID   string

	// Optional secondary notification channel
	WebhookURL string

	// Market data
	Symbols        string // comma-separated, e.g. "BTCUSDT,ETHUSDT"
	Timeframe      string // Binance interval string, e.g. "15m"
	FeedMode       string // "rest" (poll klines) or "ws" (stream into windows)
	KlineLimit     int
	BinanceBaseURL string
	BinanceWSURL   string

	// Scan cadence
	ScanIntervalSec int

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honored if present.
func Load() *Config {
	// Missing .env is fine — real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   mustEnv("TELEGRAM_CHAT_ID"),

		WebhookURL: getEnv("WEBHOOK_URL", ""),

		Symbols:        getEnv("SYMBOLS", "BTCUSDT,ETHUSDT,BNBUSDT,SOLUSDT,ADAUSDT,XRPUSDT,DOGEUSDT,AVAXUSDT"),
		Timeframe:      getEnv("TIMEFRAME", "15m"),
		FeedMode:       getEnv("FEED_MODE", "rest"),
		KlineLimit:     getEnvInt("KLINE_LIMIT", 500),
		BinanceBaseURL: getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
		BinanceWSURL:   getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443"),

		ScanIntervalSec: getEnvInt("SCAN_INTERVAL_SEC", 60),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/signals.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
	}
}

// ParseSymbols parses the Symbols string into an uppercased, de-blanked slice.
func (c *Config) ParseSymbols() []string {
	parts := strings.Split(c.Symbols, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		symbols = append(symbols, p)
	}
	return symbols
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}
