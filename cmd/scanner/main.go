package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"signal-botv1/config"
	"signal-botv1/internal/logger"
	"signal-botv1/internal/marketdata/binance"
	"signal-botv1/internal/marketdata/window"
	"signal-botv1/internal/marketdata/ws"
	"signal-botv1/internal/metrics"
	"signal-botv1/internal/model"
	"signal-botv1/internal/notification"
	"signal-botv1/internal/scanner"
	redisstore "signal-botv1/internal/store/redis"
	sqlitestore "signal-botv1/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("scanner", slog.LevelInfo)
	log.Println("[scanner] starting...")

	// ---- Load config from env ----
	cfg := config.Load()
	symbols := cfg.ParseSymbols()
	if len(symbols) == 0 {
		log.Fatal("[scanner] no symbols configured")
	}
	log.Printf("[scanner] %d symbols, timeframe %s, feed mode %s",
		len(symbols), cfg.Timeframe, cfg.FeedMode)

	// ---- Setup metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()

	// ---- Setup context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Signal journal (SQLite) ----
	journal, err := sqlitestore.New(sqlitestore.JournalConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[scanner] sqlite init failed: %v", err)
	}
	defer journal.Close()
	log.Println("[scanner] signal journal ready")

	// ---- Setup publisher (Redis, optional) ----
	var publisher *redisstore.Publisher
	if cfg.RedisAddr != "" {
		publisher, err = redisstore.New(redisstore.PublisherConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[scanner] WARNING: redis init failed: %v (continuing without redis)", err)
		} else {
			log.Println("[scanner] redis publisher ready")
		}
	}
	if publisher == nil {
		health.SetRedisOptional()
	}

	// ---- Periodic liveness checks ----
	if publisher != nil {
		health.StartLivenessChecker(ctx, publisher.Client(), journal.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, journal.DB(), 10*time.Second)
	}

	// ---- Metrics / health / signals HTTP server ----
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health, journal)
	metricsSrv.Start()

	// ---- Notification channels ----
	var notifier notification.Notifier = notification.NewTelegramNotifier(
		cfg.TelegramBotToken, cfg.TelegramChatID)
	if cfg.WebhookURL != "" {
		notifier = notification.Multi{
			notifier,
			notification.NewWebhookNotifier(cfg.WebhookURL),
		}
	}

	// ---- Notification self-test before monitoring starts ----
	testCtx, testCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := notifier.Send(testCtx, notification.Alert{
		Level:   notification.AlertInfo,
		Message: "✅ Connection test OK",
	}); err != nil {
		log.Printf("[scanner] WARNING: notification self-test failed: %v", err)
	} else {
		log.Println("[scanner] notification channel verified")
	}
	testCancel()

	// ---- Candle source: REST polling or WS streaming into windows ----
	restClient := binance.NewClient(cfg.BinanceBaseURL, cfg.Timeframe)

	var source model.CandleSource = restClient
	if strings.EqualFold(cfg.FeedMode, "ws") {
		windows := window.NewStore(cfg.KlineLimit)

		// Backfill each window over REST so the first pass has full history.
		for _, symbol := range symbols {
			series, err := restClient.Candles(ctx, symbol, cfg.KlineLimit)
			if err != nil {
				log.Printf("[scanner] WARNING: backfill %s failed: %v", symbol, err)
				continue
			}
			windows.Seed(symbol, series)
		}

		ingest, err := ws.New(ws.Config{
			BaseURL:  cfg.BinanceWSURL,
			Symbols:  symbols,
			Interval: cfg.Timeframe,
		}, windows)
		if err != nil {
			log.Fatalf("[scanner] ws init failed: %v", err)
		}
		ingest.OnReconnect = func() {
			prom.WSReconnects.Inc()
		}
		go func() {
			if err := ingest.Start(ctx); err != nil {
				log.Printf("[scanner] ws error: %v", err)
			}
		}()

		source = windows
		log.Println("[scanner] streaming feed ready")
	}

	// ---- Scan loop ----
	scan := scanner.New(scanner.Config{
		Symbols:    symbols,
		Timeframe:  cfg.Timeframe,
		Interval:   time.Duration(cfg.ScanIntervalSec) * time.Second,
		KlineLimit: cfg.KlineLimit,
	}, source, notifier, prom, health)
	scan.SetJournal(journal)
	if publisher != nil {
		scan.SetPublisher(publisher)
	}

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		if err := scan.Run(ctx); err != nil {
			log.Printf("[scanner] run error: %v", err)
		}
	}()

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[scanner] shutdown signal received, cleaning up...")
	cancel()
	<-scanDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)

	if publisher != nil {
		publisher.Close()
	}

	log.Println("[scanner] shutdown complete.")
}
