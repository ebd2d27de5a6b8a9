// Package redis publishes setup results to Redis for dashboard consumers.
package redis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"signal-botv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const defaultLatestTTL = 30 * time.Minute

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher writes the latest setup result per symbol/direction and publishes
// it for real-time subscribers. All writes are best effort — a Redis outage
// must never stall the scan loop, so failures are logged, not returned.
type Publisher struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// New creates a new Publisher and pings the server.
func New(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// PublishSetup performs a pipelined SET latest + PUBLISH for one result.
func (p *Publisher) PublishSetup(ctx context.Context, res model.SetupResult) {
	dir := strings.ToLower(string(res.Direction))
	latestKey := "setup:latest:" + res.Symbol + ":" + dir
	pubsubCh := "pub:setup:" + res.Symbol + ":" + dir
	jsonData := string(res.JSON())

	pipe := p.client.Pipeline()
	pipe.Set(ctx, latestKey, jsonData, defaultLatestTTL)
	pipe.Publish(ctx, pubsubCh, jsonData)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] publish setup error for %s %s: %v", res.Symbol, res.Direction, err)
	}
}

// Close closes the Redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
