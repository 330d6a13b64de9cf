// Package config binds the environment variables documented in §6 onto a
// single struct, following the adred-codev-ws_poc cmd/main.go convention of
// env-tag struct + caarlos0/env, with an optional local .env for dev via
// joho/godotenv.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process-wide configuration for every cmd/ entry point.
// Not every field applies to every binary; unused fields are simply
// ignored by that binary.
type Config struct {
	// Vendor credentials.
	AlpacaKeyID       string `env:"ALPACA_KEY_ID"`
	AlpacaSecretKey   string `env:"ALPACA_SECRET_KEY"`
	AlphaVantageKey   string `env:"ALPHAVANTAGE_API_KEY"`
	TwelveDataKey     string `env:"TWELVEDATA_API_KEY"`
	FinnhubKey        string `env:"FINNHUB_API_KEY"`

	// Persistence.
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/marketdata.db"`

	// Event bus / cache.
	NATSUrl   string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	// Streaming manager.
	StreamQueueSize   int           `env:"STREAM_QUEUE_SIZE" envDefault:"1024"`
	StreamPollInterval time.Duration `env:"STREAM_POLL_INTERVAL" envDefault:"5s"`

	// Sweep runner.
	SweepConfigPath string `env:"SWEEP_CONFIG_PATH" envDefault:"sweep.yaml"`
	SweepMaxWorkers int    `env:"SWEEP_MAX_WORKERS" envDefault:"4"`

	// Observability.
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
}

// Load reads a local .env file if present (ignored if missing) and parses
// the process environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
