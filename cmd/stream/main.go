// Command stream runs the streaming manager for one symbol, logging every
// probabilistic batch it emits.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/config"
	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/marketdata/stream"
	"github.com/flipper1994/trading-core/internal/marketdata/vendor"
)

// vendorAdapter satisfies both stream.Source and stream.Backfiller over a
// single vendor.Client, so the streaming manager doesn't need to know
// about the vendor package directly.
type vendorAdapter struct {
	client vendor.Client
}

func (a vendorAdapter) Stream(ctx context.Context, symbol, interval string) (<-chan marketdata.Bar, error) {
	return a.client.StreamBars(ctx, symbol, interval)
}

func (a vendorAdapter) Backfill(ctx context.Context, symbol, interval string, from, to time.Time, limit int) (marketdata.Bars, error) {
	return a.client.FetchBars(ctx, vendor.FetchRequest{Symbol: symbol, Interval: interval, Start: from, End: to, Limit: limit})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	registry := vendor.NewRegistry(cfg)
	client, ok := registry.Get("alpaca")
	if !ok || !client.SupportsStreaming() {
		log.Fatal().Msg("configured vendor does not support streaming")
	}

	symbol := "AAPL"
	if len(os.Args) > 1 {
		symbol = os.Args[1]
	}

	adapter := vendorAdapter{client: client}
	manager := stream.NewManager(symbol, "1m", cfg.StreamQueueSize, 20, adapter, adapter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for batch := range manager.Stream(ctx) {
		log.Info().Str("symbol", symbol).Int("bars", batch.Bars.Len()).Msg("probabilistic batch received")
	}
}
