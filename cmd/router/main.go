// Command router runs a single orchestration router pass for one symbol
// and logs the resulting order intent (or halt reason).
package main

import (
	"context"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/backtest"
	"github.com/flipper1994/trading-core/internal/config"
	"github.com/flipper1994/trading-core/internal/events"
	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/marketdata/vendor"
	"github.com/flipper1994/trading-core/internal/orchestration"
	"github.com/flipper1994/trading-core/internal/strategy"
)

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

	publisher, err := events.NewPublisher(cfg.NATSUrl)
	if err != nil {
		log.Warn().Err(err).Msg("event publisher unavailable, continuing without it")
	}
	defer publisher.Close()

	dal := marketdata.New(registry, nil, publisher, 20)

	deps := orchestration.Dependencies{
		DAL: dal,
		Strategies: map[string]orchestration.StrategyFunc{
			"breakout":       func(f strategy.Frame) []strategy.Signal { return strategy.GenerateBreakoutSignals(f, strategy.DefaultBreakoutParams()) },
			"momentum":       func(f strategy.Frame) []strategy.Signal { return strategy.GenerateMomentumSignals(f, strategy.DefaultMomentumParams()) },
			"mean_reversion": func(f strategy.Frame) []strategy.Signal { return strategy.GenerateMeanReversionSignals(f, strategy.DefaultMeanReversionParams()) },
		},
		DefaultStrat: "momentum",
		Kelly:        backtest.FractionalKelly{Fraction: 0.5, MinFraction: 0, MaxFraction: 0.25},
	}

	router := orchestration.NewRouter(deps)

	symbol := "AAPL"
	if len(os.Args) > 1 {
		symbol = os.Args[1]
	}
	start, end := orchestration.DefaultTimeWindow("1m")
	rc := orchestration.NewContext(orchestration.Request{Symbol: symbol, Interval: "1m", Start: start, End: end})

	result := router.Run(context.Background(), rc)
	if result.HaltedAt != "" {
		log.Warn().Str("halted_at", result.HaltedAt).Str("reason", rc.HaltReason).Msg("router run halted")
		return
	}

	publisher.Publish(events.TopicExecOrders, rc.OrderIntent)
	log.Info().Str("run_id", rc.RunID).Interface("order_intent", rc.OrderIntent).Msg("router run completed")
}
