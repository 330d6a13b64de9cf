package events

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/sweep"
)

// SweepDispatcher executes one dispatched sweep job bundle remotely (or
// in-process, in tests).
type SweepDispatcher interface {
	Dispatch(ctx context.Context, bundle SweepJobBundle) error
}

// SweepJobBundle is the env-var-style payload a sweep.job message carries:
// enough to reconstruct a sweep.RunConfig on the receiving side without
// re-reading a shared config file.
type SweepJobBundle struct {
	ConfigPath string            `json:"config_path"`
	Symbol     string            `json:"symbol"`
	Strategy   string            `json:"strategy"`
	Grid       sweep.ParamGrid   `json:"grid"`
	Env        map[string]string `json:"env"`
}

// SweepJobConsumer drains backtest.job messages and dispatches each bundle,
// honoring graceful shutdown the same way OrderEventConsumer does.
type SweepJobConsumer struct {
	Dispatcher SweepDispatcher
}

// Run drains messages until ctx is cancelled or SIGINT/SIGTERM arrives.
func (c *SweepJobConsumer) Run(ctx context.Context, messages <-chan []byte) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-sigCtx.Done():
			log.Info().Msg("sweep job consumer shutting down")
			return nil
		case raw, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(sigCtx, raw)
		}
	}
}

func (c *SweepJobConsumer) handle(ctx context.Context, raw []byte) {
	var bundle SweepJobBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		log.Warn().Err(err).Msg("sweep job consumer: malformed payload")
		return
	}
	if err := c.Dispatcher.Dispatch(ctx, bundle); err != nil {
		log.Error().Err(err).Str("config_path", bundle.ConfigPath).Msg("sweep job dispatch failed")
	}
}
