// Command sweep expands a parameter grid from a YAML config file and runs
// a backtest job for every combination across a bounded worker pool.
package main

import (
	"context"
	"math/rand"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/config"
	"github.com/flipper1994/trading-core/internal/sweep"
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

	runCfg, err := sweep.LoadConfig(cfg.SweepConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SweepConfigPath).Msg("failed to load sweep config")
	}

	manifest := sweep.NewManifest("artifacts/sweep_manifest.jsonl")

	maxWorkers := runCfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = cfg.SweepMaxWorkers
	}

	results, err := sweep.Run(context.Background(), runCfg.Grid, runJob, manifest, maxWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep run failed")
	}

	for _, r := range results {
		if r.Err != nil {
			log.Warn().Str("job_id", r.JobID).Err(r.Err).Msg("job failed")
			continue
		}
		log.Info().Str("job_id", r.JobID).Interface("summary", r.Summary).Msg("job completed")
	}
}

// runJob is a placeholder job body until a concrete backtest wiring is
// supplied by the caller; it simulates variable job duration so the
// manifest/worker-pool plumbing has something nontrivial to exercise.
func runJob(ctx context.Context, combo sweep.Combo) (map[string]float64, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(rand.Intn(50)) * time.Millisecond):
	}
	return map[string]float64{"params_seen": float64(len(combo))}, nil
}
