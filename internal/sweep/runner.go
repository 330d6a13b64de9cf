package sweep

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ParamGrid maps a parameter name to its candidate values, the input to
// ExpandParamGrid.
type ParamGrid map[string][]string

// Combo is one fully-specified parameter combination, the unit of work a
// sweep job runs.
type Combo map[string]string

// ExpandParamGrid returns the cartesian product of grid's value lists,
// matching _expand_param_grid. Keys are iterated in sorted order so the
// expansion is deterministic across runs.
func ExpandParamGrid(grid ParamGrid) []Combo {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []Combo{{}}
	for _, k := range keys {
		values := grid[k]
		var next []Combo
		for _, c := range combos {
			for _, v := range values {
				nc := make(Combo, len(c)+1)
				for ck, cv := range c {
					nc[ck] = cv
				}
				nc[k] = v
				next = append(next, nc)
			}
		}
		combos = next
	}
	return combos
}

// JobFunc executes one combo and returns its result summary or an error.
type JobFunc func(ctx context.Context, combo Combo) (map[string]float64, error)

// RunResult pairs a combo with its job outcome, in completion order (which
// may differ from submission order — the manifest's "queued" entries
// record submission order).
type RunResult struct {
	JobID   string
	Combo   Combo
	Summary map[string]float64
	Err     error
}

// Run expands grid and executes every combo through fn across a bounded
// worker pool (default min(4, len(combos)), matching the original sweep
// runner's default), recording each job's lifecycle to manifest.
func Run(ctx context.Context, grid ParamGrid, fn JobFunc, manifest *Manifest, maxWorkers int) ([]RunResult, error) {
	combos := ExpandParamGrid(grid)
	if maxWorkers <= 0 {
		maxWorkers = 4
		if len(combos) < maxWorkers {
			maxWorkers = len(combos)
		}
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make([]RunResult, 0, len(combos))
	var resultsMu sync.Mutex
	jobIDs := make([]string, len(combos))
	for i, combo := range combos {
		jobIDs[i] = uuid.NewString()
		if manifest != nil {
			_ = manifest.Record(JobRecord{JobID: jobIDs[i], Status: "queued", Params: combo})
		}
		_ = combo
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, combo := range combos {
		i, combo := i, combo
		g.Go(func() error {
			jobID := jobIDs[i]
			if manifest != nil {
				_ = manifest.Record(JobRecord{JobID: jobID, Status: "running", Params: combo, StartedAt: time.Now()})
			}

			summary, err := fn(gctx, combo)
			rec := JobRecord{JobID: jobID, Params: combo, FinishedAt: time.Now()}
			if err != nil {
				rec.Status = "failed"
				rec.Error = err.Error()
				log.Warn().Str("job_id", jobID).Err(err).Msg("sweep job failed")
			} else {
				rec.Status = "done"
			}
			if manifest != nil {
				_ = manifest.Record(rec)
			}

			resultsMu.Lock()
			results = append(results, RunResult{JobID: jobID, Combo: combo, Summary: summary, Err: err})
			resultsMu.Unlock()
			return nil // a single job's failure does not abort the sweep
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("sweep run: %w", err)
	}
	return results, nil
}
