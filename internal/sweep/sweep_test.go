package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandParamGridCartesianProduct(t *testing.T) {
	grid := ParamGrid{"a": {"1", "2"}, "b": {"x", "y"}}
	combos := ExpandParamGrid(grid)
	require.Len(t, combos, 4)
	seen := map[string]bool{}
	for _, c := range combos {
		seen[c["a"]+c["b"]] = true
	}
	assert.True(t, seen["1x"] && seen["1y"] && seen["2x"] && seen["2y"])
}

func TestExpandParamGridIsDeterministic(t *testing.T) {
	grid := ParamGrid{"a": {"1", "2"}, "b": {"x", "y"}}
	first := ExpandParamGrid(grid)
	second := ExpandParamGrid(grid)
	assert.Equal(t, first, second)
}

func TestRunDefaultsWorkersToMinOfFourAndComboCount(t *testing.T) {
	grid := ParamGrid{"a": {"1", "2"}}
	results, err := Run(context.Background(), grid, func(ctx context.Context, c Combo) (map[string]float64, error) {
		return map[string]float64{"score": 1}, nil
	}, nil, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRunAppendsManifestEntriesForEveryCombo(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.jsonl")
	manifest := NewManifest(manifestPath)

	grid := ParamGrid{"a": {"1", "2", "3"}}
	_, err := Run(context.Background(), grid, func(ctx context.Context, c Combo) (map[string]float64, error) {
		return map[string]float64{"score": 1}, nil
	}, manifest, 2)
	require.NoError(t, err)

	jobs, err := LoadJobs(manifestPath)
	require.NoError(t, err)
	// 3 combos * (queued, running, done) = 9 appended events.
	assert.Len(t, jobs, 9)
}

func TestLoadJobsReturnsNilForMissingFile(t *testing.T) {
	jobs, err := LoadJobs(filepath.Join(os.TempDir(), "does-not-exist.jsonl"))
	require.NoError(t, err)
	assert.Nil(t, jobs)
}

func TestRunSurvivesIndividualJobFailure(t *testing.T) {
	grid := ParamGrid{"a": {"1", "2"}}
	results, err := Run(context.Background(), grid, func(ctx context.Context, c Combo) (map[string]float64, error) {
		if c["a"] == "1" {
			return nil, assert.AnError
		}
		return map[string]float64{"score": 1}, nil
	}, nil, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
}
