package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/marketdata"
)

func TestStoreBarsWritesExpectedPath(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(0, 0)
	bars := marketdata.Bars{Rows: []marketdata.Bar{
		{Timestamp: base, Close: 10},
		{Timestamp: base.Add(time.Minute), Close: 11},
	}}

	path, err := StoreBars(dir, "AAPL", "yahoo", bars)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL_yahoo.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "timestamp,open,high,low,close,volume")
}

func TestStoreSignalsAndRegimesEmptyReturnsNoPath(t *testing.T) {
	dir := t.TempDir()
	path, err := StoreSignals(dir, "AAPL", "yahoo", nil)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = StoreRegimes(dir, "AAPL", nil)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestStoreRegimesWritesExpectedPath(t *testing.T) {
	dir := t.TempDir()
	regimes := []marketdata.RegimeSnapshot{
		{Timestamp: time.Unix(0, 0), Label: "trend_up", Momentum: 0.01, Volatility: 0.005, Uncertainty: 0.01},
	}

	path, err := StoreRegimes(dir, "AAPL", regimes)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL_regimes.csv"), path)
}
