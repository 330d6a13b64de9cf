package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/marketdata/vendor"
)

type stubVendorClient struct {
	name string
	bars Bars
}

func (s *stubVendorClient) Name() string { return s.name }
func (s *stubVendorClient) SupportsStreaming() bool { return false }
func (s *stubVendorClient) StreamBars(ctx context.Context, symbol, interval string) (<-chan Bar, error) {
	return nil, nil
}
func (s *stubVendorClient) FetchBars(ctx context.Context, req vendor.FetchRequest) (Bars, error) {
	return s.bars, nil
}

func TestDALFetchBarsProducesLengthCoherentBatch(t *testing.T) {
	base := time.Unix(0, 0)
	bars := Bars{Rows: []Bar{
		{Timestamp: base, Close: 10},
		{Timestamp: base.Add(time.Minute), Close: 11},
		{Timestamp: base.Add(2 * time.Minute), Close: 10.5},
	}}

	registry := &vendor.Registry{}
	registry.Register("fake", &stubVendorClient{name: "fake", bars: bars})

	d := New(registry, nil, nil, 5)
	d.cacheDir = t.TempDir()
	batch, err := d.FetchBars(context.Background(), "fake", "TEST", "1m", base, base.Add(3*time.Minute))
	require.NoError(t, err)

	assert.Len(t, batch.Signals, len(batch.Bars.Rows))
	assert.Len(t, batch.Regimes, len(batch.Bars.Rows))
	assert.Equal(t, 3, batch.Bars.Len())
	assert.NotEmpty(t, batch.CachePaths["bars"])
	assert.NotEmpty(t, batch.CachePaths["signals"])
	assert.NotEmpty(t, batch.CachePaths["regimes"])
}

func TestResolveVendorRemapsAlphaVantageDailyInterval(t *testing.T) {
	registry := &vendor.Registry{}
	registry.Register("alphavantage", &stubVendorClient{name: "alphavantage"})
	registry.Register("alphavantage_daily", &stubVendorClient{name: "alphavantage_daily"})

	d := New(registry, nil, nil, 5)

	c, ok := d.resolveVendor("alphavantage", "1Day")
	require.True(t, ok)
	assert.Equal(t, "alphavantage_daily", c.Name())

	c, ok = d.resolveVendor("alphavantage", "1m")
	require.True(t, ok)
	assert.Equal(t, "alphavantage", c.Name())
}

func TestMergeBarsDedupesAndSorts(t *testing.T) {
	base := time.Unix(0, 0)
	a := Bars{Rows: []Bar{{Timestamp: base, Close: 1}, {Timestamp: base.Add(time.Minute), Close: 2}}}
	b := Bars{Rows: []Bar{{Timestamp: base.Add(time.Minute), Close: 99}, {Timestamp: base.Add(2 * time.Minute), Close: 3}}}

	merged := MergeBars(a, b)
	require.Len(t, merged.Rows, 3)
	assert.Equal(t, 99.0, merged.Rows[1].Close, "incoming wins on timestamp conflict")
	assert.True(t, merged.Rows[0].Timestamp.Before(merged.Rows[1].Timestamp))
	assert.True(t, merged.Rows[1].Timestamp.Before(merged.Rows[2].Timestamp))
}
