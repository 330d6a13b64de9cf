package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/marketdata"
)

type fakeSource struct {
	bars []marketdata.Bar
}

func (f *fakeSource) Stream(ctx context.Context, symbol, interval string) (<-chan marketdata.Bar, error) {
	ch := make(chan marketdata.Bar, len(f.bars))
	for _, b := range f.bars {
		ch <- b
	}
	close(ch)
	return ch, nil
}

type fakeBackfiller struct {
	bars marketdata.Bars
}

func (f *fakeBackfiller) Backfill(ctx context.Context, symbol, interval string, from, to time.Time, limit int) (marketdata.Bars, error) {
	return f.bars, nil
}

func TestIntervalToDurationKnownValues(t *testing.T) {
	assert.Equal(t, time.Minute, IntervalToDuration("1m"))
	assert.Equal(t, time.Hour, IntervalToDuration("1h"))
	assert.Equal(t, 24*time.Hour, IntervalToDuration("1d"))
}

func TestManagerEmitsOneBatchPerLiveBar(t *testing.T) {
	base := time.Unix(0, 0)
	bars := []marketdata.Bar{
		{Timestamp: base, Close: 100},
		{Timestamp: base.Add(time.Minute), Close: 101},
		{Timestamp: base.Add(2 * time.Minute), Close: 102},
	}
	m := NewManager("TEST", "1m", 16, 10, &fakeSource{bars: bars}, &fakeBackfiller{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out := m.Stream(ctx)

	var received []marketdata.ProbabilisticBatch
	for b := range out {
		received = append(received, b)
	}
	require.Len(t, received, 3)
	assert.Equal(t, 100.0, received[0].Bars.Rows[0].Close)
}

func TestManagerBackfillsGapBeforeLiveEvent(t *testing.T) {
	base := time.Unix(0, 0)
	live := marketdata.Bar{Timestamp: base.Add(5 * time.Minute), Close: 105}
	gapBars := marketdata.Bars{Rows: []marketdata.Bar{
		{Timestamp: base.Add(2 * time.Minute), Close: 102},
		{Timestamp: base.Add(3 * time.Minute), Close: 103},
	}}

	m := NewManager("TEST", "1m", 16, 10,
		&fakeSource{bars: []marketdata.Bar{{Timestamp: base, Close: 100}, live}},
		&fakeBackfiller{bars: gapBars})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var received []marketdata.ProbabilisticBatch
	for b := range m.Stream(ctx) {
		received = append(received, b)
	}

	require.True(t, len(received) >= 3)
	// Backfilled bars must appear strictly before the live bar that exposed
	// the gap, and in chronological order.
	var timestamps []time.Time
	for _, b := range received {
		timestamps = append(timestamps, b.Bars.Rows[0].Timestamp)
	}
	for i := 1; i < len(timestamps); i++ {
		assert.True(t, timestamps[i].After(timestamps[i-1]))
	}
	assert.Equal(t, live.Timestamp, timestamps[len(timestamps)-1])
}
