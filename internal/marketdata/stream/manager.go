// Package stream implements the bounded, backpressured streaming manager
// that turns a vendor's live bar feed into a channel of ProbabilisticBatch
// updates, backfilling gaps before emitting the live event that exposed
// them. Mirrors app/dal/streaming.py's StreamingManager.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/marketdata"
	"github.com/flipper1994/trading-core/internal/marketdata/filter"
	"github.com/flipper1994/trading-core/internal/marketdata/regime"
)

// IntervalToDuration converts an interval string ("1m", "5m", "1h", "1d")
// into a time.Duration, matching interval_to_seconds.
func IntervalToDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// Backfiller fetches historical bars for a gap between from (exclusive)
// and to (inclusive), bounded by limit rows.
type Backfiller interface {
	Backfill(ctx context.Context, symbol, interval string, from, to time.Time, limit int) (marketdata.Bars, error)
}

// Source emits live bars for one symbol/interval until ctx is cancelled.
type Source interface {
	Stream(ctx context.Context, symbol, interval string) (<-chan marketdata.Bar, error)
}

// state is the per-symbol sliding window and filter state the manager
// maintains across live events, matching _PipelineState.
type state struct {
	mu        sync.Mutex
	buffer    []marketdata.Bar
	bufferCap int
	lastSeen  time.Time
	bank      *filter.Bank
	classifier *regime.Classifier
}

// Manager streams bars for one symbol, detecting gaps against lastSeen and
// backfilling before publishing the live event that revealed the gap.
type Manager struct {
	symbol     string
	interval   string
	queueSize  int
	source     Source
	backfiller Backfiller
	window     int

	st *state
}

// NewManager constructs a Manager. window sizes the regime classifier's
// rolling window; the sliding buffer retained for classification is
// max(3*window, 64) bars, matching the original sizing rule.
func NewManager(symbol, interval string, queueSize, window int, source Source, backfiller Backfiller) *Manager {
	bufCap := 3 * window
	if bufCap < 64 {
		bufCap = 64
	}
	return &Manager{
		symbol:     symbol,
		interval:   interval,
		queueSize:  queueSize,
		source:     source,
		backfiller: backfiller,
		window:     window,
		st: &state{
			bufferCap:  bufCap,
			bank:       filter.NewBank(filter.DefaultConfig()),
			classifier: regime.NewClassifier(window, regime.DefaultThresholds()),
		},
	}
}

// Stream starts the producer goroutine and returns a bounded, drop-oldest
// channel of ProbabilisticBatch updates. The returned channel is closed
// when ctx is cancelled or the source closes.
func (m *Manager) Stream(ctx context.Context) <-chan marketdata.ProbabilisticBatch {
	out := make(chan marketdata.ProbabilisticBatch, m.queueSize)

	go func() {
		defer close(out)

		bars, err := m.source.Stream(ctx, m.symbol, m.interval)
		if err != nil {
			log.Error().Err(err).Str("symbol", m.symbol).Msg("failed to start stream source")
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case bar, ok := <-bars:
				if !ok {
					return
				}
				m.handleLiveBar(ctx, bar, out)
			}
		}
	}()

	return out
}

// handleLiveBar detects a gap since the last seen timestamp, backfills it
// (emitting the backfilled batch first), then emits the live bar's batch.
func (m *Manager) handleLiveBar(ctx context.Context, bar marketdata.Bar, out chan marketdata.ProbabilisticBatch) {
	m.st.mu.Lock()
	lastSeen := m.st.lastSeen
	m.st.mu.Unlock()

	if !lastSeen.IsZero() {
		expected := IntervalToDuration(m.interval)
		gap := bar.Timestamp.Sub(lastSeen)
		if gap > expected+expected/2 {
			m.backfillGap(ctx, lastSeen, bar.Timestamp, out)
		}
	}

	batch := m.ingest(bar)
	m.putWithBackpressure(out, batch)
}

// backfillGap fetches bars strictly between from and to and publishes them
// in order, ahead of the live event that revealed the gap. A truncated
// backfill (vendor returned fewer rows than the full gap) still emits what
// came back, without retrying — Testable Property 8 requires ordering, not
// completeness.
func (m *Manager) backfillGap(ctx context.Context, from, to time.Time, out chan marketdata.ProbabilisticBatch) {
	expected := IntervalToDuration(m.interval)
	limit := int(to.Sub(from)/expected) + 1
	if limit < 1 {
		limit = 1
	}

	bars, err := m.backfiller.Backfill(ctx, m.symbol, m.interval, from, to, limit)
	if err != nil {
		log.Warn().Err(err).Str("symbol", m.symbol).Msg("backfill failed, continuing with live event only")
		return
	}

	for _, b := range bars.Rows {
		if !b.Timestamp.After(from) || !b.Timestamp.Before(to) {
			continue
		}
		batch := m.ingest(b)
		m.putWithBackpressure(out, batch)
	}
}

// ingest runs one bar through the filter bank and regime classifier and
// updates the sliding buffer + lastSeen watermark.
func (m *Manager) ingest(bar marketdata.Bar) marketdata.ProbabilisticBatch {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	out := m.st.bank.Step(bar.Close)
	bar.FilteredPrice = out.FilteredPrice
	bar.ProbFilteredPrice = out.FilteredPrice
	bar.ProbPrice = out.KalmanPrice
	bar.ProbButterworthPrice = out.ButterworthPrice
	bar.ProbVelocity = out.KalmanVelocity

	regimePrice := out.FilteredPrice
	if regimePrice == 0 {
		regimePrice = bar.Close
	}
	snap := m.st.classifier.Classify(bar.Timestamp, regimePrice, out.KalmanUncertainty)

	m.st.buffer = append(m.st.buffer, bar)
	if len(m.st.buffer) > m.st.bufferCap {
		m.st.buffer = m.st.buffer[len(m.st.buffer)-m.st.bufferCap:]
	}
	m.st.lastSeen = bar.Timestamp

	frame := marketdata.SignalFrame{
		Symbol:      m.symbol,
		Timestamp:   bar.Timestamp,
		Price:       bar.Close,
		Filtered:    out.FilteredPrice,
		Velocity:    out.KalmanVelocity,
		Uncertainty: out.KalmanUncertainty,
		Regime:      snap,
	}

	return marketdata.ProbabilisticBatch{
		Bars:    marketdata.Bars{Symbol: m.symbol, Interval: m.interval, Rows: []marketdata.Bar{bar}},
		Signals: []marketdata.SignalFrame{frame},
		Regimes: []marketdata.RegimeSnapshot{snap},
	}
}

// putWithBackpressure sends batch on out, dropping the oldest queued item
// if out is full rather than blocking the producer. Matches
// _put_with_backpressure's drop-oldest policy.
func (m *Manager) putWithBackpressure(out chan marketdata.ProbabilisticBatch, batch marketdata.ProbabilisticBatch) {
	select {
	case out <- batch:
		return
	default:
	}

	// Queue is full: drop one oldest item, then enqueue the new one. Only
	// the producer goroutine sends on out, so the freed slot stays free
	// for the send below.
	select {
	case <-out:
		log.Warn().Str("symbol", m.symbol).Msg("stream queue full, dropped oldest batch")
	default:
	}
	select {
	case out <- batch:
	default:
	}
}
