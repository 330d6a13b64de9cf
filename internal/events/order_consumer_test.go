package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipper1994/trading-core/internal/orchestration"
	"github.com/flipper1994/trading-core/internal/strategy"
)

type fakePersister struct {
	orders      []OrderRecord
	fills       [][]FillRecord
	checkpoints []string
}

func (f *fakePersister) PersistOrder(ctx context.Context, order OrderRecord, fills []FillRecord) error {
	f.orders = append(f.orders, order)
	f.fills = append(f.fills, fills)
	return nil
}

func (f *fakePersister) Checkpoint(ctx context.Context, offset string) error {
	f.checkpoints = append(f.checkpoints, offset)
	return nil
}

func TestOrderEventConsumerPersistsAndCheckpoints(t *testing.T) {
	persister := &fakePersister{}
	consumer := &OrderEventConsumer{Persister: persister, FillPrice: func(orchestration.OrderIntent) float64 { return 101.5 }}

	intent := orchestration.OrderIntent{RunID: "run-1", Symbol: "AAPL", Direction: strategy.SignalLong, Fraction: 0.1, Timestamp: time.Now()}
	payload, err := json.Marshal(intent)
	require.NoError(t, err)

	messages := make(chan []byte, 1)
	messages <- payload
	close(messages)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, consumer.Run(ctx, messages))

	require.Len(t, persister.orders, 1)
	assert.Equal(t, "run-1", persister.orders[0].RunID)
	require.Len(t, persister.checkpoints, 1)
	assert.Equal(t, "run-1", persister.checkpoints[0])
}

func TestIntentToFillRecordsEmptyForZeroFraction(t *testing.T) {
	intent := orchestration.OrderIntent{Fraction: 0}
	assert.Nil(t, IntentToFillRecords(intent, 100))
}

func TestIntentToFillRecordsProducesOneFill(t *testing.T) {
	intent := orchestration.OrderIntent{RunID: "r", Symbol: "AAPL", Fraction: 0.2}
	fills := IntentToFillRecords(intent, 100)
	require.Len(t, fills, 1)
	assert.Equal(t, 100.0, fills[0].Price)
}

type fakeDispatcher struct {
	dispatched []SweepJobBundle
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, bundle SweepJobBundle) error {
	f.dispatched = append(f.dispatched, bundle)
	return nil
}

func TestSweepJobConsumerDispatchesBundle(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	consumer := &SweepJobConsumer{Dispatcher: dispatcher}

	bundle := SweepJobBundle{ConfigPath: "sweep.yaml", Symbol: "AAPL"}
	payload, err := json.Marshal(bundle)
	require.NoError(t, err)

	messages := make(chan []byte, 1)
	messages <- payload
	close(messages)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, consumer.Run(ctx, messages))

	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, "AAPL", dispatcher.dispatched[0].Symbol)
}
