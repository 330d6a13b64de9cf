package events

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/orchestration"
)

// OrderRecord is the persisted row derived from an OrderIntent, matching
// intent_to_order_record's output shape.
type OrderRecord struct {
	RunID     string    `json:"run_id"`
	Symbol    string    `json:"symbol"`
	Direction int       `json:"direction"`
	Fraction  float64   `json:"fraction"`
	Timestamp time.Time `json:"timestamp"`
}

// FillRecord is one simulated fill derived from an OrderIntent, matching
// intent_to_fill_records (one fill per intent in this simplified model).
type FillRecord struct {
	RunID     string    `json:"run_id"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// IntentToOrderRecord converts an OrderIntent to its persisted row shape.
func IntentToOrderRecord(intent orchestration.OrderIntent) OrderRecord {
	return OrderRecord{
		RunID:     intent.RunID,
		Symbol:    intent.Symbol,
		Direction: int(intent.Direction),
		Fraction:  intent.Fraction,
		Timestamp: intent.Timestamp,
	}
}

// IntentToFillRecords converts an OrderIntent to its (possibly empty) fill
// records. A zero-fraction intent produces no fills.
func IntentToFillRecords(intent orchestration.OrderIntent, fillPrice float64) []FillRecord {
	if intent.Fraction <= 0 {
		return nil
	}
	return []FillRecord{{RunID: intent.RunID, Symbol: intent.Symbol, Price: fillPrice, Timestamp: intent.Timestamp}}
}

// OrderPersister writes order/fill records and advances a consumer
// checkpoint.
type OrderPersister interface {
	PersistOrder(ctx context.Context, order OrderRecord, fills []FillRecord) error
	Checkpoint(ctx context.Context, offset string) error
}

// OrderEventConsumer drains a channel of raw JSON OrderIntent payloads,
// persists each transactionally, advances the checkpoint, and logs
// consumer lag. Honors SIGINT/SIGTERM for graceful shutdown, matching
// OrderEventConsumer's signal handling.
type OrderEventConsumer struct {
	Persister OrderPersister
	FillPrice func(orchestration.OrderIntent) float64
}

// Run drains messages until ctx is cancelled or a SIGINT/SIGTERM arrives.
// Each message is a JSON-encoded orchestration.OrderIntent.
func (c *OrderEventConsumer) Run(ctx context.Context, messages <-chan []byte) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-sigCtx.Done():
			log.Info().Msg("order consumer shutting down")
			return nil
		case raw, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(sigCtx, raw)
		}
	}
}

func (c *OrderEventConsumer) handle(ctx context.Context, raw []byte) {
	start := time.Now()

	var intent orchestration.OrderIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		log.Warn().Err(err).Msg("order consumer: malformed payload")
		return
	}

	order := IntentToOrderRecord(intent)
	fillPrice := 0.0
	if c.FillPrice != nil {
		fillPrice = c.FillPrice(intent)
	}
	fills := IntentToFillRecords(intent, fillPrice)

	if err := c.Persister.PersistOrder(ctx, order, fills); err != nil {
		log.Error().Err(err).Str("run_id", intent.RunID).Msg("failed to persist order")
		return
	}
	if err := c.Persister.Checkpoint(ctx, intent.RunID); err != nil {
		log.Warn().Err(err).Msg("failed to advance checkpoint")
	}

	lag := time.Since(intent.Timestamp)
	log.Debug().Dur("lag", lag).Dur("processing_time", time.Since(start)).Str("run_id", intent.RunID).Msg("order intent processed")
}
