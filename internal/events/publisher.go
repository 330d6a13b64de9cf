// Package events implements the order-intent and sweep-job consumers plus
// a best-effort NATS publisher for the topics named in the external
// interfaces (bars.snapshot, signals.snapshot, regimes.snapshot,
// exec.orders, backtest.job).
package events

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Topic names match the logical topics in the external interfaces table.
const (
	TopicBarsSnapshot    = "bars.snapshot"
	TopicSignalsSnapshot = "signals.snapshot"
	TopicRegimesSnapshot = "regimes.snapshot"
	TopicExecOrders      = "exec.orders"
	TopicBacktestJob     = "backtest.job"
)

// Publisher wraps a *nats.Conn and swallows publish failures with a debug
// log line — telemetry publish must never block or fail the caller's
// primary operation.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to url. Returns an error only on connection
// failure; callers that want best-effort startup (dev environments
// without a broker) should log and continue with a nil *Publisher.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("trading-core"))
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

// Publish marshals v as JSON and publishes it to topic, logging (not
// returning) any failure.
func (p *Publisher) Publish(topic string, v interface{}) {
	if p == nil || p.conn == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Debug().Err(err).Str("topic", topic).Msg("failed to marshal event payload")
		return
	}
	if err := p.conn.Publish(topic, payload); err != nil {
		log.Debug().Err(err).Str("topic", topic).Msg("failed to publish event")
	}
}

// Close drains and closes the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}
