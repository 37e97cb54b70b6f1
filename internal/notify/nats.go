package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// publisher is the part of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes decisions to <prefix>.<kind>.decided.
type NATS struct {
	conn   publisher
	close  func()
	prefix string
	log    *zap.Logger
}

func NewNATS(url, prefix string, log *zap.Logger) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("vregistry"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("connected to NATS", zap.String("url", url))
	return &NATS{conn: conn, close: conn.Close, prefix: prefix, log: log}, nil
}

func (n *NATS) Subject(kind string) string {
	if n.prefix == "" {
		return kind + ".decided"
	}
	return n.prefix + "." + kind + ".decided"
}

func (n *NATS) NotifyDecision(_ context.Context, d Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	subject := n.Subject(d.Kind)
	if err := n.conn.Publish(subject, data); err != nil {
		n.log.Error("failed to publish decision", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to publish decision: %w", err)
	}
	n.log.Debug("decision published", zap.String("subject", subject), zap.Int("record_id", d.RecordID))
	return nil
}

func (n *NATS) Close() {
	if n.close != nil {
		n.close()
		n.log.Info("NATS connection closed")
	}
}
