package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/nats-io/nats.go"
)

// NATSClient wraps a NATS connection used for notification delivery.
type NATSClient struct {
	conn *nats.Conn
}

// NewNATSClient connects to the NATS server at url.
func NewNATSClient(url, name string) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSClient{conn: conn}, nil
}

// GetConn returns the underlying NATS connection
func (c *NATSClient) GetConn() *nats.Conn {
	return c.conn
}

// PublishJSON marshals v and publishes it on subject without waiting for a reply.
func (c *NATSClient) PublishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	telemetry.NATSMessagesPublished.WithLabelValues(subject).Inc()
	return nil
}

// Close drains and closes the NATS connection
func (c *NATSClient) Close() {
	if c.conn != nil {
		c.conn.Drain()
		c.conn.Close()
	}
}
