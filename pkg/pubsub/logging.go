package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Logging decorates a PubSub with debug logging of every broadcast and
// subscribe. Useful while developing rendering-engine integrations.
type Logging struct {
	inner  PubSub
	logger *slog.Logger
}

// NewLogging wraps inner so every call is logged at debug level.
func NewLogging(inner PubSub, logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{inner: inner, logger: logger}
}

// Broadcast logs and forwards to the wrapped PubSub.
func (l *Logging) Broadcast(ctx context.Context, topic string, payload json.RawMessage) error {
	err := l.inner.Broadcast(ctx, topic, payload)
	l.logger.Debug("pubsub: broadcast",
		"topic", topic,
		"bytes", len(payload),
		"error", err)
	return err
}

// Subscribe logs and forwards to the wrapped PubSub.
func (l *Logging) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	sub, err := l.inner.Subscribe(ctx, topic)
	l.logger.Debug("pubsub: subscribe",
		"topic", topic,
		"error", err)
	return sub, err
}
