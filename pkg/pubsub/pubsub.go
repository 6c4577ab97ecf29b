// Package pubsub defines the publish/subscribe capability consumed by the
// session transport, plus an in-process implementation suitable for
// single-node deployments and tests.
//
// Implementations must be safe for concurrent use by many sessions.
// Delivery contract: at-least-once per subscriber, in-order per topic.
package pubsub

import (
	"context"
	"encoding/json"
	"sync"
)

// PubSub is the capability the session transport is written against.
// Broadcast is fire-and-forget: a failure is reported to the caller but
// never retried here.
type PubSub interface {
	// Broadcast publishes payload on topic to all current subscribers.
	Broadcast(ctx context.Context, topic string, payload json.RawMessage) error

	// Subscribe registers interest in topic. The returned subscription's
	// channel yields payloads until the producer side closes the topic or
	// the subscriber calls Close.
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
}

// Subscription is a live handle on one topic. It is owned by exactly one
// consumer; Close is idempotent.
type Subscription struct {
	topic string
	ch    <-chan json.RawMessage

	once    sync.Once
	closeFn func()
}

// NewSubscription wraps a payload channel and a cancel function into a
// Subscription. Implementations of PubSub use this to build their return
// values; closeFn must cause ch to be closed and may be nil.
func NewSubscription(topic string, ch <-chan json.RawMessage, closeFn func()) *Subscription {
	return &Subscription{topic: topic, ch: ch, closeFn: closeFn}
}

// Topic returns the topic this subscription is attached to.
func (s *Subscription) Topic() string { return s.topic }

// C returns the payload channel. The channel is closed when the
// subscription ends, whichever side ends it.
func (s *Subscription) C() <-chan json.RawMessage { return s.ch }

// Close detaches the subscription from its topic and closes the payload
// channel. Safe to call multiple times and concurrently with Broadcast.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.closeFn != nil {
			s.closeFn()
		}
	})
}
