package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultSubscriberBuffer is the per-subscriber channel buffer used by
// Memory when no explicit size is configured.
const DefaultSubscriberBuffer = 64

// Memory is an in-process PubSub. Topics exist implicitly: broadcasting
// to a topic with no subscribers is a no-op, subscribing to a topic
// creates it.
//
// Each subscriber gets its own buffered channel. Broadcasts never block:
// a subscriber that falls more than its buffer behind loses the payload,
// which is counted and logged. Per-topic ordering is preserved for
// everything that is delivered because sends happen under the topic lock
// in broadcast order.
type Memory struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySub]struct{}

	buffer  int
	logger  *slog.Logger
	dropped atomic.Uint64
}

type memorySub struct {
	ch chan json.RawMessage
}

// MemoryOption configures a Memory instance.
type MemoryOption func(*Memory)

// WithBuffer sets the per-subscriber channel buffer size.
func WithBuffer(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.buffer = n
		}
	}
}

// WithLogger sets the logger used for drop warnings.
func WithLogger(logger *slog.Logger) MemoryOption {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMemory creates an in-process PubSub.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		topics: make(map[string]map[*memorySub]struct{}),
		buffer: DefaultSubscriberBuffer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Broadcast publishes payload to every current subscriber of topic.
func (m *Memory) Broadcast(ctx context.Context, topic string, payload json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for sub := range m.topics[topic] {
		select {
		case sub.ch <- payload:
		default:
			m.dropped.Add(1)
			m.logger.Warn("pubsub: subscriber stalled, payload dropped",
				"topic", topic,
				"buffer", m.buffer)
		}
	}
	return nil
}

// Subscribe registers a new subscriber on topic.
func (m *Memory) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &memorySub{ch: make(chan json.RawMessage, m.buffer)}

	m.mu.Lock()
	set, ok := m.topics[topic]
	if !ok {
		set = make(map[*memorySub]struct{})
		m.topics[topic] = set
	}
	set[sub] = struct{}{}
	m.mu.Unlock()

	closeFn := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if set, ok := m.topics[topic]; ok {
			if _, present := set[sub]; present {
				delete(set, sub)
				close(sub.ch)
				if len(set) == 0 {
					delete(m.topics, topic)
				}
			}
		}
	}

	return NewSubscription(topic, sub.ch, closeFn), nil
}

// CloseTopic ends every current subscription on topic. Subscribers see
// their channel close, as if the producer went away.
func (m *Memory) CloseTopic(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.topics[topic] {
		close(sub.ch)
	}
	delete(m.topics, topic)
}

// Dropped returns the number of payloads discarded because a subscriber's
// buffer was full.
func (m *Memory) Dropped() uint64 {
	return m.dropped.Load()
}

// Subscribers returns the current subscriber count for topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.topics[topic])
}
