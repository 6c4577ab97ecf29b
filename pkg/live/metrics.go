package live

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mount handshake outcomes, used as the "result" label value.
const (
	MountOK        = "ok"
	MountDuplicate = "duplicate"
	MountTimeout   = "timeout"
	MountError     = "error"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "liveview").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the Prometheus instruments for the session transport.
// All methods are safe on a nil receiver, which disables instrumentation.
type Metrics struct {
	sessionsActive  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	framesReceived  prometheus.Counter
	framesSent      prometheus.Counter
	decodeErrors    prometheus.Counter
	broadcastsTotal prometheus.Counter
	deltasDelivered prometheus.Counter
	mountsTotal     *prometheus.CounterVec
	cleanupsTotal   prometheus.Counter
	writeErrors     prometheus.Counter
	readErrors      prometheus.Counter
}

// NewMetrics creates and registers the transport metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "liveview",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_active",
			Help:        "Number of currently connected sessions",
			ConstLabels: config.ConstLabels,
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_total",
			Help:        "Total number of sessions accepted",
			ConstLabels: config.ConstLabels,
		}),
		framesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_received_total",
			Help:        "Total inbound WebSocket frames",
			ConstLabels: config.ConstLabels,
		}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_sent_total",
			Help:        "Total outbound WebSocket frames",
			ConstLabels: config.ConstLabels,
		}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "decode_errors_total",
			Help:        "Total inbound frames dropped due to decode errors",
			ConstLabels: config.ConstLabels,
		}),
		broadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "broadcasts_total",
			Help:        "Total client events broadcast to pub/sub topics",
			ConstLabels: config.ConstLabels,
		}),
		deltasDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "deltas_delivered_total",
			Help:        "Total render deltas pushed to clients",
			ConstLabels: config.ConstLabels,
		}),
		mountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "mounts_total",
			Help:        "Total mount handshakes by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),
		cleanupsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "disconnect_cleanups_total",
			Help:        "Total disconnect cleanup broadcasts",
			ConstLabels: config.ConstLabels,
		}),
		writeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "write_errors_total",
			Help:        "Total WebSocket write failures",
			ConstLabels: config.ConstLabels,
		}),
		readErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "read_errors_total",
			Help:        "Total WebSocket read failures",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// SessionStarted records an accepted session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
	m.sessionsActive.Inc()
}

// SessionClosed records a terminated session.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// FrameReceived records an inbound frame.
func (m *Metrics) FrameReceived() {
	if m == nil {
		return
	}
	m.framesReceived.Inc()
}

// FrameSent records an outbound frame.
func (m *Metrics) FrameSent() {
	if m == nil {
		return
	}
	m.framesSent.Inc()
}

// DecodeError records a dropped inbound frame.
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

// BroadcastSent records a client event forwarded to pub/sub.
func (m *Metrics) BroadcastSent() {
	if m == nil {
		return
	}
	m.broadcastsTotal.Inc()
}

// DeltaDelivered records a render delta pushed to the client.
func (m *Metrics) DeltaDelivered() {
	if m == nil {
		return
	}
	m.deltasDelivered.Inc()
}

// MountResult records the outcome of a mount handshake.
func (m *Metrics) MountResult(result string) {
	if m == nil {
		return
	}
	m.mountsTotal.WithLabelValues(result).Inc()
}

// CleanupBroadcast records a disconnect cleanup broadcast.
func (m *Metrics) CleanupBroadcast() {
	if m == nil {
		return
	}
	m.cleanupsTotal.Inc()
}

// WriteError records a WebSocket write failure.
func (m *Metrics) WriteError() {
	if m == nil {
		return
	}
	m.writeErrors.Inc()
}

// ReadError records a WebSocket read failure.
func (m *Metrics) ReadError() {
	if m == nil {
		return
	}
	m.readErrors.Inc()
}
