package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/liveview-go/liveview/pkg/protocol"
	"github.com/liveview-go/liveview/pkg/pubsub"
	"github.com/liveview-go/liveview/pkg/topic"
)

const tracerName = "liveview"

// Session owns one WebSocket connection and the set of live delta
// subscriptions attached to it, keyed by view identifier. All session
// state is owned by the single goroutine running Run; nothing outside
// touches it.
type Session struct {
	id     string
	conn   *websocket.Conn
	pubsub pubsub.PubSub

	// subs maps view id -> live delta subscription. Touched only by the
	// Run goroutine.
	subs map[uuid.UUID]*pubsub.Subscription

	// deltas fans payloads from every subscription into the loop.
	deltas chan delta

	// done signals forwarder goroutines that the loop has exited.
	done      chan struct{}
	closeOnce sync.Once

	config  *Config
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// delta is one item on the fan-in channel: either a payload from a
// view's rendered stream, or an end-of-stream marker.
type delta struct {
	view    uuid.UUID
	payload json.RawMessage
	closed  bool
}

// inboundFrame is one raw message read off the connection.
type inboundFrame struct {
	messageType int
	data        []byte
}

// generateSessionID generates a random session id for logging.
func generateSessionID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// NewSession wraps an upgraded connection. The caller hands over
// exclusive ownership of conn; it is closed when Run returns.
func NewSession(conn *websocket.Conn, ps pubsub.PubSub, config *Config) *Session {
	config = config.withDefaults()
	id := generateSessionID()

	return &Session{
		id:      id,
		conn:    conn,
		pubsub:  ps,
		subs:    make(map[uuid.UUID]*pubsub.Subscription),
		deltas:  make(chan delta, config.DeltaBuffer),
		done:    make(chan struct{}),
		config:  config,
		logger:  config.Logger.With("session", id),
		metrics: config.Metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// ID returns the session's log identifier.
func (s *Session) ID() string { return s.id }

// Run drives the session until the connection fails, the client
// disconnects, or ctx is canceled. It blocks; the handler calls it once
// per connection. Cleanup (disconnect broadcasts, subscription and
// connection teardown) runs exactly once on every exit path.
func (s *Session) Run(ctx context.Context) {
	defer s.cleanup()

	s.metrics.SessionStarted()
	s.logger.Debug("session started")

	s.conn.SetReadLimit(s.config.MaxMessageSize)

	// Reader goroutine: pumps frames into a channel so the loop can
	// select over inbound traffic and subscription deltas together. The
	// channel closes on the first transport error; closing the
	// connection during cleanup unblocks the pending read.
	inbound := make(chan inboundFrame)
	go func() {
		defer close(inbound)
		for {
			messageType, data, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					s.metrics.ReadError()
					s.logger.Error("read error", "error", err)
				}
				return
			}
			select {
			case inbound <- inboundFrame{messageType: messageType, data: data}:
			case <-s.done:
				return
			}
		}
	}()

	// Go's select picks ready cases pseudo-randomly, so neither inbound
	// traffic nor the delta stream can starve the other.
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session canceled", "error", ctx.Err())
			return

		case frame, ok := <-inbound:
			if !ok {
				// Transport error or client close.
				return
			}
			s.metrics.FrameReceived()
			if err := s.handleFrame(ctx, frame); err != nil {
				s.logger.Error("session terminating", "error", err)
				return
			}

		case d := <-s.deltas:
			if d.closed {
				// The backend closed this view's stream; drop the
				// mapping entry silently.
				delete(s.subs, d.view)
				continue
			}
			if _, live := s.subs[d.view]; !live {
				// Stale payload from a forwarder racing its removal.
				continue
			}
			if err := s.send(d.view, protocol.TagRendered, d.payload); err != nil {
				s.logger.Error("session terminating", "error", err)
				return
			}
			s.metrics.DeltaDelivered()
		}
	}
}

// handleFrame decodes and dispatches one inbound frame. Decode failures
// are logged and dropped; only transport write errors (and external
// cancellation surfaced by dispatch) are returned, terminating the loop.
func (s *Session) handleFrame(ctx context.Context, frame inboundFrame) error {
	if frame.messageType != websocket.TextMessage {
		s.metrics.DecodeError()
		s.logger.Warn("dropping non-text frame", "type", frame.messageType)
		return nil
	}

	msg, err := protocol.DecodeMessage(frame.data)
	if err != nil {
		s.metrics.DecodeError()
		s.logger.Warn("dropping undecodable frame", "error", err)
		return nil
	}

	switch m := msg.(type) {
	case protocol.Mount:
		return s.mount(ctx, m)
	case protocol.Click:
		return s.clientEvent(ctx, m.ViewID, m.Event, m.Data)
	case protocol.Input:
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil
		}
		return s.clientEvent(ctx, m.ViewID, m.Event, value)
	default:
		s.logger.Warn("unhandled message", "type", fmt.Sprintf("%T", msg))
		return nil
	}
}

// mount runs the two-phase handshake for a view:
//
//  1. subscribe one-shot to the view's initial-render topic, broadcast
//     the mounted signal, and wait (bounded by MountTimeout) for exactly
//     one initial render;
//  2. only on success, open the persistent rendered subscription and
//     register it, then push the initial render to the client.
//
// The persistent subscription is opened strictly after the one-shot
// payload is consumed, so the initial render can never interleave with
// or be duplicated by the delta stream. Every failure short of a
// transport write error leaves the session running; the view simply
// never becomes live.
func (s *Session) mount(ctx context.Context, m protocol.Mount) error {
	ctx, span := s.tracer.Start(ctx, "live.mount",
		trace.WithAttributes(attribute.String("view.id", m.ViewID.String())))
	defer span.End()

	logger := s.logger.With("view", m.ViewID)

	if _, ok := s.subs[m.ViewID]; ok {
		s.metrics.MountResult(MountDuplicate)
		logger.Warn("duplicate mount rejected")
		span.SetStatus(codes.Error, "duplicate mount")
		return nil
	}

	initial, err := s.pubsub.Subscribe(ctx, topic.InitialRenderTopic(m.ViewID))
	if err != nil {
		s.metrics.MountResult(MountError)
		logger.Error("mount: initial-render subscribe failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "subscribe failed")
		return nil
	}
	defer initial.Close()

	if err := s.pubsub.Broadcast(ctx, topic.MountedTopic(m.ViewID), protocol.EmptyPayload); err != nil {
		s.metrics.MountResult(MountError)
		logger.Error("mount: mounted broadcast failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "broadcast failed")
		return nil
	}

	timer := time.NewTimer(s.config.MountTimeout)
	defer timer.Stop()

	var payload json.RawMessage
	select {
	case p, ok := <-initial.C():
		if !ok {
			s.metrics.MountResult(MountError)
			logger.Warn("mount: initial-render stream closed without a value")
			span.SetStatus(codes.Error, "stream closed")
			return nil
		}
		payload = p

	case <-timer.C:
		s.metrics.MountResult(MountTimeout)
		logger.Warn("mount: timed out waiting for initial render",
			"timeout", s.config.MountTimeout)
		span.SetStatus(codes.Error, "timeout")
		return nil

	case <-ctx.Done():
		span.SetStatus(codes.Error, "canceled")
		return ctx.Err()
	}

	rendered, err := s.pubsub.Subscribe(ctx, topic.RenderedTopic(m.ViewID))
	if err != nil {
		s.metrics.MountResult(MountError)
		logger.Error("mount: rendered subscribe failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "subscribe failed")
		return nil
	}

	s.subs[m.ViewID] = rendered
	s.watch(m.ViewID, rendered)

	if err := s.send(m.ViewID, protocol.TagInitialRender, payload); err != nil {
		return err
	}

	s.metrics.MountResult(MountOK)
	logger.Debug("view mounted")
	return nil
}

// clientEvent broadcasts a click or input event on the view's event
// topic. Broadcast failures are logged, not escalated: the client gets
// no reply either way and the session keeps running.
func (s *Session) clientEvent(ctx context.Context, viewID uuid.UUID, event string, payload json.RawMessage) error {
	ctx, span := s.tracer.Start(ctx, "live.event",
		trace.WithAttributes(
			attribute.String("view.id", viewID.String()),
			attribute.String("event.name", event)))
	defer span.End()

	eventTopic, err := topic.ForUserEvent(viewID, event)
	if err != nil {
		s.metrics.DecodeError()
		s.logger.Warn("dropping event with invalid name", "event", event, "error", err)
		span.SetStatus(codes.Error, "invalid event name")
		return nil
	}

	if payload == nil {
		payload = protocol.EmptyPayload
	}

	if err := s.pubsub.Broadcast(ctx, eventTopic, payload); err != nil {
		s.logger.Error("event broadcast failed", "topic", eventTopic, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "broadcast failed")
		return nil
	}

	s.metrics.BroadcastSent()
	return nil
}

// watch forwards a subscription's payloads onto the session's fan-in
// channel, then an end-of-stream marker when the backend closes it. The
// forwarder exits as soon as the loop is done, so closed sessions leak
// no goroutines.
func (s *Session) watch(viewID uuid.UUID, sub *pubsub.Subscription) {
	go func() {
		for payload := range sub.C() {
			select {
			case s.deltas <- delta{view: viewID, payload: payload}:
			case <-s.done:
				return
			}
		}
		select {
		case s.deltas <- delta{view: viewID, closed: true}:
		case <-s.done:
		}
	}()
}

// send encodes one outbound envelope and writes it as a text frame.
// Write failures are returned to the caller and terminate the session.
func (s *Session) send(viewID uuid.UUID, tag string, payload json.RawMessage) error {
	data, err := protocol.EncodeEnvelope(viewID, tag, payload)
	if err != nil {
		// Only possible with invalid JSON published on a topic; the
		// frame is undeliverable but the session can keep going.
		s.logger.Error("dropping unencodable payload", "view", viewID, "error", err)
		return nil
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.metrics.WriteError()
		return err
	}

	s.metrics.FrameSent()
	return nil
}

// cleanup is the session's single termination path. For every view still
// in the mapping it broadcasts socket-disconnected (best-effort, errors
// ignored), closes all subscriptions, and releases the connection. The
// rendering engine relies on these broadcasts to free per-view
// resources.
func (s *Session) cleanup() {
	s.closeOnce.Do(func() {
		close(s.done)

		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()

		for viewID, sub := range s.subs {
			if err := s.pubsub.Broadcast(ctx, topic.SocketDisconnectedTopic(viewID), protocol.EmptyPayload); err != nil {
				s.logger.Debug("disconnect broadcast failed", "view", viewID, "error", err)
			} else {
				s.metrics.CleanupBroadcast()
			}
			sub.Close()
		}
		clear(s.subs)

		s.conn.Close()
		s.metrics.SessionClosed()
		s.logger.Debug("session closed")
	})
}
