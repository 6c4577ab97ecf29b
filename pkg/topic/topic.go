// Package topic defines the pub/sub topic naming contract shared by the
// session transport and the rendering engine.
//
// Every topic is scoped to a single view identifier. Both sides derive
// topic strings independently, so the derivation here is a versioned
// contract: it must stay stable across releases and across processes.
// The wire form is "<view-id>:<name>" where the view id is the canonical
// lowercase UUID string.
package topic

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Reserved lifecycle names. These are owned by the framework; user-defined
// event names must not shadow them (see ForUserEvent).
const (
	// Mounted is broadcast by the session when a client mounts a view,
	// signalling the rendering engine to compute the initial render.
	Mounted = "mounted"

	// InitialRender carries exactly one payload per mount: the full
	// first render of the view.
	InitialRender = "initial-render"

	// Rendered carries the unbounded stream of incremental deltas for a
	// live view.
	Rendered = "rendered"

	// SocketDisconnected is broadcast once per live view when the owning
	// session terminates. The rendering engine releases per-view
	// resources on receipt.
	SocketDisconnected = "socket-disconnected"
)

// Topic derivation errors.
var (
	ErrReservedName = errors.New("topic: event name is reserved")
	ErrEmptyName    = errors.New("topic: event name is empty")
)

// reserved is the set of lifecycle names user events may not use.
var reserved = map[string]struct{}{
	Mounted:            {},
	InitialRender:      {},
	Rendered:           {},
	SocketDisconnected: {},
}

// ForView derives the topic string for a lifecycle name scoped to a view.
// The derivation is pure and injective for distinct (id, name) pairs: the
// UUID prefix has fixed length and cannot contain ':', so no two distinct
// view ids can produce colliding topics.
func ForView(id uuid.UUID, name string) string {
	return fmt.Sprintf("%s:%s", id, name)
}

// ForUserEvent derives the topic string for a user-defined event name
// scoped to a view. Unlike ForView it validates the name: empty names and
// names shadowing a reserved lifecycle name are rejected, so user events
// can never publish onto a lifecycle topic.
func ForUserEvent(id uuid.UUID, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if _, ok := reserved[name]; ok {
		return "", fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return ForView(id, name), nil
}

// MountedTopic returns the mounted lifecycle topic for a view.
func MountedTopic(id uuid.UUID) string { return ForView(id, Mounted) }

// InitialRenderTopic returns the initial-render lifecycle topic for a view.
func InitialRenderTopic(id uuid.UUID) string { return ForView(id, InitialRender) }

// RenderedTopic returns the rendered lifecycle topic for a view.
func RenderedTopic(id uuid.UUID) string { return ForView(id, Rendered) }

// SocketDisconnectedTopic returns the disconnect lifecycle topic for a view.
func SocketDisconnectedTopic(id uuid.UUID) string { return ForView(id, SocketDisconnected) }
