// Package live implements the session transport: one loop per WebSocket
// connection, bridging the client to a dynamic set of pub/sub topics.
//
// Inbound client frames become topic broadcasts; topic broadcasts (UI
// deltas computed by an external rendering engine) become frames pushed
// back to the client. The session loop owns the connection and a mapping
// from view identifier to a live delta subscription, multiplexes all of
// them in a single select, drives the mount handshake, and guarantees a
// best-effort "socket-disconnected" broadcast per live view on every
// disconnect path.
//
// # Lifecycle
//
// A session runs through three states: running (normal multiplexing),
// terminating (cleanup in progress) and closed. Transient decode errors
// keep the session running; transport errors and external cancellation
// drive it to terminating. Cleanup runs exactly once regardless of exit
// path.
//
// # Collaborators
//
// The transport contains no rendering logic. It consumes a pubsub.PubSub
// capability and agrees with the rendering engine on topic names via
// package topic.
package live
