// Package protocol implements the JSON wire protocol between the thin
// client and the session transport.
//
// # Wire Format
//
// Every frame, in both directions, is a UTF-8 text frame carrying a
// 3-element JSON array:
//
//	[view_id, tag, payload]
//
// view_id is the canonical string form of the 128-bit view identifier,
// tag selects the message kind, and payload is tag-specific JSON.
//
// # Inbound Tags (client → server)
//
//   - "axum/mount-liveview": attach to a view; payload ignored
//   - "axum/live-click": payload {"e": name, "d": optional data}
//   - "axum/live-input": payload {"e": name, "v": value}
//
// The inbound tag strings are part of the published client contract and
// must not change.
//
// # Outbound Tags (server → client)
//
//   - "i": the full initial render of a view, sent once per mount
//   - "r": an incremental delta for a mounted view
//
// Decode failures are reported with typed errors so callers can log the
// offending tag; they are never fatal to a connection.
package protocol
