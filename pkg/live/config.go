package live

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds configuration for the WebSocket handler and its sessions.
type Config struct {
	// WriteTimeout is the maximum time to wait when pushing a frame to
	// the client. Default: 10 seconds.
	WriteTimeout time.Duration

	// MountTimeout bounds the wait for the initial render during the
	// mount handshake. On expiry the mount fails and the session keeps
	// running. Default: 10 seconds.
	MountTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket
	// message. Default: 64KB.
	MaxMessageSize int64

	// DeltaBuffer is the capacity of the channel that fans deltas from
	// all of a session's subscriptions into its loop. Default: 64.
	DeltaBuffer int

	// ReadBufferSize is the WebSocket read buffer size. Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size. Default: 4096.
	WriteBufferSize int

	// CheckOrigin validates the request origin during the upgrade.
	// Default: rejects cross-origin requests (gorilla's default).
	CheckOrigin func(r *http.Request) bool

	// Logger is the base logger; each session derives a child logger
	// carrying its session id. Default: slog.Default().
	Logger *slog.Logger

	// Metrics instruments sessions. Nil disables instrumentation.
	Metrics *Metrics
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WriteTimeout:    10 * time.Second,
		MountTimeout:    10 * time.Second,
		MaxMessageSize:  64 * 1024,
		DeltaBuffer:     64,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig and returns a
// usable copy. Nil yields the full defaults.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		c = defaults
	}
	out := *c
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.MountTimeout <= 0 {
		out.MountTimeout = defaults.MountTimeout
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.DeltaBuffer <= 0 {
		out.DeltaBuffer = defaults.DeltaBuffer
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
