package live

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/liveview-go/liveview/pkg/pubsub"
)

// Handler upgrades HTTP requests to WebSocket connections and runs one
// session per connection. It is safe for concurrent use.
type Handler struct {
	pubsub   pubsub.PubSub
	config   *Config
	upgrader websocket.Upgrader
}

// NewHandler creates the WebSocket endpoint handler. cfg may be nil for
// defaults.
func NewHandler(ps pubsub.PubSub, cfg *Config) *Handler {
	cfg = cfg.withDefaults()

	return &Handler{
		pubsub: ps,
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// ServeHTTP upgrades the request and blocks until the session ends. The
// request context cancels the session, so server shutdown drains live
// connections through the normal cleanup path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.config.Logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(conn, h.pubsub, h.config)
	session.Run(r.Context())
}

// Routes returns a router exposing the live endpoint at GET /live.
func Routes(ps pubsub.PubSub, cfg *Config) chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/live", NewHandler(ps, cfg))
	return r
}
