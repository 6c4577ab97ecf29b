package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Outbound message tags.
const (
	// TagInitialRender marks the one full render sent when a mount
	// handshake completes.
	TagInitialRender = "i"

	// TagRendered marks an incremental delta for an already-mounted view.
	TagRendered = "r"
)

// EmptyPayload is the marker used for broadcasts that carry no data: the
// mount signal, clicks without extra data, and disconnect cleanup.
var EmptyPayload = json.RawMessage("null")

// EncodeEnvelope serializes an outbound (view id, tag, payload) triple
// into the 3-element wire array. A nil payload encodes as EmptyPayload.
func EncodeEnvelope(id uuid.UUID, tag string, payload json.RawMessage) ([]byte, error) {
	if payload == nil {
		payload = EmptyPayload
	}
	data, err := json.Marshal([3]any{id.String(), tag, payload})
	if err != nil {
		return nil, fmt.Errorf("protocol: encode envelope: %w", err)
	}
	return data, nil
}
