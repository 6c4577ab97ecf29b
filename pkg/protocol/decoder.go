package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Inbound message tags. These are the published client contract.
const (
	TagMount = "axum/mount-liveview"
	TagClick = "axum/live-click"
	TagInput = "axum/live-input"
)

// Common decoding errors.
var (
	ErrMalformedEnvelope = errors.New("protocol: malformed envelope")
	ErrBadViewID         = errors.New("protocol: invalid view id")
	ErrBadPayload        = errors.New("protocol: payload shape mismatch")
)

// UnknownTagError is returned when the envelope tag is not one of the
// recognized inbound tags.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("protocol: unknown message tag %q", e.Tag)
}

// Message is a decoded inbound command. Exactly one of Mount, Click or
// Input. Messages are transient: constructed per frame and consumed
// immediately.
type Message interface {
	// View returns the view identifier the command targets.
	View() uuid.UUID
}

// Mount requests attachment to a view. The envelope payload is ignored.
type Mount struct {
	ViewID uuid.UUID
}

// Click is a client click event. Data is the optional extra payload
// carried under "d"; nil when the client sent none.
type Click struct {
	ViewID uuid.UUID
	Event  string
	Data   json.RawMessage
}

// Input is a client input event carrying the current value of the
// originating control.
type Input struct {
	ViewID uuid.UUID
	Event  string
	Value  string
}

func (m Mount) View() uuid.UUID { return m.ViewID }
func (c Click) View() uuid.UUID { return c.ViewID }
func (i Input) View() uuid.UUID { return i.ViewID }

// clickPayload mirrors the "axum/live-click" payload shape.
type clickPayload struct {
	Event string          `json:"e"`
	Data  json.RawMessage `json:"d,omitempty"`
}

// inputPayload mirrors the "axum/live-input" payload shape.
type inputPayload struct {
	Event string  `json:"e"`
	Value *string `json:"v"`
}

// DecodeMessage parses one inbound text frame into a Message.
//
// Errors are classified so the session loop can log and drop the frame
// without terminating: ErrMalformedEnvelope for structurally invalid
// frames, ErrBadViewID for an unparseable view identifier,
// *UnknownTagError for an unrecognized tag, and ErrBadPayload (wrapped)
// when the payload does not match the tag's shape.
func DecodeMessage(data []byte) (Message, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(envelope) != 3 {
		return nil, fmt.Errorf("%w: want 3 elements, got %d", ErrMalformedEnvelope, len(envelope))
	}

	var rawID string
	if err := json.Unmarshal(envelope[0], &rawID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadViewID, err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadViewID, rawID)
	}

	var tag string
	if err := json.Unmarshal(envelope[1], &tag); err != nil {
		return nil, fmt.Errorf("%w: non-string tag", ErrMalformedEnvelope)
	}

	payload := envelope[2]

	switch tag {
	case TagMount:
		return Mount{ViewID: id}, nil

	case TagClick:
		var p clickPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: click: %v", ErrBadPayload, err)
		}
		if p.Event == "" {
			return nil, fmt.Errorf("%w: click: missing event name", ErrBadPayload)
		}
		return Click{ViewID: id, Event: p.Event, Data: p.Data}, nil

	case TagInput:
		var p inputPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: input: %v", ErrBadPayload, err)
		}
		if p.Event == "" {
			return nil, fmt.Errorf("%w: input: missing event name", ErrBadPayload)
		}
		if p.Value == nil {
			return nil, fmt.Errorf("%w: input: missing value", ErrBadPayload)
		}
		return Input{ViewID: id, Event: p.Event, Value: *p.Value}, nil

	default:
		return nil, &UnknownTagError{Tag: tag}
	}
}
