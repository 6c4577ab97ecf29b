package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

var testID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func frame(tag string, payload string) []byte {
	return []byte(fmt.Sprintf(`["%s", %q, %s]`, testID, tag, payload))
}

func TestDecodeMessage_Mount(t *testing.T) {
	msg, err := DecodeMessage(frame(TagMount, `null`))
	if err != nil {
		t.Fatalf("DecodeMessage() error: %v", err)
	}
	m, ok := msg.(Mount)
	if !ok {
		t.Fatalf("DecodeMessage() = %T, want Mount", msg)
	}
	if m.ViewID != testID {
		t.Errorf("ViewID = %s, want %s", m.ViewID, testID)
	}
}

func TestDecodeMessage_MountIgnoresPayload(t *testing.T) {
	// Mount payload is explicitly ignored, even garbage shapes.
	if _, err := DecodeMessage(frame(TagMount, `{"anything": [1,2,3]}`)); err != nil {
		t.Fatalf("DecodeMessage() error: %v", err)
	}
}

func TestDecodeMessage_Click(t *testing.T) {
	msg, err := DecodeMessage(frame(TagClick, `{"e":"inc","d":{"n":1}}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error: %v", err)
	}
	c, ok := msg.(Click)
	if !ok {
		t.Fatalf("DecodeMessage() = %T, want Click", msg)
	}
	if c.Event != "inc" {
		t.Errorf("Event = %q, want %q", c.Event, "inc")
	}
	if string(c.Data) != `{"n":1}` {
		t.Errorf("Data = %s, want %s", c.Data, `{"n":1}`)
	}
}

func TestDecodeMessage_ClickWithoutData(t *testing.T) {
	msg, err := DecodeMessage(frame(TagClick, `{"e":"inc"}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error: %v", err)
	}
	c := msg.(Click)
	if c.Data != nil {
		t.Errorf("Data = %s, want nil", c.Data)
	}
}

func TestDecodeMessage_Input(t *testing.T) {
	msg, err := DecodeMessage(frame(TagInput, `{"e":"name","v":"abc"}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error: %v", err)
	}
	in, ok := msg.(Input)
	if !ok {
		t.Fatalf("DecodeMessage() = %T, want Input", msg)
	}
	if in.Event != "name" || in.Value != "abc" {
		t.Errorf("got (%q, %q), want (%q, %q)", in.Event, in.Value, "name", "abc")
	}
}

func TestDecodeMessage_InputEmptyValue(t *testing.T) {
	// An empty string is a legitimate input value (cleared field).
	msg, err := DecodeMessage(frame(TagInput, `{"e":"name","v":""}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error: %v", err)
	}
	if v := msg.(Input).Value; v != "" {
		t.Errorf("Value = %q, want empty", v)
	}
}

func TestDecodeMessage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"not json", `{{{`, ErrMalformedEnvelope},
		{"not an array", `{"liveview_id":"x"}`, ErrMalformedEnvelope},
		{"wrong arity", fmt.Sprintf(`["%s","%s"]`, testID, TagMount), ErrMalformedEnvelope},
		{"non-string tag", fmt.Sprintf(`["%s", 7, null]`, testID), ErrMalformedEnvelope},
		{"bad view id", `["not-a-uuid","axum/mount-liveview",null]`, ErrBadViewID},
		{"numeric view id", `[42,"axum/mount-liveview",null]`, ErrBadViewID},
		{"click wrong shape", string(frame(TagClick, `"just a string"`)), ErrBadPayload},
		{"click missing event", string(frame(TagClick, `{"d":{}}`)), ErrBadPayload},
		{"input missing value", string(frame(TagInput, `{"e":"name"}`)), ErrBadPayload},
		{"input non-string value", string(frame(TagInput, `{"e":"name","v":7}`)), ErrBadPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeMessage_UnknownTag(t *testing.T) {
	_, err := DecodeMessage(frame("axum/live-hover", `null`))
	var ute *UnknownTagError
	if !errors.As(err, &ute) {
		t.Fatalf("DecodeMessage() error = %v, want *UnknownTagError", err)
	}
	if ute.Tag != "axum/live-hover" {
		t.Errorf("Tag = %q, want %q", ute.Tag, "axum/live-hover")
	}
}

func TestEncodeEnvelope(t *testing.T) {
	data, err := EncodeEnvelope(testID, TagRendered, json.RawMessage(`{"0":"hi"}`))
	if err != nil {
		t.Fatalf("EncodeEnvelope() error: %v", err)
	}

	var envelope [3]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("envelope is not a 3-element array: %v", err)
	}
	if string(envelope[0]) != fmt.Sprintf("%q", testID) {
		t.Errorf("view id = %s", envelope[0])
	}
	if string(envelope[1]) != `"r"` {
		t.Errorf("tag = %s, want %q", envelope[1], TagRendered)
	}
	if string(envelope[2]) != `{"0":"hi"}` {
		t.Errorf("payload = %s, want %s", envelope[2], `{"0":"hi"}`)
	}
}

func TestEncodeEnvelope_NilPayload(t *testing.T) {
	data, err := EncodeEnvelope(testID, TagInitialRender, nil)
	if err != nil {
		t.Fatalf("EncodeEnvelope() error: %v", err)
	}
	want := fmt.Sprintf(`["%s","i",null]`, testID)
	if string(data) != want {
		t.Errorf("EncodeEnvelope() = %s, want %s", data, want)
	}
}
