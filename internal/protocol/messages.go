package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Action selects which vendor call the proxy performs.
type Action string

const (
	ActionCreateWebCall   Action = "create-web-call"
	ActionCreatePhoneCall Action = "create-phone-call"
	ActionListAgents      Action = "list-agents"
)

// StatusError is the fixed status value of the proxy error envelope.
const StatusError = "error"

// ProxyRequest is the JSON body accepted by the call proxy.
type ProxyRequest struct {
	Action      Action `json:"action"`
	AgentID     string `json:"agent_id,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// ProxyError is returned by the proxy with HTTP 500 on any failure.
type ProxyError struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// ProxyResult is the subset of a relayed vendor response the widget interprets.
// Everything else in the body is opaque.
type ProxyResult struct {
	AccessToken string `json:"access_token,omitempty"`
	CallID      string `json:"call_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Utterance is one transcript entry as emitted by the vendor.
type Utterance struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EventType identifies realtime vendor events.
type EventType string

const (
	EventCallStarted EventType = "call_started"
	EventCallEnded   EventType = "call_ended"
	EventUpdate      EventType = "update"
	EventError       EventType = "error"
)

var ErrUnsupportedEvent = errors.New("unsupported event type")

// CallEvent is a lifecycle or transcript event from the vendor session.
// Transcript is nil when an update carries no transcript field.
type CallEvent struct {
	Type       EventType   `json:"event_type"`
	Transcript []Utterance `json:"transcript,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type eventEnvelope struct {
	Type       EventType       `json:"event_type"`
	Transcript json.RawMessage `json:"transcript"`
	Error      json.RawMessage `json:"error"`
}

// ParseCallEvent decodes a single vendor event frame.
func ParseCallEvent(raw []byte) (CallEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return CallEvent{}, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case EventCallStarted, EventCallEnded:
		return CallEvent{Type: env.Type}, nil
	case EventUpdate:
		ev := CallEvent{Type: EventUpdate}
		if len(env.Transcript) == 0 || string(env.Transcript) == "null" {
			return ev, nil
		}
		var transcript []Utterance
		if err := json.Unmarshal(env.Transcript, &transcript); err != nil {
			return CallEvent{}, fmt.Errorf("invalid update transcript: %w", err)
		}
		if transcript == nil {
			transcript = []Utterance{}
		}
		ev.Transcript = transcript
		return ev, nil
	case EventError:
		return CallEvent{Type: EventError, Error: errorText(env.Error)}, nil
	default:
		return CallEvent{}, ErrUnsupportedEvent
	}
}

// errorText accepts either a bare string or an object with a message field.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}
