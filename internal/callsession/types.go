package callsession

import (
	"context"
	"errors"

	"github.com/ent0n29/shakti/internal/protocol"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusCalling    Status = "calling"
	StatusConnected  Status = "connected"
	StatusEnded      Status = "ended"
)

type Mode string

const (
	ModeWeb   Mode = "web"
	ModePhone Mode = "phone"
)

var (
	ErrInvalidTransition  = errors.New("invalid call status transition")
	ErrCallInProgress     = errors.New("a call is already in progress")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrMicrophoneDenied   = errors.New("microphone permission denied")
	ErrNoActiveCall       = errors.New("no active call")
	ErrCallCancelled      = errors.New("call cancelled before it connected")
	ErrInvalidMode        = errors.New("invalid call mode")
	ErrClosed             = errors.New("call widget closed")
)

// Entry is one rendered transcript line.
type Entry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Snapshot is a copy of the widget state at one instant.
type Snapshot struct {
	Status         Status  `json:"status"`
	Mode           Mode    `json:"mode"`
	Muted          bool    `json:"muted"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	Transcript     []Entry `json:"transcript"`
	PhoneNumber    string  `json:"phone_number,omitempty"`
}

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient, user-facing message.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Proxy performs one request against the call proxy.
type Proxy interface {
	Invoke(ctx context.Context, req protocol.ProxyRequest) (protocol.ProxyResult, error)
}

// Microphone asks the user for audio capture permission.
type Microphone interface {
	Request(ctx context.Context) error
}

type MicrophoneFunc func(ctx context.Context) error

func (f MicrophoneFunc) Request(ctx context.Context) error { return f(ctx) }

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func entriesFrom(transcript []protocol.Utterance) []Entry {
	out := make([]Entry, 0, len(transcript))
	for _, u := range transcript {
		out = append(out, Entry{Role: u.Role, Text: u.Content})
	}
	return out
}
