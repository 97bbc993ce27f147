package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCallEventUpdateWithTranscript(t *testing.T) {
	raw := []byte(`{"event_type":"update","transcript":[{"role":"agent","content":"Hello"},{"role":"user","content":"Hi"}]}`)
	ev, err := ParseCallEvent(raw)
	if err != nil {
		t.Fatalf("ParseCallEvent() error = %v", err)
	}
	if ev.Type != EventUpdate {
		t.Fatalf("Type = %q, want %q", ev.Type, EventUpdate)
	}
	if len(ev.Transcript) != 2 || ev.Transcript[0].Role != "agent" || ev.Transcript[1].Content != "Hi" {
		t.Fatalf("unexpected transcript: %+v", ev.Transcript)
	}
}

func TestParseCallEventUpdateWithoutTranscript(t *testing.T) {
	ev, err := ParseCallEvent([]byte(`{"event_type":"update","turntaking":"agent_turn"}`))
	if err != nil {
		t.Fatalf("ParseCallEvent() error = %v", err)
	}
	if ev.Transcript != nil {
		t.Fatalf("Transcript = %+v, want nil", ev.Transcript)
	}
}

func TestParseCallEventUpdateWithEmptyTranscript(t *testing.T) {
	ev, err := ParseCallEvent([]byte(`{"event_type":"update","transcript":[]}`))
	if err != nil {
		t.Fatalf("ParseCallEvent() error = %v", err)
	}
	if ev.Transcript == nil || len(ev.Transcript) != 0 {
		t.Fatalf("Transcript = %#v, want empty non-nil", ev.Transcript)
	}
}

func TestParseCallEventError(t *testing.T) {
	ev, err := ParseCallEvent([]byte(`{"event_type":"error","error":{"message":"socket closed"}}`))
	if err != nil {
		t.Fatalf("ParseCallEvent() error = %v", err)
	}
	if ev.Type != EventError || ev.Error != "socket closed" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	ev, err = ParseCallEvent([]byte(`{"event_type":"error","error":"boom"}`))
	if err != nil {
		t.Fatalf("ParseCallEvent() error = %v", err)
	}
	if ev.Error != "boom" {
		t.Fatalf("Error = %q, want %q", ev.Error, "boom")
	}
}

func TestParseCallEventRejectsUnknownType(t *testing.T) {
	_, err := ParseCallEvent([]byte(`{"event_type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("error = %v, want ErrUnsupportedEvent", err)
	}
}

func TestParseCallEventRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseCallEvent([]byte(`{not-json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestProxyRequestOmitsEmptyPhoneNumber(t *testing.T) {
	body, err := json.Marshal(ProxyRequest{Action: ActionCreateWebCall, AgentID: "agent_1"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(body), `{"action":"create-web-call","agent_id":"agent_1"}`; got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func BenchmarkParseCallEventUpdate(b *testing.B) {
	raw := []byte(`{"event_type":"update","transcript":[{"role":"agent","content":"Hello there"},{"role":"user","content":"Hi"}]}`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev, err := ParseCallEvent(raw)
		if err != nil {
			b.Fatalf("ParseCallEvent() error = %v", err)
		}
		if ev.Type != EventUpdate {
			b.Fatalf("Type = %q, want update", ev.Type)
		}
	}
}
