package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOutboundEncode(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC().Truncate(time.Second)
	out := Outbound{
		Type: MsgChat,
		MessageEvent: MessageEvent{
			ID:     "m1",
			Sender: "alice",
			RoomID: "42",
			Body:   "hello world",
			SentAt: now,
		},
	}

	data, err := Encode(out)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"type", "sender", "room_id", "body", "sent_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected %s field in outbound frame", field)
		}
	}
}

func TestDecodeInbound(t *testing.T) {
	t.Parallel()
	f, err := DecodeInbound([]byte(`{"type":"chat","body":"hi"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Type != MsgChat {
		t.Errorf("type: got %q, want %q", f.Type, MsgChat)
	}
	if f.Body != "hi" {
		t.Errorf("body: got %q, want %q", f.Body, "hi")
	}
}

func TestDecodeInboundInvalidJSON(t *testing.T) {
	t.Parallel()
	if _, err := DecodeInbound([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
