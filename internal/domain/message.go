package domain

import (
	"encoding/json"
	"time"
)

// Frame types exchanged over a live connection.
const (
	MsgChat  = "chat"
	MsgError = "error"
)

// MessageEvent is a chat message as persisted and fanned out to a room.
// Immutable once created.
type MessageEvent struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"`
	RoomID string    `json:"room_id"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// Inbound is a frame received from a connected client. The room is fixed at
// connect time, so a chat frame only carries the body.
type Inbound struct {
	Type string `json:"type"`
	Body string `json:"body,omitempty"`
}

// Outbound wraps a MessageEvent for delivery to live connections.
type Outbound struct {
	Type string `json:"type"`
	MessageEvent
}

// ErrorFrame reports an error to the client.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode serializes a value to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeInbound deserializes JSON bytes into an Inbound frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var f Inbound
	err := json.Unmarshal(data, &f)
	return f, err
}
