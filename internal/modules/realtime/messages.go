package realtime

import (
	"time"

	"studiospace/internal/events"
)

const (
	MessageTypeReservation = "reservation"
	MessageTypePong        = "pong"
	MessageTypeError       = "error"
)

// ServerMessage is the envelope for everything written to a client.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ClientMessage is what a client may send; only "ping" is understood.
type ClientMessage struct {
	Type string `json:"type"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewReservationMessage(e events.Event) ServerMessage {
	return ServerMessage{Type: MessageTypeReservation, Data: e}
}

func NewPongMessage() ServerMessage {
	return ServerMessage{Type: MessageTypePong, Data: map[string]string{"time": time.Now().UTC().Format(time.RFC3339)}}
}

func NewErrorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: MessageTypeError, Data: errorPayload{Code: code, Message: message}}
}
