// Package types holds the data model shared across gateway components.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Direction marks who produced a transcript entry.
type Direction string

const (
	DirectionUser Direction = "user"
	DirectionBot  Direction = "bot"
)

// HistoryMessage is one transcript entry for a client. Media payloads are
// not stored inline; they are written to blob storage and referenced by
// URL.
type HistoryMessage struct {
	ID        uuid.UUID `json:"id"`
	ClientID  string    `json:"client_id"`
	Direction Direction `json:"direction"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	AudioURL  string    `json:"audio_url,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	VideoURL  string    `json:"video_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handshake carries the connection parameters a client supplies as query
// parameters when dialing the gateway. Both fields are required.
type Handshake struct {
	ClientID string
	TimeZone string
}

// CloseReason classifies why the gateway terminated a connection before
// or during a session.
type CloseReason string

const (
	CloseInvalidParams      CloseReason = "invalid query parameters"
	CloseTooManyConnections CloseReason = "too many connections"
	CloseUnexpectedFault    CloseReason = "unexpected error"
)
