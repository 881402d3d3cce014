// Package protocol implements the gateway's binary wire format.
//
// Both framings are versionless and big-endian. A frame always starts with
// a 16-byte message id followed by a single kind byte; everything after
// that depends on the kind.
package protocol

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// RequestKind discriminates the payload of an inbound frame.
type RequestKind byte

const (
	RequestText  RequestKind = 0
	RequestAudio RequestKind = 1
	RequestVideo RequestKind = 2
)

// String returns a human-readable name for logging and error messages.
func (k RequestKind) String() string {
	switch k {
	case RequestText:
		return "text"
	case RequestAudio:
		return "audio"
	case RequestVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Request is one decoded inbound message. Exactly one of Text, Audio and
// Video is populated, selected by Kind.
type Request struct {
	MessageID uuid.UUID
	Kind      RequestKind
	Text      string
	Audio     []byte
	Video     []byte
}

// headerLen is the message id plus the kind byte, common to both framings.
const headerLen = 17

// Encode serializes the request as message_id(16) || kind(1) || payload.
func (r *Request) Encode() ([]byte, error) {
	var payload []byte
	switch r.Kind {
	case RequestText:
		payload = []byte(r.Text)
	case RequestAudio:
		payload = r.Audio
	case RequestVideo:
		payload = r.Video
	default:
		return nil, ErrUnknownRequestKind
	}

	buf := make([]byte, 0, headerLen+len(payload))
	buf = append(buf, r.MessageID[:]...)
	buf = append(buf, byte(r.Kind))
	buf = append(buf, payload...)
	return buf, nil
}

// DecodeRequest parses an inbound frame. The payload interpretation is
// selected by the kind byte; a TEXT payload must be valid UTF-8.
func DecodeRequest(data []byte) (*Request, error) {
	if len(data) < headerLen {
		return nil, ErrFrameTooShort
	}

	var id uuid.UUID
	copy(id[:], data[:16])
	kind := RequestKind(data[16])
	payload := data[headerLen:]

	req := &Request{MessageID: id, Kind: kind}
	switch kind {
	case RequestText:
		if !utf8.Valid(payload) {
			return nil, ErrInvalidText
		}
		req.Text = string(payload)
	case RequestAudio:
		req.Audio = append([]byte(nil), payload...)
	case RequestVideo:
		req.Video = append([]byte(nil), payload...)
	default:
		return nil, ErrUnknownRequestKind
	}
	return req, nil
}
