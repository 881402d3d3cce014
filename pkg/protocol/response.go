package protocol

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ResponseKind discriminates the layout of an outbound frame.
type ResponseKind byte

const (
	ResponseText           ResponseKind = 0
	ResponseTextAudio      ResponseKind = 1
	ResponseTextAudioImage ResponseKind = 2
	ResponseError          ResponseKind = 3
)

// String returns a human-readable name for logging and error messages.
func (k ResponseKind) String() string {
	switch k {
	case ResponseText:
		return "text"
	case ResponseTextAudio:
		return "text_audio"
	case ResponseTextAudioImage:
		return "text_audio_image"
	case ResponseError:
		return "error"
	default:
		return "unknown"
	}
}

// MaxFieldBytes is the default ceiling for each of the text, audio and
// image fields. The wire format itself allows up to 4 GiB per length
// field; the ceiling is an operational limit, not a framing one.
const MaxFieldBytes = 1 << 20

// Response is one outbound message. MessageID is generated fresh for
// every reply, never copied from the request it answers.
//
// Layout invariants: an ERROR response carries only ErrorMessage; a TEXT
// response carries only Text; TEXT_AUDIO adds Audio; TEXT_AUDIO_IMAGE
// adds Image.
type Response struct {
	MessageID    uuid.UUID
	Kind         ResponseKind
	Text         string
	Audio        []byte
	Image        []byte
	ErrorMessage string
}

// NewErrorResponse builds an ERROR response with a fresh message id.
func NewErrorResponse(message string) *Response {
	return &Response{
		MessageID:    uuid.New(),
		Kind:         ResponseError,
		ErrorMessage: message,
	}
}

// Encode serializes the response with the default field ceiling.
func (r *Response) Encode() ([]byte, error) {
	return r.EncodeWithLimit(MaxFieldBytes)
}

// EncodeWithLimit serializes the response, rejecting any text, audio or
// image field larger than maxField bytes. On rejection no bytes are
// produced.
//
// Non-error layout:
//
//	message_id(16) || kind(1) || text_len(4) || audio_len(4) || text || audio || image
//
// The image length is implicit: whatever remains after text and audio.
// Error layout omits the length fields entirely:
//
//	message_id(16) || kind(1) || error_message
func (r *Response) EncodeWithLimit(maxField int) ([]byte, error) {
	if err := r.validateShape(); err != nil {
		return nil, err
	}

	if r.Kind == ResponseError {
		msg := []byte(r.ErrorMessage)
		if len(msg) > maxField {
			return nil, ErrPayloadTooLarge
		}
		buf := make([]byte, 0, headerLen+len(msg))
		buf = append(buf, r.MessageID[:]...)
		buf = append(buf, byte(r.Kind))
		buf = append(buf, msg...)
		return buf, nil
	}

	text := []byte(r.Text)
	if len(text) > maxField || len(r.Audio) > maxField || len(r.Image) > maxField {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, 0, headerLen+8+len(text)+len(r.Audio)+len(r.Image))
	buf = append(buf, r.MessageID[:]...)
	buf = append(buf, byte(r.Kind))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(text)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Audio)))
	buf = append(buf, text...)
	buf = append(buf, r.Audio...)
	buf = append(buf, r.Image...)
	return buf, nil
}

// validateShape enforces the layout invariants before any bytes are
// written.
func (r *Response) validateShape() error {
	switch r.Kind {
	case ResponseError:
		if r.Text != "" || len(r.Audio) > 0 || len(r.Image) > 0 {
			return ErrKindMismatch
		}
	case ResponseText:
		if len(r.Audio) > 0 || len(r.Image) > 0 {
			return ErrKindMismatch
		}
	case ResponseTextAudio:
		if len(r.Image) > 0 {
			return ErrKindMismatch
		}
	case ResponseTextAudioImage:
		// all fields allowed
	default:
		return ErrUnknownResponseKind
	}
	return nil
}

// DecodeResponse parses an outbound frame. The kind byte is examined
// before any length field is read, because the ERROR layout has none.
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) < headerLen {
		return nil, ErrFrameTooShort
	}

	var id uuid.UUID
	copy(id[:], data[:16])
	kind := ResponseKind(data[16])
	body := data[headerLen:]

	if kind == ResponseError {
		if !utf8.Valid(body) {
			return nil, ErrInvalidText
		}
		return &Response{MessageID: id, Kind: kind, ErrorMessage: string(body)}, nil
	}

	switch kind {
	case ResponseText, ResponseTextAudio, ResponseTextAudioImage:
	default:
		return nil, ErrUnknownResponseKind
	}

	if len(body) < 8 {
		return nil, ErrFrameTooShort
	}
	textLen := binary.BigEndian.Uint32(body[0:4])
	audioLen := binary.BigEndian.Uint32(body[4:8])
	rest := body[8:]
	if uint64(len(rest)) < uint64(textLen)+uint64(audioLen) {
		return nil, ErrTruncatedBody
	}

	text := rest[:textLen]
	if !utf8.Valid(text) {
		return nil, ErrInvalidText
	}

	resp := &Response{
		MessageID: id,
		Kind:      kind,
		Text:      string(text),
	}
	if audioLen > 0 {
		resp.Audio = append([]byte(nil), rest[textLen:textLen+audioLen]...)
	}
	if image := rest[textLen+audioLen:]; len(image) > 0 {
		resp.Image = append([]byte(nil), image...)
	}
	return resp, nil
}
