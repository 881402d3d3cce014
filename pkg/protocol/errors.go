package protocol

import "errors"

// Codec error types shared by the request and response framings.
var (
	ErrFrameTooShort       = errors.New("frame too short: need at least 17 bytes for message id and kind")
	ErrUnknownRequestKind  = errors.New("unknown request kind")
	ErrUnknownResponseKind = errors.New("unknown response kind")
	ErrInvalidText         = errors.New("text payload is not valid UTF-8")
	ErrTruncatedBody       = errors.New("frame body shorter than declared lengths")
	ErrPayloadTooLarge     = errors.New("payload exceeds maximum encodable size")
	ErrKindMismatch        = errors.New("payload fields do not match response kind")
)
