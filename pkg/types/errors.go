package types

import "errors"

var (
	ErrMissingClientID = errors.New("client_id is required")
	ErrMissingTimeZone = errors.New("time_zone is required")
	ErrClientIDTooLong = errors.New("client_id must be at most 128 characters")
)
