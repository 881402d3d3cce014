package types

// MaxClientIDLength bounds the opaque client identifier. The value also
// caps the Redis hash field size used by the admission controller.
const MaxClientIDLength = 128

// Validate checks the handshake parameters. Time zone names are validated
// against the IANA database by the caller when the location is actually
// loaded; here only presence is checked.
func (h Handshake) Validate() error {
	if h.ClientID == "" {
		return ErrMissingClientID
	}
	if len(h.ClientID) > MaxClientIDLength {
		return ErrClientIDTooLong
	}
	if h.TimeZone == "" {
		return ErrMissingTimeZone
	}
	return nil
}
