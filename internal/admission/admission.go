// Package admission enforces the gateway's connection caps: a global
// maximum across all clients and a per-client maximum. Counts live in a
// store shared by every server process; the check and the increment must
// happen as one atomic step against that store, because a read-then-write
// pair would let concurrent acquires exceed the caps.
package admission

import "errors"

var (
	ErrInvalidGlobalMax    = errors.New("global connection cap must be positive")
	ErrInvalidPerClientMax = errors.New("per-client connection cap must be positive")
)

// Caps bundles the two limits every controller implementation enforces.
type Caps struct {
	GlobalMax    int64
	PerClientMax int64
}

// Validate rejects caps that would make the gateway admit nobody.
func (c Caps) Validate() error {
	if c.GlobalMax <= 0 {
		return ErrInvalidGlobalMax
	}
	if c.PerClientMax <= 0 {
		return ErrInvalidPerClientMax
	}
	return nil
}
