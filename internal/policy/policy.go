// Package policy decides whether a message kind is accepted at the
// client's local time. The rules are pure functions of the hour of day;
// the gateway captures the client's local time once at handshake and
// reuses it for the whole session.
package policy

import (
	"fmt"
	"time"

	"chatgate/pkg/protocol"
)

// Window is a half-open [From, To) hour-of-day interval.
type Window struct {
	From int
	To   int
}

// Contains reports whether the hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return w.From <= hour && hour < w.To
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.From, w.To%24)
}

// Accept windows per request kind, in the client's local time.
var (
	TextWindow  = Window{From: 5, To: 24}
	AudioWindow = Window{From: 8, To: 12}
	VideoWindow = Window{From: 20, To: 24}
)

// Check returns nil when a message of the given kind is accepted at the
// client's local time, and a *Violation naming the window otherwise.
// Kinds without a window are always rejected.
func Check(kind protocol.RequestKind, clientTime time.Time) error {
	var window Window
	switch kind {
	case protocol.RequestText:
		window = TextWindow
	case protocol.RequestAudio:
		window = AudioWindow
	case protocol.RequestVideo:
		window = VideoWindow
	default:
		return &Violation{Kind: kind}
	}

	if !window.Contains(clientTime.Hour()) {
		return &Violation{Kind: kind, Window: window, Hour: clientTime.Hour()}
	}
	return nil
}

// Violation describes a rejected message. Window is zero when the kind
// itself has no accept window.
type Violation struct {
	Kind   protocol.RequestKind
	Window Window
	Hour   int
}

func (v *Violation) Error() string {
	if v.Window == (Window{}) {
		return fmt.Sprintf("we can not accept %s messages", v.Kind)
	}
	return fmt.Sprintf("we can not accept %s messages now: allowed %s, local hour is %02d:00",
		v.Kind, v.Window, v.Hour)
}
