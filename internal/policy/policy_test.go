package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatgate/pkg/protocol"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
}

func TestCheckBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		kind   protocol.RequestKind
		hour   int
		accept bool
	}{
		{"text before window", protocol.RequestText, 4, false},
		{"text at open boundary", protocol.RequestText, 5, true},
		{"text late evening", protocol.RequestText, 23, true},
		{"text midnight", protocol.RequestText, 0, false},

		{"audio before window", protocol.RequestAudio, 7, false},
		{"audio at open boundary", protocol.RequestAudio, 8, true},
		{"audio last accepted hour", protocol.RequestAudio, 11, true},
		{"audio at close boundary", protocol.RequestAudio, 12, false},

		{"video before window", protocol.RequestVideo, 19, false},
		{"video at open boundary", protocol.RequestVideo, 20, true},
		{"video last accepted hour", protocol.RequestVideo, 23, true},
		{"video midnight", protocol.RequestVideo, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.kind, at(tt.hour))
			if tt.accept {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheckUnknownKindRejected(t *testing.T) {
	err := Check(protocol.RequestKind(9), at(10))
	assert.Error(t, err)
}

func TestViolationNamesTheWindow(t *testing.T) {
	err := Check(protocol.RequestVideo, at(10))
	assert.ErrorContains(t, err, "video")
	assert.ErrorContains(t, err, "20:00-00:00")
}

func TestCheckUsesLocalHourNotUTC(t *testing.T) {
	// 14:00 UTC is 10:00 in fixed UTC-4: audio must be accepted there and
	// rejected in plain UTC.
	loc := time.FixedZone("UTC-4", -4*3600)
	utc := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	assert.Error(t, Check(protocol.RequestAudio, utc))
	assert.NoError(t, Check(protocol.RequestAudio, utc.In(loc)))
}
