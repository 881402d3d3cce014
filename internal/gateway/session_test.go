package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgate/internal/media"
	"chatgate/pkg/protocol"
)

// countingAdmission records Release calls so the exactly-once guarantee
// can be observed directly.
type countingAdmission struct {
	mu       sync.Mutex
	releases int
}

func (c *countingAdmission) Acquire(context.Context, string) (bool, error) { return true, nil }
func (c *countingAdmission) Release(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
	return nil
}
func (c *countingAdmission) Reset(context.Context) error { return nil }
func (c *countingAdmission) Snapshot(context.Context) (map[string]int64, error) {
	return nil, nil
}

func (c *countingAdmission) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releases
}

func TestBuildReplyMapsKinds(t *testing.T) {
	s := NewSession("alice", "UTC", time.Now(), nil, &countingAdmission{}, nil,
		media.NewSampler(""), nil, 0)

	text := s.buildReply(protocol.RequestText)
	assert.Equal(t, protocol.ResponseText, text.Kind)
	assert.NotEmpty(t, text.Text)
	assert.Empty(t, text.Audio)

	audio := s.buildReply(protocol.RequestAudio)
	assert.Equal(t, protocol.ResponseTextAudio, audio.Kind)
	assert.NotEmpty(t, audio.Audio)

	// The video reply reuses the audio shape; there is no video-bearing
	// response kind.
	video := s.buildReply(protocol.RequestVideo)
	assert.Equal(t, protocol.ResponseTextAudio, video.Kind)
	assert.NotEmpty(t, video.Audio)
	assert.Empty(t, video.Image)
}

func TestReplyMessageIDsAreFresh(t *testing.T) {
	s := NewSession("alice", "UTC", time.Now(), nil, &countingAdmission{}, nil,
		media.NewSampler(""), nil, 0)

	a := s.buildReply(protocol.RequestText)
	b := s.buildReply(protocol.RequestText)
	assert.NotEqual(t, a.MessageID, b.MessageID)
}

func TestReleaseFiresExactlyOnce(t *testing.T) {
	ctrl := &countingAdmission{}
	s := NewSession("alice", "UTC", time.Now(), nil, ctrl, nil,
		media.NewSampler(""), nil, 0)

	s.release()
	s.release()
	s.release()
	require.Equal(t, 1, ctrl.count())
}

func TestNewSessionStartsAdmitted(t *testing.T) {
	s := NewSession("alice", "UTC", time.Now(), nil, &countingAdmission{}, nil,
		media.NewSampler(""), nil, 0)
	assert.Equal(t, StateAdmitted, s.State())
}
