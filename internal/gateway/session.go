package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatgate/internal/metrics"
	"chatgate/internal/policy"
	"chatgate/pkg/interfaces"
	"chatgate/pkg/protocol"
	"chatgate/pkg/types"
)

// State is the session lifecycle position. Reject paths jump from
// StateConnecting to StateRejected without ever holding admission.
type State int32

const (
	StateConnecting State = iota
	StateAdmitted
	StateActive
	StateClosing
	StateClosed
	StateRejected
)

// Heartbeat literals. A ping short-circuits before the codec and the
// policy engine are ever consulted.
const (
	heartbeatPing = "ping"
	heartbeatPong = "pong"
)

// Session owns one admitted connection from handshake acknowledgement to
// teardown. It is exclusively owned by the goroutine running it; nothing
// is shared across connections except the injected collaborators.
type Session struct {
	clientID  string
	timeZone  string
	localTime time.Time

	conn      *Conn
	admission interfaces.AdmissionController
	history   interfaces.ChatHistory
	sampler   interfaces.MediaSampler
	blobs     interfaces.BlobStore

	maxFieldBytes int

	mu            sync.Mutex
	state         State
	admissionHeld bool
	releaseOnce   sync.Once
}

// NewSession builds a session for an admitted connection. localTime is
// the client's wall-clock time captured once at handshake; every policy
// decision for the session's lifetime uses it, even across an hour
// boundary.
func NewSession(
	clientID, timeZone string,
	localTime time.Time,
	conn *Conn,
	admission interfaces.AdmissionController,
	history interfaces.ChatHistory,
	sampler interfaces.MediaSampler,
	blobs interfaces.BlobStore,
	maxFieldBytes int,
) *Session {
	if maxFieldBytes <= 0 {
		maxFieldBytes = protocol.MaxFieldBytes
	}
	return &Session{
		clientID:      clientID,
		timeZone:      timeZone,
		localTime:     localTime,
		conn:          conn,
		admission:     admission,
		history:       history,
		sampler:       sampler,
		blobs:         blobs,
		maxFieldBytes: maxFieldBytes,
		state:         StateAdmitted,
		admissionHeld: true,
	}
}

// ClientID returns the session's client identifier.
func (s *Session) ClientID() string { return s.clientID }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// CloseConn closes the underlying connection, unblocking the message
// loop and the disconnect watcher.
func (s *Session) CloseConn() { s.conn.Close() }

// Run drives the ACTIVE phase: the message loop and a disconnect watcher
// run concurrently and whichever finishes first ends the session. The
// loser is cancelled via the shared context. Release fires exactly once
// on every exit path.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.setState(StateActive)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.messageLoop()
	}()

	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-ctx.Done():
		case <-s.conn.Done():
		}
	}()

	select {
	case <-loopDone:
	case <-watcherDone:
	}

	s.setState(StateClosing)
	s.conn.Close()
	cancel()
	<-loopDone
	<-watcherDone

	s.release()
	s.setState(StateClosed)
}

// release returns the admission slot. It never fires on the rejected
// path (admissionHeld is only set by NewSession, which is only reached
// after a successful acquire) and never fires twice.
func (s *Session) release() {
	s.releaseOnce.Do(func() {
		s.mu.Lock()
		held := s.admissionHeld
		s.admissionHeld = false
		s.mu.Unlock()
		if !held {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.admission.Release(ctx, s.clientID); err != nil {
			log.Printf("[client %s] failed to release admission slot: %v", s.clientID, err)
		}
		metrics.ConnectionsActive.Dec()
	})
}

// messageLoop reads inbound frames sequentially: a reply is written
// before the next frame is read, so there is no pipelining on one
// connection. It returns when the transport reports a disconnect.
func (s *Session) messageLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			// Transport disconnect is a clean end, not an error.
			return
		}

		if len(data) == len(heartbeatPing) && string(data) == heartbeatPing {
			if err := s.conn.WriteText(heartbeatPong); err != nil {
				return
			}
			continue
		}

		if err := s.handleFrame(data); err != nil {
			return
		}
	}
}

// handleFrame processes one non-heartbeat frame. Message-scoped failures
// (framing, policy, encode limits) become in-band ERROR responses and a
// nil return so the loop keeps going; only a dead transport propagates.
func (s *Session) handleFrame(data []byte) error {
	started := time.Now()

	req, err := protocol.DecodeRequest(data)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("unknown", metrics.OutcomeFramingError).Inc()
		return s.sendError(fmt.Sprintf("invalid frame: %v", err))
	}

	log.Printf("[client %s] message %s kind=%s", s.clientID, req.MessageID, req.Kind)

	if err := policy.Check(req.Kind, s.localTime); err != nil {
		metrics.MessagesTotal.WithLabelValues(req.Kind.String(), metrics.OutcomePolicyRejected).Inc()
		s.recordRequest(req)
		return s.sendError(err.Error())
	}

	resp := s.buildReply(req.Kind)
	encoded, err := resp.EncodeWithLimit(s.maxFieldBytes)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues(req.Kind.String(), metrics.OutcomeEncodeError).Inc()
		return s.sendError(fmt.Sprintf("failed to encode reply: %v", err))
	}

	s.recordRequest(req)
	s.recordReply(resp)

	if err := s.conn.WriteBinary(encoded); err != nil {
		return err
	}
	metrics.MessagesTotal.WithLabelValues(req.Kind.String(), metrics.OutcomeReplied).Inc()
	metrics.ReplyDuration.Observe(time.Since(started).Seconds())
	return nil
}

// buildReply maps an accepted request kind to its canned reply. The
// switch is exhaustive over the kinds DecodeRequest can produce. An
// accepted VIDEO request deliberately gets the audio-shaped reply; the
// protocol has no video-bearing response kind.
func (s *Session) buildReply(kind protocol.RequestKind) *protocol.Response {
	resp := &protocol.Response{
		MessageID: uuid.New(),
		Text:      s.sampler.SampleText(),
	}
	switch kind {
	case protocol.RequestText:
		resp.Kind = protocol.ResponseText
	case protocol.RequestAudio:
		resp.Kind = protocol.ResponseTextAudio
		resp.Audio = s.sampler.SampleAudio()
	case protocol.RequestVideo:
		resp.Kind = protocol.ResponseTextAudio
		resp.Audio = s.sampler.SampleAudio()
	}
	return resp
}

// sendError emits an in-band ERROR frame and keeps the session alive.
// Only a transport failure is returned to the caller.
func (s *Session) sendError(message string) error {
	encoded, err := protocol.NewErrorResponse(message).EncodeWithLimit(s.maxFieldBytes)
	if err != nil {
		// The error message itself exceeded the ceiling; this cannot
		// happen with the fixed-format messages above, but truncating
		// beats dropping the reply.
		encoded, err = protocol.NewErrorResponse("internal error").EncodeWithLimit(s.maxFieldBytes)
		if err != nil {
			return err
		}
	}
	return s.conn.WriteBinary(encoded)
}

// recordRequest appends the inbound message to the transcript,
// fire-and-forget. Media payloads go to blob storage and are referenced
// by URL.
func (s *Session) recordRequest(req *protocol.Request) {
	msg := types.HistoryMessage{
		ID:        req.MessageID,
		ClientID:  s.clientID,
		Direction: types.DirectionUser,
		Kind:      req.Kind.String(),
		Text:      req.Text,
		Timestamp: time.Now().UTC(),
	}
	switch req.Kind {
	case protocol.RequestAudio:
		msg.AudioURL = s.saveBlob(req.MessageID.String()+".mp3", req.Audio)
	case protocol.RequestVideo:
		msg.VideoURL = s.saveBlob(req.MessageID.String()+".mp4", req.Video)
	}
	s.appendHistory(msg)
}

// recordReply appends the outbound message to the transcript.
func (s *Session) recordReply(resp *protocol.Response) {
	msg := types.HistoryMessage{
		ID:        resp.MessageID,
		ClientID:  s.clientID,
		Direction: types.DirectionBot,
		Kind:      resp.Kind.String(),
		Text:      resp.Text,
		Timestamp: time.Now().UTC(),
	}
	if len(resp.Audio) > 0 {
		msg.AudioURL = s.saveBlob(resp.MessageID.String()+".mp3", resp.Audio)
	}
	if len(resp.Image) > 0 {
		msg.ImageURL = s.saveBlob(resp.MessageID.String()+".jpg", resp.Image)
	}
	s.appendHistory(msg)
}

func (s *Session) appendHistory(msg types.HistoryMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Append(ctx, s.clientID, msg); err != nil {
		log.Printf("[client %s] failed to append chat history: %v", s.clientID, err)
	}
}

func (s *Session) saveBlob(name string, data []byte) string {
	if s.blobs == nil || len(data) == 0 {
		return ""
	}
	url, err := s.blobs.Save(name, data)
	if err != nil {
		log.Printf("[client %s] failed to save media blob %s: %v", s.clientID, name, err)
		return ""
	}
	return url
}
