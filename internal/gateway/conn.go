package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrWriteTimeout     = errors.New("write timed out")
)

// outFrame pairs a websocket message type with its payload so the write
// pump can carry both the binary protocol frames and the literal text
// frames (connected, pong) through one channel.
type outFrame struct {
	messageType int
	data        []byte
}

// Conn wraps a websocket connection with a single writer goroutine.
// Websocket writes are not safe for concurrent use; serializing them
// through one pump removes the race between the reply path, the
// handshake literals and close frames.
type Conn struct {
	ws           *websocket.Conn
	writeCh      chan outFrame
	writeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

// NewConn wraps an upgraded websocket connection and starts its write
// pump.
func NewConn(ws *websocket.Conn, writeTimeout time.Duration) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ws:           ws,
		writeCh:      make(chan outFrame, 16),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
	go c.writePump()
	return c
}

func (c *Conn) writePump() {
	for {
		select {
		case frame := <-c.writeCh:
			if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.teardown()
				return
			}
			if err := c.ws.WriteMessage(frame.messageType, frame.data); err != nil {
				c.teardown()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// WriteBinary queues one binary protocol frame.
func (c *Conn) WriteBinary(data []byte) error {
	return c.enqueue(outFrame{messageType: websocket.BinaryMessage, data: data})
}

// WriteText queues one literal text frame.
func (c *Conn) WriteText(s string) error {
	return c.enqueue(outFrame{messageType: websocket.TextMessage, data: []byte(s)})
}

func (c *Conn) enqueue(frame outFrame) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.writeCh <- frame:
		return nil
	case <-time.After(c.writeTimeout):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// ReadMessage blocks for the next inbound frame.
func (c *Conn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

// SetReadLimit caps the size of inbound frames.
func (c *Conn) SetReadLimit(limit int64) {
	c.ws.SetReadLimit(limit)
}

// CloseWithReason sends a close frame carrying the code and reason, then
// tears the connection down. Used for the terminal reject paths where the
// client needs to know why it was refused.
func (c *Conn) CloseWithReason(code int, reason string) {
	deadline := time.Now().Add(c.writeTimeout)
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, deadline)
	c.teardown()
}

// Close tears the connection down without a close frame of its own (the
// peer already closed, or the transport is gone).
func (c *Conn) Close() {
	c.teardown()
}

func (c *Conn) teardown() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.ws.Close()
	})
}

// Done is closed once the connection is torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}
