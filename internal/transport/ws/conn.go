// Package ws provides the websocket transport for the grid server.
package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// outboundBuffer is the per-connection queue of pending events. A client
// that falls further behind than this starts losing events rather than
// stalling the game loop.
const outboundBuffer = 64

var (
	// ErrConnClosed is returned by Emit after the connection has closed.
	ErrConnClosed = errors.New("connection closed")
	// ErrBufferFull is returned by Emit when the outbound queue is full.
	ErrBufferFull = errors.New("outbound buffer full")
)

// envelope is the outbound wire frame: an event name plus its payload.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Conn wraps a websocket connection with an identifier and a buffered
// outbound queue drained by a single writer goroutine, so Emit is safe
// to call from the event loop while the read loop owns the socket.
type Conn struct {
	id           string
	ws           *websocket.Conn
	logger       *zap.Logger
	writeTimeout time.Duration

	outbound  chan envelope
	done      chan struct{}
	closeOnce sync.Once
}

// newConn wraps an upgraded websocket connection and starts its write pump.
//
// Precondition: ws and logger must be non-nil.
// Postcondition: The returned Conn is ready for Emit; Close releases it.
func newConn(ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger) *Conn {
	c := &Conn{
		id:           uuid.NewString(),
		ws:           ws,
		logger:       logger,
		writeTimeout: writeTimeout,
		outbound:     make(chan envelope, outboundBuffer),
		done:         make(chan struct{}),
	}
	go c.writePump()
	return c
}

// ID returns the connection identifier assigned at upgrade time.
func (c *Conn) ID() string {
	return c.id
}

// Emit queues an event for delivery to the client. It never blocks: if the
// outbound queue is full the event is dropped and ErrBufferFull returned.
//
// Postcondition: The event is queued, or an error explains why not.
func (c *Conn) Emit(event string, payload any) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.outbound <- envelope{Type: event, Data: payload}:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.logger.Warn("dropping event for slow client",
			zap.String("conn_id", c.id),
			zap.String("event", event),
		)
		return ErrBufferFull
	}
}

// Close shuts down the connection and its write pump. It is idempotent
// and safe to call from any goroutine.
//
// Postcondition: Subsequent Emit calls return ErrConnClosed.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.ws.Close()
}

// writePump serializes all writes to the underlying socket. Gorilla
// websockets permit one concurrent writer only.
func (c *Conn) writePump() {
	for {
		select {
		case env := <-c.outbound:
			if c.writeTimeout > 0 {
				_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if err := c.ws.WriteJSON(env); err != nil {
				c.logger.Debug("write failed, closing connection",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
				_ = c.Close()
				return
			}
		case <-c.done:
			deadline := time.Now().Add(time.Second)
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}
	}
}
