// Package testutil provides test doubles shared across packages.
package testutil

import (
	"fmt"
	"sync"
)

// Event is one (name, payload) pair emitted on a RecordingConn.
type Event struct {
	Name    string
	Payload any
}

// RecordingConn is an in-memory session connection that records every
// emitted event in order. It is safe for concurrent use.
type RecordingConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// NewRecordingConn creates an open RecordingConn.
func NewRecordingConn() *RecordingConn {
	return &RecordingConn{}
}

// Emit records the event. Emitting on a closed connection fails, like a
// write on a torn-down transport.
func (c *RecordingConn) Emit(name string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("connection closed")
	}
	c.events = append(c.events, Event{Name: name, Payload: payload})
	return nil
}

// Close marks the connection closed.
func (c *RecordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Events returns a copy of all recorded events in emission order.
func (c *RecordingConn) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Named returns the recorded events with the given name, in order.
func (c *RecordingConn) Named(name string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded events.
func (c *RecordingConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
