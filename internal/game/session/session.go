// Package session provides identity and presence tracking: the directory
// of known identities and the room membership index derived from it.
package session

import (
	"errors"

	"github.com/cory-johannsen/gridmud/internal/game/world"
)

// Reserved pseudo-identities used as message senders. They can never log
// in or authenticate.
const (
	// SenderServer tags system notices broadcast to rooms.
	SenderServer = "SERVER"
	// SenderLog tags private replies such as help text and move errors.
	SenderLog = "LOG"
)

// Typed login/authentication outcomes. The handler layer drops rejected
// events silently; the sentinel errors exist so the behavior is testable
// without a live connection.
var (
	// ErrInvalidUsername is returned for empty or non-alphanumeric usernames.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrReservedUsername is returned for SERVER and LOG.
	ErrReservedUsername = errors.New("reserved username")
	// ErrUnknownUsername is returned when no session exists for the username.
	ErrUnknownUsername = errors.New("unknown username")
	// ErrTokenMismatch is returned when the presented token does not match
	// the one bound at first login.
	ErrTokenMismatch = errors.New("session token mismatch")
)

// Conn is the transport handle for one client connection: a reliable,
// ordered, bidirectional message channel. Emit is fire-and-forget; a
// failed emit never affects session state.
type Conn interface {
	// Emit sends a named event with a JSON-marshalable payload.
	Emit(event string, payload any) error
	// Close tears down the connection.
	Close() error
}

// Session is the per-identity state. One Session exists per username for
// the process lifetime; it survives disconnects so a returning user
// resumes their last location.
//
// Fields are mutated only through Manager methods under its lock; callers
// that read fields directly must serialize with the mutation path (the
// gameserver holds a single event mutex).
type Session struct {
	// Username is the unique identity key (alphanumeric, case-sensitive).
	Username string
	// Token is the opaque credential bound at first login.
	Token string
	// Location is the session's current grid position.
	Location world.Location
	// Conn is the live transport handle, reassigned on reconnect.
	Conn Conn
	// Connected reports whether the session currently has a live connection.
	Connected bool
}

// rebind makes conn the session's delivery target. The most recent
// authenticated connection always wins.
func (s *Session) rebind(conn Conn) {
	s.Conn = conn
	s.Connected = true
}

// validUsername reports whether name is non-empty ASCII alphanumeric.
func validUsername(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// reserved reports whether name is a reserved pseudo-identity.
func reserved(name string) bool {
	return name == SenderServer || name == SenderLog
}
