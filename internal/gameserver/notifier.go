package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gridmud/internal/game/session"
	"github.com/cory-johannsen/gridmud/internal/game/world"
)

// Notifier fans events out to connections: one session, all members of a
// room, or every connected identity. Delivery is fire-and-forget: no
// acknowledgement is awaited and emit failures are logged, never
// propagated.
type Notifier struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewNotifier creates a Notifier over the given session manager.
//
// Precondition: sessions and logger must be non-nil.
func NewNotifier(sessions *session.Manager, logger *zap.Logger) *Notifier {
	return &Notifier{
		sessions: sessions,
		logger:   logger,
	}
}

// Send emits one event to a single session's connection.
func (n *Notifier) Send(sess *session.Session, event string, payload any) {
	if !sess.Connected || sess.Conn == nil {
		return
	}
	if err := sess.Conn.Emit(event, payload); err != nil {
		n.logger.Debug("emit failed",
			zap.String("username", sess.Username),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// SendMessage emits a MessageEvent to a single session.
func (n *Notifier) SendMessage(sess *session.Session, sender, body string) {
	n.Send(sess, EventMessage, MessageEvent{Sender: sender, Body: body})
}

// Room emits an event to every connected member of the room at loc.
func (n *Notifier) Room(loc world.Location, event string, payload any) {
	for _, name := range n.sessions.MembersOf(loc) {
		sess, ok := n.sessions.Get(name)
		if !ok {
			continue
		}
		n.Send(sess, event, payload)
	}
}

// RoomMessage emits a MessageEvent to every connected member of the room
// at loc.
func (n *Notifier) RoomMessage(loc world.Location, sender, body string) {
	n.Room(loc, EventMessage, MessageEvent{Sender: sender, Body: body})
}

// All emits a MessageEvent to every connected identity regardless of
// room.
func (n *Notifier) All(sender, body string) {
	for _, sess := range n.sessions.ConnectedSessions() {
		n.SendMessage(sess, sender, body)
	}
}
