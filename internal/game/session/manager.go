package session

import (
	"sort"
	"sync"

	"github.com/cory-johannsen/gridmud/internal/game/world"
)

// Manager tracks all known sessions and room occupancy. The directory
// (username → session) and the room index (location → member set) live
// behind one lock so every location change updates both together.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[world.Location]map[string]struct{}
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		rooms:    make(map[world.Location]map[string]struct{}),
	}
}

// Login establishes or resumes the identity for username. Unknown
// usernames get a new Session at the origin bound to token. Known
// usernames are accepted only when token matches the stored one; the
// connection is then rebound so the newest connection takes over
// delivery. A rejected login changes no state.
//
// Precondition: conn must be non-nil.
// Postcondition: Returns the session, or ErrInvalidUsername,
// ErrReservedUsername, or ErrTokenMismatch.
func (m *Manager) Login(username, token string, conn Conn) (*Session, error) {
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	if reserved(username) {
		return nil, ErrReservedUsername
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[username]
	if !ok {
		sess = &Session{
			Username: username,
			Token:    token,
			Location: world.Origin,
		}
		m.sessions[username] = sess
	}
	if sess.Token != token {
		return nil, ErrTokenMismatch
	}

	sess.rebind(conn)
	return sess, nil
}

// Authenticate resolves username to its session when the token matches.
// Reserved names never authenticate.
//
// Postcondition: Returns the session, or ErrReservedUsername,
// ErrUnknownUsername, or ErrTokenMismatch.
func (m *Manager) Authenticate(username, token string) (*Session, error) {
	if reserved(username) {
		return nil, ErrReservedUsername
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[username]
	if !ok {
		return nil, ErrUnknownUsername
	}
	if sess.Token != token {
		return nil, ErrTokenMismatch
	}
	return sess, nil
}

// Disconnect marks the session as no longer presentable and removes its
// room membership. The session itself is retained so the location
// persists across reconnects. The call is a no-op unless conn is still
// the session's current connection: a stale connection closing after a
// reconnect must not evict the rebound session.
//
// Postcondition: Returns the vacated location and true if the session was
// a member of a room, or (Location{}, false) otherwise.
func (m *Manager) Disconnect(username string, conn Conn) (world.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[username]
	if !ok {
		return world.Location{}, false
	}
	if conn != nil && sess.Conn != conn {
		return world.Location{}, false
	}

	loc := sess.Location
	wasMember := m.leaveLocked(loc, username)
	sess.Connected = false
	sess.Conn = nil
	return loc, wasMember
}

// Get returns the session for username.
//
// Postcondition: Returns (session, true) if known, or (nil, false).
func (m *Manager) Get(username string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[username]
	return sess, ok
}

// SetLocation records username's new location in the directory. Room
// membership is updated separately through Join and Leave; the
// gameserver's event lock keeps the pair atomic with respect to other
// handlers.
func (m *Manager) SetLocation(username string, loc world.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[username]; ok {
		sess.Location = loc
	}
}

// Join adds username to the member set at loc. Adding an existing member
// is a no-op; a user is never double-counted in one room.
func (m *Manager) Join(loc world.Location, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.rooms[loc]
	if !ok {
		set = make(map[string]struct{})
		m.rooms[loc] = set
	}
	set[username] = struct{}{}
}

// Leave removes username from the member set at loc. Leaving a room that
// has no member set, or one the user is not in, is a no-op; this guards
// against a disconnect arriving before the first join.
//
// Postcondition: Returns true if the user was a member.
func (m *Manager) Leave(loc world.Location, username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(loc, username)
}

func (m *Manager) leaveLocked(loc world.Location, username string) bool {
	set, ok := m.rooms[loc]
	if !ok {
		return false
	}
	if _, member := set[username]; !member {
		return false
	}
	delete(set, username)
	if len(set) == 0 {
		delete(m.rooms, loc)
	}
	return true
}

// IsMember reports whether username is in the member set at loc.
func (m *Manager) IsMember(loc world.Location, username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, member := m.rooms[loc][username]
	return member
}

// MembersOf returns the usernames currently at loc, sorted for
// deterministic snapshots.
//
// Postcondition: Returns a non-nil slice; empty when the room is empty.
func (m *Manager) MembersOf(loc world.Location) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.rooms[loc]
	members := make([]string, 0, len(set))
	for name := range set {
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}

// ConnectedSessions returns every session that currently holds a live
// connection.
func (m *Manager) ConnectedSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		if sess.Connected {
			out = append(out, sess)
		}
	}
	return out
}

// SessionCount returns the number of known sessions, connected or not.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
