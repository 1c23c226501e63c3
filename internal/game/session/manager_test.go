package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gridmud/internal/game/world"
)

// stubConn is a do-nothing Conn for directory tests.
type stubConn struct{ closed bool }

func (c *stubConn) Emit(event string, payload any) error { return nil }
func (c *stubConn) Close() error                         { c.closed = true; return nil }

func TestLoginCreatesAtOrigin(t *testing.T) {
	m := NewManager()
	conn := &stubConn{}

	sess, err := m.Login("Alice", "tok1", conn)
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Username)
	assert.Equal(t, world.Origin, sess.Location)
	assert.True(t, sess.Connected)
	assert.Same(t, conn, sess.Conn.(*stubConn))
	assert.Equal(t, 1, m.SessionCount())
}

func TestLoginInvalidUsername(t *testing.T) {
	m := NewManager()
	for _, name := range []string{"", "bad name", "semi;colon", "tab\tb", "naïve"} {
		_, err := m.Login(name, "tok", &stubConn{})
		assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", name)
	}
	assert.Equal(t, 0, m.SessionCount())
}

func TestLoginReservedUsername(t *testing.T) {
	m := NewManager()
	for _, name := range []string{SenderServer, SenderLog} {
		_, err := m.Login(name, "tok", &stubConn{})
		assert.ErrorIs(t, err, ErrReservedUsername, "username %q", name)
	}
	assert.Equal(t, 0, m.SessionCount())
}

func TestLoginWrongTokenLeavesStateUntouched(t *testing.T) {
	m := NewManager()
	conn := &stubConn{}
	sess, err := m.Login("Alice", "tok1", conn)
	require.NoError(t, err)
	m.SetLocation("Alice", world.Location{X: 2})

	_, err = m.Login("Alice", "wrong", &stubConn{})
	assert.ErrorIs(t, err, ErrTokenMismatch)

	// Session, token, location, and connection are all unchanged.
	got, ok := m.Get("Alice")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, "tok1", got.Token)
	assert.Equal(t, world.Location{X: 2}, got.Location)
	assert.Same(t, conn, got.Conn.(*stubConn))
}

func TestLoginRebindsConnection(t *testing.T) {
	m := NewManager()
	first := &stubConn{}
	second := &stubConn{}

	_, err := m.Login("Alice", "tok", first)
	require.NoError(t, err)
	sess, err := m.Login("Alice", "tok", second)
	require.NoError(t, err)

	// The most recent authenticated connection takes over delivery.
	assert.Same(t, second, sess.Conn.(*stubConn))
	assert.True(t, sess.Connected)
}

func TestAuthenticate(t *testing.T) {
	m := NewManager()
	_, err := m.Login("Alice", "tok", &stubConn{})
	require.NoError(t, err)

	sess, err := m.Authenticate("Alice", "tok")
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Username)

	_, err = m.Authenticate("Alice", "wrong")
	assert.ErrorIs(t, err, ErrTokenMismatch)
	_, err = m.Authenticate("Nobody", "tok")
	assert.ErrorIs(t, err, ErrUnknownUsername)
	_, err = m.Authenticate(SenderServer, "tok")
	assert.ErrorIs(t, err, ErrReservedUsername)
	_, err = m.Authenticate(SenderLog, "tok")
	assert.ErrorIs(t, err, ErrReservedUsername)
}

func TestDisconnectRemovesMembershipKeepsSession(t *testing.T) {
	m := NewManager()
	conn := &stubConn{}
	sess, err := m.Login("Alice", "tok", conn)
	require.NoError(t, err)
	loc := world.Location{X: 1}
	m.SetLocation("Alice", loc)
	m.Join(loc, "Alice")

	gone, wasMember := m.Disconnect("Alice", conn)
	assert.True(t, wasMember)
	assert.Equal(t, loc, gone)
	assert.Empty(t, m.MembersOf(loc))

	// Session survives for reconnect; location persists.
	assert.False(t, sess.Connected)
	assert.Nil(t, sess.Conn)
	got, ok := m.Get("Alice")
	require.True(t, ok)
	assert.Equal(t, loc, got.Location)
}

func TestDisconnectStaleConnectionIsNoop(t *testing.T) {
	m := NewManager()
	old := &stubConn{}
	_, err := m.Login("Alice", "tok", old)
	require.NoError(t, err)
	m.Join(world.Origin, "Alice")

	// Reconnect rebinds; the old transport closing afterwards must not
	// evict the new session.
	fresh := &stubConn{}
	sess, err := m.Login("Alice", "tok", fresh)
	require.NoError(t, err)

	_, wasMember := m.Disconnect("Alice", old)
	assert.False(t, wasMember)
	assert.True(t, sess.Connected)
	assert.Equal(t, []string{"Alice"}, m.MembersOf(world.Origin))
}

func TestDisconnectBeforeJoin(t *testing.T) {
	m := NewManager()
	conn := &stubConn{}
	_, err := m.Login("Alice", "tok", conn)
	require.NoError(t, err)

	// Immediate disconnect before the login transition placed the user
	// in a room.
	_, wasMember := m.Disconnect("Alice", conn)
	assert.False(t, wasMember)
}

func TestDisconnectUnknownUser(t *testing.T) {
	m := NewManager()
	_, wasMember := m.Disconnect("Nobody", &stubConn{})
	assert.False(t, wasMember)
}

func TestJoinIdempotent(t *testing.T) {
	m := NewManager()
	loc := world.Location{Z: 2}
	m.Join(loc, "Alice")
	m.Join(loc, "Alice")
	assert.Equal(t, []string{"Alice"}, m.MembersOf(loc))
}

func TestLeave(t *testing.T) {
	m := NewManager()
	loc := world.Location{Z: 2}
	m.Join(loc, "Alice")
	m.Join(loc, "Bob")

	assert.True(t, m.Leave(loc, "Alice"))
	assert.Equal(t, []string{"Bob"}, m.MembersOf(loc))

	// Absent member and undefined room are both no-ops.
	assert.False(t, m.Leave(loc, "Alice"))
	assert.False(t, m.Leave(world.Location{X: 9}, "Bob"))
}

func TestMembersOfSorted(t *testing.T) {
	m := NewManager()
	loc := world.Origin
	for _, name := range []string{"carol", "alice", "bob"} {
		m.Join(loc, name)
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, m.MembersOf(loc))
	assert.Empty(t, m.MembersOf(world.Location{X: 1}))
}

func TestIsMember(t *testing.T) {
	m := NewManager()
	m.Join(world.Origin, "Alice")
	assert.True(t, m.IsMember(world.Origin, "Alice"))
	assert.False(t, m.IsMember(world.Origin, "Bob"))
	assert.False(t, m.IsMember(world.Location{X: 1}, "Alice"))
}

func TestConnectedSessions(t *testing.T) {
	m := NewManager()
	a := &stubConn{}
	_, err := m.Login("Alice", "t1", a)
	require.NoError(t, err)
	_, err = m.Login("Bob", "t2", &stubConn{})
	require.NoError(t, err)
	m.Disconnect("Alice", a)

	conns := m.ConnectedSessions()
	require.Len(t, conns, 1)
	assert.Equal(t, "Bob", conns[0].Username)
}

func TestConcurrentLoginMoveDisconnect(t *testing.T) {
	m := NewManager()
	const n = 100
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			conn := &stubConn{}
			_, err := m.Login(name, "tok", conn)
			if err != nil {
				return
			}
			m.Join(world.Origin, name)
			dest := world.Location{X: i % 3}
			m.Leave(world.Origin, name)
			m.SetLocation(name, dest)
			m.Join(dest, name)
			if i%2 == 0 {
				m.Disconnect(name, conn)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, m.SessionCount())
	total := 0
	for x := 0; x < 3; x++ {
		total += len(m.MembersOf(world.Location{X: x}))
	}
	total += len(m.MembersOf(world.Origin))
	assert.Equal(t, n/2, total)
	assert.Len(t, m.ConnectedSessions(), n/2)
}

// For any sequence of login, move, and disconnect, an identity is in at
// most one room's member set, and in exactly one iff it holds a live
// connection.
func TestPropertyMembershipConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager()
		locs := []world.Location{{}, {X: 1}, {Y: 1}, {Z: 1}}
		conns := make(map[string]*stubConn)

		names := []string{"a1", "b2", "c3", "d4", "e5"}
		numOps := rapid.IntRange(1, 60).Draw(t, "num_ops")
		for i := 0; i < numOps; i++ {
			name := names[rapid.IntRange(0, len(names)-1).Draw(t, "who")]
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0: // login and enter current location
				conn := &stubConn{}
				sess, err := m.Login(name, "tok", conn)
				if err != nil {
					t.Fatalf("login %s: %v", name, err)
				}
				conns[name] = conn
				m.Join(sess.Location, name)
			case 1: // move, if connected
				sess, ok := m.Get(name)
				if !ok || !sess.Connected {
					continue
				}
				dest := locs[rapid.IntRange(0, len(locs)-1).Draw(t, "dest")]
				m.Leave(sess.Location, name)
				m.SetLocation(name, dest)
				m.Join(dest, name)
			case 2: // disconnect
				m.Disconnect(name, conns[name])
			}
		}

		for _, name := range names {
			inRooms := 0
			for _, loc := range locs {
				if m.IsMember(loc, name) {
					inRooms++
				}
			}
			sess, known := m.Get(name)
			want := 0
			if known && sess.Connected {
				want = 1
			}
			if inRooms != want {
				t.Fatalf("%s in %d rooms, want %d (known=%v)", name, inRooms, want, known)
			}
		}
	})
}
