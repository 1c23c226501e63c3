package world

// Manager provides room lookup and legal-move resolution over the loaded
// world. The world is immutable after construction, so Manager is safe
// for concurrent use without locking.
type Manager struct {
	rooms map[Location]Room
}

// NewManager creates a Manager over the given rooms.
//
// Precondition: rooms must not be mutated after the call.
func NewManager(rooms map[Location]Room) *Manager {
	return &Manager{rooms: rooms}
}

// RoomAt returns the room at the given location.
//
// Postcondition: Returns (room, true) if the location exists, or
// (Room{}, false) otherwise.
func (m *Manager) RoomAt(loc Location) (Room, bool) {
	r, ok := m.rooms[loc]
	return r, ok
}

// Exists reports whether a room is defined at the given location.
func (m *Manager) Exists(loc Location) bool {
	_, ok := m.rooms[loc]
	return ok
}

// LegalMoves resolves the reachable neighbors of a location: each of the
// six directions whose destination has a defined room. The set is
// recomputed on every call; the world never changes and the result has
// at most six entries.
//
// Postcondition: Every value in the returned map is an existing room
// location.
func (m *Manager) LegalMoves(loc Location) map[Direction]Location {
	moves := make(map[Direction]Location, len(Directions))
	for _, dir := range Directions {
		dest := loc.Add(dir.Vector())
		if m.Exists(dest) {
			moves[dir] = dest
		}
	}
	return moves
}

// RoomCount returns the number of rooms in the world.
func (m *Manager) RoomCount() int {
	return len(m.rooms)
}
