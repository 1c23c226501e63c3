package gameserver

import (
	"github.com/cory-johannsen/gridmud/internal/game/world"
)

// Outbound event names.
const (
	// EventMessage carries a chat line or system notice.
	EventMessage = "message"
	// EventRoomEnter is the full room snapshot sent only to the entering
	// connection.
	EventRoomEnter = "room_enter"
	// EventRoomJoin is the incremental membership delta broadcast to room
	// occupants when someone arrives.
	EventRoomJoin = "room_join"
	// EventRoomLeft is the incremental membership delta broadcast to room
	// occupants when someone leaves.
	EventRoomLeft = "room_left"
)

// MessageEvent is a chat line. Sender is a username or one of the
// reserved pseudo-senders SERVER and LOG.
type MessageEvent struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

// RoomEnterEvent is the full room snapshot for a newly entered room. The
// member list is computed before the entering user joins, so it never
// includes them.
type RoomEnterEvent struct {
	Members     []string                          `json:"members"`
	Label       string                            `json:"label"`
	Location    world.Location                    `json:"location"`
	Description string                            `json:"description"`
	Directions  map[world.Direction]world.Location `json:"directions"`
}

// RoomJoinEvent announces a new room member to occupants.
type RoomJoinEvent struct {
	Member string `json:"member"`
}

// RoomLeftEvent announces a departed room member to occupants.
type RoomLeftEvent struct {
	Member string `json:"member"`
}
