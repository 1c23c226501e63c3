// Package world provides the game world model: the discrete 3D room grid,
// directions, and legal-move resolution.
package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Location is a point in the discrete 3D room grid. It is an immutable
// value type: equality and map-key hashing are by component values.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Key returns the canonical string form "x,y,z" used to key world files.
//
// Postcondition: ParseKey(loc.Key()) == loc.
func (l Location) Key() string {
	return fmt.Sprintf("%d,%d,%d", l.X, l.Y, l.Z)
}

// Add returns the location offset by the given vector.
func (l Location) Add(v Vector) Location {
	return Location{X: l.X + v.DX, Y: l.Y + v.DY, Z: l.Z + v.DZ}
}

// Origin is the default location for newly created sessions.
var Origin = Location{}

// ParseKey parses a canonical "x,y,z" key into a Location.
//
// Postcondition: Returns the Location or a non-nil error if the key does
// not consist of exactly three comma-separated integers.
func ParseKey(key string) (Location, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return Location{}, fmt.Errorf("location key %q: want 3 components, got %d", key, len(parts))
	}
	var coords [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Location{}, fmt.Errorf("location key %q: component %d: %w", key, i, err)
		}
		coords[i] = n
	}
	return Location{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// Vector is a unit offset in the grid.
type Vector struct {
	DX, DY, DZ int
}

// Direction names one of the six axis-aligned moves. The constants are
// the uppercase wire names sent to clients in room_enter snapshots.
type Direction string

// The six axis-aligned directions.
const (
	East  Direction = "EAST"  // +x
	West  Direction = "WEST"  // -x
	Up    Direction = "UP"    // +y
	Down  Direction = "DOWN"  // -y
	North Direction = "NORTH" // +z
	South Direction = "SOUTH" // -z
)

// Directions lists all six directions in a stable order.
var Directions = []Direction{East, West, Up, Down, North, South}

var directionVectors = map[Direction]Vector{
	East:  {DX: 1},
	West:  {DX: -1},
	Up:    {DY: 1},
	Down:  {DY: -1},
	North: {DZ: 1},
	South: {DZ: -1},
}

// Vector returns the unit offset for the direction.
//
// Precondition: d must be one of the six direction constants.
func (d Direction) Vector() Vector {
	return directionVectors[d]
}

// Opposite returns the reverse of a direction, or an empty string for an
// unknown one.
func (d Direction) Opposite() Direction {
	switch d {
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	case North:
		return South
	case South:
		return North
	default:
		return ""
	}
}

// FromCommand maps a lowercase command word ("north", "up", ...) to its
// Direction.
//
// Postcondition: Returns (direction, true) for the six movement words, or
// ("", false) otherwise.
func FromCommand(name string) (Direction, bool) {
	d := Direction(strings.ToUpper(name))
	if _, ok := directionVectors[d]; !ok {
		return "", false
	}
	return d, true
}

// Room is a read-only world entry. A coordinate with no Room is not a
// valid destination.
type Room struct {
	// Location is the room's grid coordinate.
	Location Location
	// Label is the short display name of the room.
	Label string
	// Description is the room description shown to players on entry.
	Description string
}
