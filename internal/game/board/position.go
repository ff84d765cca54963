package board

import "fmt"

// Size is the edge length of the cube.
const Size = 3

// Position is a cell coordinate. Z selects the layer.
type Position struct {
	X int
	Y int
	Z int
}

// NewPosition creates a position from its three coordinates.
func NewPosition(x, y, z int) Position {
	return Position{X: x, Y: y, Z: z}
}

// Translate returns the position offset by (dx, dy, dz). No bounds check is made.
func (p Position) Translate(dx, dy, dz int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// ManhattanDistance returns |dx|+|dy|+|dz| between two positions.
func (p Position) ManhattanDistance(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y) + abs(p.Z-other.Z)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
