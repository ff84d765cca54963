package board

import "strings"

// LineCount is the number of distinct three-in-a-row lines in a 3x3x3 cube.
const LineCount = 49

// Line is a fixed sequence of three positions. Lines are comparable and are
// used directly as identities when recording which lines have scored.
type Line [Size]Position

func (l Line) String() string {
	parts := make([]string, len(l))
	for i, pos := range l {
		parts[i] = pos.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Contains reports whether pos is one of the line's cells.
func (l Line) Contains(pos Position) bool {
	for _, p := range l {
		if p == pos {
			return true
		}
	}
	return false
}

// directions holds one representative of each antipodal pair: 3 axes,
// 6 face diagonals and 4 space diagonals.
var directions = [13][3]int{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{1, 1, 0}, {1, 0, 1}, {0, 1, 1},
	{1, -1, 0}, {1, 0, -1}, {0, 1, -1},
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1},
	{1, -1, -1},
}

// allLines is computed once and shared by every board.
var allLines = enumerateLines()

func enumerateLines() []Line {
	lines := make([]Line, 0, LineCount)
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			for z := 0; z < Size; z++ {
				start := NewPosition(x, y, z)
				for _, dir := range directions {
					if !isCanonicalStart(start, dir) {
						continue
					}
					if line, ok := walkLine(start, dir); ok {
						lines = append(lines, line)
					}
				}
			}
		}
	}
	return lines
}

// isCanonicalStart is true when stepping backwards from start leaves the grid,
// so each geometric line is emitted from exactly one end.
func isCanonicalStart(start Position, dir [3]int) bool {
	return !InBounds(start.Translate(-dir[0], -dir[1], -dir[2]))
}

func walkLine(start Position, dir [3]int) (Line, bool) {
	var line Line
	cursor := start
	for step := 0; step < Size; step++ {
		if !InBounds(cursor) {
			return Line{}, false
		}
		line[step] = cursor
		cursor = cursor.Translate(dir[0], dir[1], dir[2])
	}
	return line, true
}
