package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPosition is returned by the raw mutators for out-of-bounds positions.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrNilPiece is returned by SetPiece when no piece is given.
	ErrNilPiece = errors.New("nil piece")
)

// Board is the 27-cell grid with a freeze counter per cell.
//
// SetPiece and RemovePiece are the only places a piece's position changes,
// so a cell and the piece it holds never disagree. Lookups such as GetPiece
// index the grid directly and panic on out-of-bounds positions; use InBounds
// first when the position comes from user input.
type Board struct {
	grid   [Size][Size][Size]*Piece
	frozen [Size][Size][Size]int
}

// NewBoard creates an empty, unfrozen board.
func NewBoard() *Board {
	return &Board{}
}

// InBounds reports whether every coordinate of pos is in [0, Size).
func InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < Size &&
		pos.Y >= 0 && pos.Y < Size &&
		pos.Z >= 0 && pos.Z < Size
}

// InBounds reports whether pos lies on this board.
func (b *Board) InBounds(pos Position) bool {
	return InBounds(pos)
}

// GetPiece returns the occupant of pos, or nil.
func (b *Board) GetPiece(pos Position) *Piece {
	return b.grid[pos.X][pos.Y][pos.Z]
}

// IsEmpty reports whether pos has no occupant.
func (b *Board) IsEmpty(pos Position) bool {
	return b.GetPiece(pos) == nil
}

// IsFrozen reports whether pos has a positive freeze counter.
func (b *Board) IsFrozen(pos Position) bool {
	return b.frozen[pos.X][pos.Y][pos.Z] > 0
}

// FrozenTurnsRemaining returns the freeze counter of pos, or 0 when pos is off the board.
func (b *Board) FrozenTurnsRemaining(pos Position) int {
	if !InBounds(pos) {
		return 0
	}
	return b.frozen[pos.X][pos.Y][pos.Z]
}

// FreezeCell raises the freeze counter of pos to turns. An existing longer
// freeze is kept. Out-of-bounds positions are ignored.
func (b *Board) FreezeCell(pos Position, turns int) {
	if !InBounds(pos) {
		return
	}
	b.frozen[pos.X][pos.Y][pos.Z] = max(b.frozen[pos.X][pos.Y][pos.Z], turns)
}

// TickFreezes decrements every positive freeze counter by one.
func (b *Board) TickFreezes() {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			for z := 0; z < Size; z++ {
				if b.frozen[x][y][z] > 0 {
					b.frozen[x][y][z]--
				}
			}
		}
	}
}

// SetPiece puts piece at pos and records pos on the piece. Occupancy and
// freeze state are not checked; an existing occupant is overwritten.
func (b *Board) SetPiece(pos Position, piece *Piece) error {
	if !InBounds(pos) {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	if piece == nil {
		return fmt.Errorf("%w at %s", ErrNilPiece, pos)
	}
	b.put(pos, piece)
	return nil
}

// RemovePiece clears pos and returns its former occupant (nil if empty),
// whose position is cleared as well.
func (b *Board) RemovePiece(pos Position) (*Piece, error) {
	if !InBounds(pos) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	return b.take(pos), nil
}

// put and take skip validation; pos must be in bounds.
func (b *Board) put(pos Position, piece *Piece) {
	b.grid[pos.X][pos.Y][pos.Z] = piece
	piece.place(pos)
}

func (b *Board) take(pos Position) *Piece {
	piece := b.grid[pos.X][pos.Y][pos.Z]
	b.grid[pos.X][pos.Y][pos.Z] = nil
	if piece != nil {
		piece.lift()
	}
	return piece
}

// ShiftLayerUp swaps layer with the one above it. It reports false and does
// nothing when there is no layer above.
func (b *Board) ShiftLayerUp(layer int) bool {
	return b.swapLayers(layer, layer+1)
}

// ShiftLayerDown swaps layer with the one below it. It reports false and does
// nothing when there is no layer below.
func (b *Board) ShiftLayerDown(layer int) bool {
	return b.swapLayers(layer, layer-1)
}

func (b *Board) swapLayers(from, to int) bool {
	if from < 0 || from >= Size || to < 0 || to >= Size {
		return false
	}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			b.grid[x][y][from], b.grid[x][y][to] = b.grid[x][y][to], b.grid[x][y][from]
			b.frozen[x][y][from], b.frozen[x][y][to] = b.frozen[x][y][to], b.frozen[x][y][from]
			if piece := b.grid[x][y][from]; piece != nil {
				piece.place(NewPosition(x, y, from))
			}
			if piece := b.grid[x][y][to]; piece != nil {
				piece.place(NewPosition(x, y, to))
			}
		}
	}
	return true
}

// EmpoweredCapture moves an empowered piece one step onto an adjacent,
// unfrozen cell held by another player and returns the captured piece.
// The piece loses its empowered flag. If any condition fails nothing
// changes and nil is returned.
func (b *Board) EmpoweredCapture(piece *Piece, target Position) *Piece {
	if piece == nil || !piece.IsEmpowered() {
		return nil
	}
	current, onBoard := piece.Position()
	if !onBoard {
		return nil
	}
	if !InBounds(target) || b.IsFrozen(target) {
		return nil
	}
	if current.ManhattanDistance(target) != 1 {
		return nil
	}
	occupant := b.GetPiece(target)
	if occupant == nil || occupant.Owner() == piece.Owner() {
		return nil
	}

	b.take(current)
	b.take(target)
	piece.SetEmpowered(false)
	b.put(target, piece)
	return occupant
}

// ListAllLines returns the 49 winning lines. Every call returns the same
// slice, which callers must not modify.
func (b *Board) ListAllLines() []Line {
	return allLines
}

// PositionsOf returns the set of cells occupied by player's pieces.
func (b *Board) PositionsOf(player *Player) map[Position]struct{} {
	owned := make(map[Position]struct{})
	b.forEachCell(func(pos Position, piece *Piece) {
		if piece != nil && piece.Owner() == player {
			owned[pos] = struct{}{}
		}
	})
	return owned
}

// IsLineOwnedBy reports whether all three cells of line hold pieces owned by player.
func (b *Board) IsLineOwnedBy(line Line, player *Player) bool {
	for _, pos := range line {
		piece := b.GetPiece(pos)
		if piece == nil || piece.Owner() != player {
			return false
		}
	}
	return true
}

// forEachCell visits cells in x, y, z order.
func (b *Board) forEachCell(fn func(pos Position, piece *Piece)) {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			for z := 0; z < Size; z++ {
				fn(NewPosition(x, y, z), b.grid[x][y][z])
			}
		}
	}
}
