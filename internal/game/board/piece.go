package board

import "github.com/google/uuid"

// Piece is a mark placed on the board by a player.
// Its position is only ever changed by Board so that the cell and the
// piece always agree on where the piece is.
type Piece struct {
	ID             string
	owner          *Player
	placementIndex int
	empowered      bool
	ageTurns       int
	position       Position
	onBoard        bool
}

// NewPiece creates an off-board piece for owner, stamped with the round it was created in.
func NewPiece(owner *Player, placementIndex int) *Piece {
	return &Piece{
		ID:             uuid.New().String(),
		owner:          owner,
		placementIndex: placementIndex,
	}
}

// Owner returns the player that placed the piece.
func (p *Piece) Owner() *Player {
	return p.owner
}

// PlacementIndex returns the round number the piece was created in.
func (p *Piece) PlacementIndex() int {
	return p.placementIndex
}

// IsEmpowered reports whether the piece may make one capture move.
func (p *Piece) IsEmpowered() bool {
	return p.empowered
}

// SetEmpowered sets or clears the empowered flag.
func (p *Piece) SetEmpowered(empowered bool) {
	p.empowered = empowered
}

// AgeTurns returns the number of rounds the piece has spent on the board since its last reset.
func (p *Piece) AgeTurns() int {
	return p.ageTurns
}

// IncrementAge adds one round to the piece's age.
func (p *Piece) IncrementAge() {
	p.ageTurns++
}

// ResetAge sets the age back to zero.
func (p *Piece) ResetAge() {
	p.ageTurns = 0
}

// TurnsLifeRemaining is informational; pieces are only ever evicted by the cap.
func (p *Piece) TurnsLifeRemaining(limit int) int {
	return max(0, limit-p.ageTurns)
}

// Position returns the cell the piece occupies, and false when it is off the board.
func (p *Piece) Position() (Position, bool) {
	return p.position, p.onBoard
}

// OnBoard reports whether the piece currently occupies a cell.
func (p *Piece) OnBoard() bool {
	return p.onBoard
}

func (p *Piece) place(pos Position) {
	p.position = pos
	p.onBoard = true
}

func (p *Piece) lift() {
	p.position = Position{}
	p.onBoard = false
}
