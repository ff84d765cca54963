package board

import "github.com/google/uuid"

// Player holds a name, a score and the FIFO queue of its pieces on the board.
// The front of the queue is the oldest piece and the first to be evicted.
type Player struct {
	ID     string
	Name   string
	score  int
	pieces []*Piece
}

// NewPlayer creates a player with a zero score and no pieces.
func NewPlayer(name string) *Player {
	return &Player{
		ID:     uuid.New().String(),
		Name:   name,
		pieces: make([]*Piece, 0),
	}
}

// Score returns the player's current score.
func (p *Player) Score() int {
	return p.score
}

// AddScore adds delta to the score. Negative deltas are ignored; scores never decrease.
func (p *Player) AddScore(delta int) {
	if delta > 0 {
		p.score += delta
	}
}

// PiecesOnBoard returns a copy of the queue, oldest first.
func (p *Player) PiecesOnBoard() []*Piece {
	result := make([]*Piece, len(p.pieces))
	copy(result, p.pieces)
	return result
}

// PieceCount returns the number of pieces in the queue.
func (p *Player) PieceCount() int {
	return len(p.pieces)
}

// Enqueue appends a piece to the back of the queue.
func (p *Player) Enqueue(piece *Piece) {
	p.pieces = append(p.pieces, piece)
}

// DequeueOldest removes and returns the front of the queue, or nil when empty.
func (p *Player) DequeueOldest() *Piece {
	if len(p.pieces) == 0 {
		return nil
	}
	oldest := p.pieces[0]
	p.pieces[0] = nil
	p.pieces = p.pieces[1:]
	return oldest
}

// RemovePiece drops piece from the queue. Returns false if it was not queued.
func (p *Player) RemovePiece(piece *Piece) bool {
	idx := p.indexOf(piece)
	if idx < 0 {
		return false
	}
	p.pieces = append(p.pieces[:idx], p.pieces[idx+1:]...)
	return true
}

// MoveToBack makes piece the newest entry in the queue.
// Returns false, leaving the queue untouched, if piece was not queued.
func (p *Player) MoveToBack(piece *Piece) bool {
	if !p.RemovePiece(piece) {
		return false
	}
	p.pieces = append(p.pieces, piece)
	return true
}

func (p *Player) indexOf(piece *Piece) int {
	for i, queued := range p.pieces {
		if queued == piece {
			return i
		}
	}
	return -1
}
