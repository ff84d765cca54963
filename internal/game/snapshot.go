package game

import (
	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
)

// PlayerSnapshot captures player data for front ends.
type PlayerSnapshot struct {
	ID            string
	Name          string
	Score         int
	PiecesOnBoard int
	LinesScored   int
}

// CellSnapshot captures one cell. OwnerID is empty for an empty cell.
type CellSnapshot struct {
	Position    board.Position
	OwnerID     string
	OwnerName   string
	Empowered   bool
	AgeTurns    int
	FrozenTurns int
}

// LineSnapshot captures a scored line.
type LineSnapshot struct {
	PlayerID string
	Line     board.Line
}

// GameSnapshot is a consistent, copy-only view of a game.
type GameSnapshot struct {
	GameID             string
	Round              int
	TurnLimit          int
	PieceCap           int
	GameOver           bool
	OfferCards         bool
	Players            []PlayerSnapshot
	Cells              []CellSnapshot // x, y, z order; always 27 entries
	LastCompletedLines []LineSnapshot
	Checksum           string
}

// Cell returns the snapshot of pos, and false when pos is off the board.
func (s GameSnapshot) Cell(pos board.Position) (CellSnapshot, bool) {
	if !board.InBounds(pos) || len(s.Cells) != board.Size*board.Size*board.Size {
		return CellSnapshot{}, false
	}
	return s.Cells[(pos.X*board.Size+pos.Y)*board.Size+pos.Z], true
}

// Snapshot captures the current state.
func (g *Game) Snapshot() GameSnapshot {
	snapshot := GameSnapshot{
		GameID:     g.id,
		Round:      g.currentRound,
		TurnLimit:  g.turnLimit,
		PieceCap:   g.pieceCap,
		GameOver:   g.IsGameOver(),
		OfferCards: g.ShouldOfferCard(),
		Players:    make([]PlayerSnapshot, 0, len(g.players)),
		Cells:      make([]CellSnapshot, 0, board.Size*board.Size*board.Size),
		Checksum:   g.board.Checksum(),
	}

	for _, player := range g.players {
		snapshot.Players = append(snapshot.Players, PlayerSnapshot{
			ID:            player.ID,
			Name:          player.Name,
			Score:         player.Score(),
			PiecesOnBoard: player.PieceCount(),
			LinesScored:   len(g.scoredLines[player]),
		})
	}

	for x := 0; x < board.Size; x++ {
		for y := 0; y < board.Size; y++ {
			for z := 0; z < board.Size; z++ {
				pos := board.NewPosition(x, y, z)
				cell := CellSnapshot{
					Position:    pos,
					FrozenTurns: g.board.FrozenTurnsRemaining(pos),
				}
				if piece := g.board.GetPiece(pos); piece != nil {
					if owner := piece.Owner(); owner != nil {
						cell.OwnerID = owner.ID
						cell.OwnerName = owner.Name
					}
					cell.Empowered = piece.IsEmpowered()
					cell.AgeTurns = piece.AgeTurns()
				}
				snapshot.Cells = append(snapshot.Cells, cell)
			}
		}
	}

	for _, scored := range g.lastCompletedLines {
		snapshot.LastCompletedLines = append(snapshot.LastCompletedLines, LineSnapshot{
			PlayerID: scored.Player.ID,
			Line:     scored.Line,
		})
	}
	return snapshot
}
