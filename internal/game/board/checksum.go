package board

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Checksum returns a SHA-256 over a canonical text form of every cell:
// occupant owner, empowered flag, age, and freeze counter. Two boards with
// the same contents always produce the same checksum.
func (b *Board) Checksum() string {
	sum := sha256.Sum256([]byte(b.deterministicRepresentation()))
	return hex.EncodeToString(sum[:])
}

func (b *Board) deterministicRepresentation() string {
	var buf bytes.Buffer
	b.forEachCell(func(pos Position, piece *Piece) {
		frozen := b.frozen[pos.X][pos.Y][pos.Z]
		if piece == nil {
			fmt.Fprintf(&buf, "CELL:%s|-|%d\n", pos, frozen)
			return
		}
		fmt.Fprintf(&buf, "CELL:%s|%s|%s|%t|%d|%d\n",
			pos,
			ownerID(piece),
			piece.ID,
			piece.IsEmpowered(),
			piece.AgeTurns(),
			frozen,
		)
	})
	return buf.String()
}

func ownerID(piece *Piece) string {
	if piece.Owner() == nil {
		return "-"
	}
	return piece.Owner().ID
}
