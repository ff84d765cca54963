package cards

import (
	"fmt"

	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
)

// FreezeTurns is how many rounds a Freeze card locks a cell for.
const FreezeTurns = 2

// Kind identifies one of the five card variants.
type Kind int

const (
	KindEmpower Kind = iota
	KindLayerShiftUp
	KindLayerShiftDown
	KindTimeRewind
	KindFreeze
)

var kindNames = map[Kind]string{
	KindEmpower:        "Empower",
	KindLayerShiftUp:   "Layer Shift Up",
	KindLayerShiftDown: "Layer Shift Down",
	KindTimeRewind:     "Time Rewind",
	KindFreeze:         "Freeze",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CARD_%d", int(k))
}

// RescoresAfterApply reports whether playing this kind can complete a line
// without a placement, so the player must be rescored afterwards.
func (k Kind) RescoresAfterApply() bool {
	switch k {
	case KindEmpower, KindLayerShiftUp, KindLayerShiftDown:
		return true
	default:
		return false
	}
}

// ActionContext carries the arguments for one card application.
// Each card reads only the fields it needs:
//   - Empower, TimeRewind: Piece
//   - LayerShiftUp, LayerShiftDown: Layer
//   - Freeze: Pos
//
// Target is carried for front ends that collect a capture target alongside
// an Empower choice; no card reads it.
type ActionContext struct {
	Layer  int
	Pos    *board.Position
	Target *board.Position
	Piece  *board.Piece
}

// LayerContext builds a context for the layer shift cards.
func LayerContext(layer int) ActionContext {
	return ActionContext{Layer: layer}
}

// PieceContext builds a context for Empower and TimeRewind.
func PieceContext(piece *board.Piece) ActionContext {
	return ActionContext{Piece: piece}
}

// PositionContext builds a context for Freeze.
func PositionContext(pos board.Position) ActionContext {
	return ActionContext{Pos: &pos}
}

// Card is a stateless power card. Apply does not check ownership. It reports
// false and changes nothing when the context has no usable target: a missing
// piece, a layer with no neighbour in the shift direction, or a missing or
// off-board cell.
type Card interface {
	Kind() Kind
	Name() string
	Apply(b *board.Board, player *board.Player, ctx ActionContext) bool
}

type baseCard struct {
	kind Kind
}

func (c baseCard) Kind() Kind {
	return c.kind
}

func (c baseCard) Name() string {
	return c.kind.String()
}

// EmpowerCard lets one piece make a single capture move.
type EmpowerCard struct{ baseCard }

// NewEmpowerCard creates an Empower card.
func NewEmpowerCard() *EmpowerCard {
	return &EmpowerCard{baseCard{KindEmpower}}
}

// Apply marks ctx.Piece as empowered.
func (c *EmpowerCard) Apply(_ *board.Board, _ *board.Player, ctx ActionContext) bool {
	if ctx.Piece == nil {
		return false
	}
	ctx.Piece.SetEmpowered(true)
	return true
}

// LayerShiftUpCard swaps a layer with the one above it.
type LayerShiftUpCard struct{ baseCard }

// NewLayerShiftUpCard creates a Layer Shift Up card.
func NewLayerShiftUpCard() *LayerShiftUpCard {
	return &LayerShiftUpCard{baseCard{KindLayerShiftUp}}
}

// Apply shifts ctx.Layer up.
func (c *LayerShiftUpCard) Apply(b *board.Board, _ *board.Player, ctx ActionContext) bool {
	return b.ShiftLayerUp(ctx.Layer)
}

// LayerShiftDownCard swaps a layer with the one below it.
type LayerShiftDownCard struct{ baseCard }

// NewLayerShiftDownCard creates a Layer Shift Down card.
func NewLayerShiftDownCard() *LayerShiftDownCard {
	return &LayerShiftDownCard{baseCard{KindLayerShiftDown}}
}

// Apply shifts ctx.Layer down.
func (c *LayerShiftDownCard) Apply(b *board.Board, _ *board.Player, ctx ActionContext) bool {
	return b.ShiftLayerDown(ctx.Layer)
}

// TimeRewindCard resets a piece's age and makes it the newest in its owner's queue.
type TimeRewindCard struct{ baseCard }

// NewTimeRewindCard creates a Time Rewind card.
func NewTimeRewindCard() *TimeRewindCard {
	return &TimeRewindCard{baseCard{KindTimeRewind}}
}

// Apply rewinds ctx.Piece.
func (c *TimeRewindCard) Apply(_ *board.Board, _ *board.Player, ctx ActionContext) bool {
	if ctx.Piece == nil {
		return false
	}
	ctx.Piece.ResetAge()
	if owner := ctx.Piece.Owner(); owner != nil {
		owner.MoveToBack(ctx.Piece)
	}
	return true
}

// FreezeCard locks a cell for FreezeTurns rounds.
type FreezeCard struct{ baseCard }

// NewFreezeCard creates a Freeze card.
func NewFreezeCard() *FreezeCard {
	return &FreezeCard{baseCard{KindFreeze}}
}

// Apply freezes ctx.Pos.
func (c *FreezeCard) Apply(b *board.Board, _ *board.Player, ctx ActionContext) bool {
	if ctx.Pos == nil || !board.InBounds(*ctx.Pos) {
		return false
	}
	b.FreezeCell(*ctx.Pos, FreezeTurns)
	return true
}

// Deck returns the five cards in a fixed order.
func Deck() []Card {
	return []Card{
		NewEmpowerCard(),
		NewLayerShiftUpCard(),
		NewLayerShiftDownCard(),
		NewTimeRewindCard(),
		NewFreezeCard(),
	}
}
