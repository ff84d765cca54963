package game

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
	"github.com/ttt3d/ttt3d-server-go/internal/game/cards"
	"github.com/ttt3d/ttt3d-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// OfferSize is the number of distinct cards drawn per offer.
const OfferSize = 2

// RandomSource supplies the randomness for card offers. *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// ScoredLine is a line that paid out to a player.
type ScoredLine struct {
	Player *board.Player
	Line   board.Line
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithEventBus publishes game events to bus instead of a private bus.
func WithEventBus(bus *rules.EventBus) Option {
	return func(g *Game) {
		if bus != nil {
			g.bus = bus
		}
	}
}

// WithID overrides the generated game ID.
func WithID(id string) Option {
	return func(g *Game) {
		if id != "" {
			g.id = id
		}
	}
}

// WithReplay records a snapshot after construction and after every successful mutation.
func WithReplay() Option {
	return func(g *Game) {
		g.replay = NewReplay(g.id)
	}
}

// Game owns the board and the players and enforces the rules. It is the only
// thing a front end should mutate state through.
//
// Rule violations (bad cell, illegal capture) are reported as false and leave
// the game untouched. A Game is not safe for concurrent use; callers must
// serialize access.
type Game struct {
	id                 string
	board              *board.Board
	players            []*board.Player
	scoredLines        map[*board.Player]map[board.Line]struct{}
	lastCompletedLines []ScoredLine
	pieceCap           int
	turnLimit          int
	currentRound       int
	rng                RandomSource
	bus                *rules.EventBus
	replay             *Replay
	logger             *zap.Logger
}

// NewGame creates a game at round 1 with the given fixed turn order.
func NewGame(players []*board.Player, pieceCap, turnLimit int, rng RandomSource, opts ...Option) (*Game, error) {
	if len(players) == 0 {
		return nil, errors.New("at least one player required")
	}
	if pieceCap < 1 {
		return nil, fmt.Errorf("piece cap must be positive, got %d", pieceCap)
	}
	if turnLimit < 1 {
		return nil, fmt.Errorf("turn limit must be positive, got %d", turnLimit)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	g := &Game{
		id:           uuid.New().String(),
		board:        board.NewBoard(),
		players:      make([]*board.Player, 0, len(players)),
		scoredLines:  make(map[*board.Player]map[board.Line]struct{}, len(players)),
		pieceCap:     pieceCap,
		turnLimit:    turnLimit,
		currentRound: 1,
		rng:          rng,
		bus:          rules.NewEventBus(),
		logger:       zap.NewNop(),
	}
	for _, player := range players {
		if player == nil {
			return nil, errors.New("nil player")
		}
		if _, dup := g.scoredLines[player]; dup {
			return nil, fmt.Errorf("player %q listed twice", player.Name)
		}
		g.players = append(g.players, player)
		g.scoredLines[player] = make(map[board.Line]struct{})
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.replay != nil {
		g.replay.GameID = g.id
	}

	g.logger.Info("game created",
		zap.String("game_id", g.id),
		zap.Int("players", len(g.players)),
		zap.Int("piece_cap", pieceCap),
		zap.Int("turn_limit", turnLimit),
	)
	g.recordState()
	return g, nil
}

// ID returns the game's identifier.
func (g *Game) ID() string {
	return g.id
}

// Board returns the board for read access. Mutate only through Game.
func (g *Game) Board() *board.Board {
	return g.board
}

// Players returns the players in turn order.
func (g *Game) Players() []*board.Player {
	result := make([]*board.Player, len(g.players))
	copy(result, g.players)
	return result
}

// CurrentRound returns the 1-based round number.
func (g *Game) CurrentRound() int {
	return g.currentRound
}

// TurnLimit returns the last playable round.
func (g *Game) TurnLimit() int {
	return g.turnLimit
}

// PieceCap returns the maximum number of pieces a player may have on the board.
func (g *Game) PieceCap() int {
	return g.pieceCap
}

// Events returns the bus game events are published on.
func (g *Game) Events() *rules.EventBus {
	return g.bus
}

// Replay returns the recorded snapshots, or nil unless WithReplay was given.
func (g *Game) Replay() *Replay {
	return g.replay
}

// IsGameOver reports whether the turn limit has been passed.
func (g *Game) IsGameOver() bool {
	return rules.IsGameOver(g.currentRound, g.turnLimit)
}

// ShouldOfferCard reports whether cards are offered this round (3, 5, 7, ...).
func (g *Game) ShouldOfferCard() bool {
	return rules.ShouldOfferCard(g.currentRound)
}

// LastCompletedLines returns the lines scored by the most recent scoring pass.
func (g *Game) LastCompletedLines() []ScoredLine {
	result := make([]ScoredLine, len(g.lastCompletedLines))
	copy(result, g.lastCompletedLines)
	return result
}

// LinesScored returns every line that has paid out to player, in line order.
func (g *Game) LinesScored(player *board.Player) []board.Line {
	scored := g.scoredLines[player]
	result := make([]board.Line, 0, len(scored))
	for _, line := range g.board.ListAllLines() {
		if _, ok := scored[line]; ok {
			result = append(result, line)
		}
	}
	return result
}

// Winners returns the players with the highest score; several on a tie.
func (g *Game) Winners() []*board.Player {
	best := -1
	var winners []*board.Player
	for _, player := range g.players {
		switch {
		case player.Score() > best:
			best = player.Score()
			winners = []*board.Player{player}
		case player.Score() == best:
			winners = append(winners, player)
		}
	}
	return winners
}

// PlacePiece puts a new piece for player at pos. It fails if pos is off the
// board, frozen or occupied. When the player is at the piece cap their
// oldest piece is removed first. Completed lines are scored.
func (g *Game) PlacePiece(player *board.Player, pos board.Position) bool {
	if !g.acceptsActionFrom(player) {
		return false
	}
	if !g.board.InBounds(pos) || g.board.IsFrozen(pos) || !g.board.IsEmpty(pos) {
		g.logger.Debug("placement rejected",
			zap.String("game_id", g.id),
			zap.String("player", player.Name),
			zap.Stringer("position", pos),
		)
		return false
	}

	g.enforcePieceCap(player)
	piece := board.NewPiece(player, g.currentRound)
	if err := g.board.SetPiece(pos, piece); err != nil {
		// Unreachable: pos was bounds-checked above.
		g.logger.Error("failed to set piece", zap.String("game_id", g.id), zap.Error(err))
		return false
	}
	player.Enqueue(piece)

	event := g.newEvent(rules.EventPiecePlaced, player)
	event.PieceID = piece.ID
	event.Positions = []board.Position{pos}
	g.bus.Publish(event)
	g.logger.Debug("piece placed",
		zap.String("game_id", g.id),
		zap.String("player", player.Name),
		zap.Stringer("position", pos),
		zap.Int("round", g.currentRound),
	)

	g.scoreNewLines(player)
	g.recordState()
	return true
}

// enforcePieceCap evicts the player's oldest piece when they are at the cap.
func (g *Game) enforcePieceCap(player *board.Player) {
	if player.PieceCount() < g.pieceCap {
		return
	}
	oldest := player.DequeueOldest()
	if oldest == nil {
		return
	}
	pos, onBoard := oldest.Position()
	if onBoard {
		if _, err := g.board.RemovePiece(pos); err != nil {
			g.logger.Error("failed to evict piece", zap.String("game_id", g.id), zap.Error(err))
		}
	}

	event := g.newEvent(rules.EventPieceEvicted, player)
	event.PieceID = oldest.ID
	if onBoard {
		event.Positions = []board.Position{pos}
	}
	g.bus.Publish(event)
	g.logger.Info("piece evicted",
		zap.String("game_id", g.id),
		zap.String("player", player.Name),
		zap.Stringer("position", pos),
	)
}

// scoreNewLines awards one point per line fully owned by player that has
// never paid out to them before. A recorded line never scores again, even
// if it is broken and re-formed later. LINE_SCORED events go out together
// once the pass is done. Returns the number of new lines.
func (g *Game) scoreNewLines(player *board.Player) int {
	g.lastCompletedLines = g.lastCompletedLines[:0]
	scored := g.scoredLines[player]
	var events []rules.Event
	for _, line := range g.board.ListAllLines() {
		if !g.board.IsLineOwnedBy(line, player) {
			continue
		}
		if _, done := scored[line]; done {
			continue
		}
		scored[line] = struct{}{}
		player.AddScore(1)
		g.lastCompletedLines = append(g.lastCompletedLines, ScoredLine{Player: player, Line: line})

		event := g.newEvent(rules.EventLineScored, player)
		event.Amount = 1
		event.Positions = line[:]
		event.Metadata["line"] = line.String()
		events = append(events, event)
		g.logger.Info("line scored",
			zap.String("game_id", g.id),
			zap.String("player", player.Name),
			zap.Stringer("line", line),
			zap.Int("score", player.Score()),
		)
	}
	g.bus.PublishBatch(events)
	return len(g.lastCompletedLines)
}

// AdvanceRound ends the round: freeze counters tick and every piece on the
// board ages by one. Passing the turn limit ends the game.
func (g *Game) AdvanceRound() {
	if g.IsGameOver() {
		return
	}
	g.currentRound++
	g.board.TickFreezes()
	for _, player := range g.players {
		for _, piece := range player.PiecesOnBoard() {
			piece.IncrementAge()
		}
	}

	g.bus.Publish(g.newEvent(rules.EventRoundAdvanced, nil))
	g.logger.Info("round advanced",
		zap.String("game_id", g.id),
		zap.Int("round", g.currentRound),
	)
	if g.IsGameOver() {
		g.bus.Publish(g.newEvent(rules.EventGameOver, nil))
		g.logger.Info("game over",
			zap.String("game_id", g.id),
			zap.Int("rounds", g.turnLimit),
		)
	}
	g.recordState()
}

// EmpoweredCapture moves player's empowered piece onto an adjacent enemy
// piece, removing it. Only the capturing player is rescored; the victim's
// score and scored lines are never revisited.
func (g *Game) EmpoweredCapture(player *board.Player, piece *board.Piece, target board.Position) bool {
	if !g.acceptsActionFrom(player) {
		return false
	}
	if piece == nil || piece.Owner() != player {
		return false
	}
	source, _ := piece.Position()
	captured := g.board.EmpoweredCapture(piece, target)
	if captured == nil {
		g.logger.Debug("capture rejected",
			zap.String("game_id", g.id),
			zap.String("player", player.Name),
			zap.Stringer("target", target),
		)
		return false
	}
	victim := captured.Owner()
	if victim != nil {
		victim.RemovePiece(captured)
	}

	event := g.newEvent(rules.EventPieceCaptured, player)
	event.PieceID = captured.ID
	if victim != nil {
		event.TargetID = victim.ID
	}
	event.Positions = []board.Position{source, target}
	g.bus.Publish(event)
	g.logger.Info("piece captured",
		zap.String("game_id", g.id),
		zap.String("player", player.Name),
		zap.Stringer("from", source),
		zap.Stringer("target", target),
	)

	g.scoreNewLines(player)
	g.recordState()
	return true
}

// OfferCards draws OfferSize distinct cards uniformly from the deck.
func (g *Game) OfferCards() []cards.Card {
	deck := cards.Deck()
	first := g.rng.Intn(len(deck))
	second := g.rng.Intn(len(deck))
	for second == first {
		second = g.rng.Intn(len(deck))
	}
	offer := []cards.Card{deck[first], deck[second]}

	event := g.newEvent(rules.EventCardsOffered, nil)
	event.Data = offer[0].Name() + "," + offer[1].Name()
	g.bus.Publish(event)
	return offer
}

// UseCard applies card for player and reports whether the player's score
// went up. Empower and the layer shifts can complete a line without a
// placement, so the player is rescored after them. A card with no usable
// target changes nothing and publishes no CARD_PLAYED; its rescoring pass
// still runs.
func (g *Game) UseCard(card cards.Card, player *board.Player, ctx cards.ActionContext) bool {
	if card == nil || !g.acceptsActionFrom(player) {
		return false
	}
	previous := player.Score()
	if !card.Apply(g.board, player, ctx) {
		g.logger.Debug("card had no effect",
			zap.String("game_id", g.id),
			zap.String("player", player.Name),
			zap.String("card", card.Name()),
		)
		if card.Kind().RescoresAfterApply() && g.scoreNewLines(player) > 0 {
			g.recordState()
		}
		return player.Score() > previous
	}

	event := g.newEvent(rules.EventCardPlayed, player)
	event.Data = card.Name()
	event.Amount = ctx.Layer
	event.Metadata["kind"] = strconv.Itoa(int(card.Kind()))
	if ctx.Piece != nil {
		event.PieceID = ctx.Piece.ID
	}
	if ctx.Pos != nil {
		event.Positions = []board.Position{*ctx.Pos}
	}
	g.bus.Publish(event)
	g.logger.Info("card played",
		zap.String("game_id", g.id),
		zap.String("player", player.Name),
		zap.String("card", card.Name()),
	)

	if card.Kind().RescoresAfterApply() {
		g.scoreNewLines(player)
	}
	g.recordState()
	return player.Score() > previous
}

// acceptsActionFrom rejects actions once the game is over and from players
// not seated in this game.
func (g *Game) acceptsActionFrom(player *board.Player) bool {
	if g.IsGameOver() {
		return false
	}
	_, seated := g.scoredLines[player]
	return seated
}

func (g *Game) newEvent(eventType rules.EventType, player *board.Player) rules.Event {
	playerID := ""
	if player != nil {
		playerID = player.ID
	}
	return rules.NewEvent(eventType, g.id, playerID, g.currentRound)
}

func (g *Game) recordState() {
	if g.replay != nil {
		g.replay.RecordState(g.Snapshot())
	}
}
