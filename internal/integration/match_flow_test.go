package integration

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ttt3d/ttt3d-server-go/internal/config"
	"github.com/ttt3d/ttt3d-server-go/internal/game"
	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
	"github.com/ttt3d/ttt3d-server-go/internal/game/cards"
	"github.com/ttt3d/ttt3d-server-go/internal/game/rules"
	"github.com/ttt3d/ttt3d-server-go/internal/game/watchers"
	"github.com/ttt3d/ttt3d-server-go/internal/repository"
	"go.uber.org/zap"
)

// randomMatch plays a full match from the default configuration with random
// moves, checking board consistency after every action.
type randomMatch struct {
	t       *testing.T
	game    *game.Game
	players []*board.Player
	moves   *rand.Rand
	lines   *watchers.LinesScoredWatcher
	actions int
}

func newRandomMatch(t *testing.T, seed int64) *randomMatch {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	players := make([]*board.Player, 0, len(cfg.Game.Players))
	for _, name := range cfg.Game.Players {
		players = append(players, board.NewPlayer(name))
	}
	g, err := game.NewGame(players, cfg.Game.PieceCap, cfg.Game.TurnLimit, rand.New(rand.NewSource(seed)),
		game.WithLogger(zap.NewNop()), game.WithReplay())
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}

	m := &randomMatch{
		t:       t,
		game:    g,
		players: players,
		moves:   rand.New(rand.NewSource(seed + 1)),
		lines:   watchers.NewLinesScoredWatcher(),
	}
	registry := rules.NewWatcherRegistry()
	registry.AddWatcher(m.lines)
	registry.Attach(g.Events())
	return m
}

func (m *randomMatch) randomPosition() board.Position {
	return board.NewPosition(m.moves.Intn(board.Size), m.moves.Intn(board.Size), m.moves.Intn(board.Size))
}

func (m *randomMatch) randomOwnPiece(player *board.Player) *board.Piece {
	pieces := player.PiecesOnBoard()
	if len(pieces) == 0 {
		return nil
	}
	return pieces[m.moves.Intn(len(pieces))]
}

func (m *randomMatch) play() {
	turns := rules.NewTurnManager(len(m.players))
	for !m.game.IsGameOver() {
		player := m.players[turns.ActiveIndex()]
		if m.game.ShouldOfferCard() {
			m.playCard(player)
		}
		m.takeTurn(player)
		if turns.EndTurn() {
			m.game.AdvanceRound()
			m.check()
		}
	}
}

func (m *randomMatch) playCard(player *board.Player) {
	offer := m.game.OfferCards()
	if len(offer) != game.OfferSize || offer[0].Kind() == offer[1].Kind() {
		m.t.Fatalf("Expected %d distinct cards, got %v", game.OfferSize, offer)
	}
	card := offer[m.moves.Intn(len(offer))]

	var ctx cards.ActionContext
	switch card.Kind() {
	case cards.KindLayerShiftUp, cards.KindLayerShiftDown:
		ctx = cards.LayerContext(m.moves.Intn(board.Size))
	case cards.KindEmpower, cards.KindTimeRewind:
		if piece := m.randomOwnPiece(player); piece != nil {
			ctx = cards.PieceContext(piece)
		}
	case cards.KindFreeze:
		ctx = cards.PositionContext(m.randomPosition())
	}
	m.game.UseCard(card, player, ctx)
	m.check()
}

func (m *randomMatch) takeTurn(player *board.Player) {
	for _, piece := range player.PiecesOnBoard() {
		if !piece.IsEmpowered() {
			continue
		}
		pos, _ := piece.Position()
		for _, target := range neighbours(pos) {
			if m.game.EmpoweredCapture(player, piece, target) {
				m.actions++
				m.check()
				return
			}
		}
	}
	// A full board of frozen or occupied cells is possible, so give up after a few tries.
	for attempt := 0; attempt < 50; attempt++ {
		if m.game.PlacePiece(player, m.randomPosition()) {
			m.actions++
			m.check()
			return
		}
	}
}

func neighbours(pos board.Position) []board.Position {
	return []board.Position{
		pos.Translate(1, 0, 0), pos.Translate(-1, 0, 0),
		pos.Translate(0, 1, 0), pos.Translate(0, -1, 0),
		pos.Translate(0, 0, 1), pos.Translate(0, 0, -1),
	}
}

func (m *randomMatch) check() {
	m.t.Helper()
	b := m.game.Board()
	pieceCap := m.game.PieceCap()
	onBoard := 0
	for _, player := range m.players {
		if player.PieceCount() > pieceCap {
			m.t.Fatalf("%s has %d pieces, cap is %d", player.Name, player.PieceCount(), pieceCap)
		}
		for _, piece := range player.PiecesOnBoard() {
			pos, ok := piece.Position()
			if !ok || b.GetPiece(pos) != piece {
				m.t.Fatalf("%s's queued piece is not on the board at %s", player.Name, pos)
			}
		}
		if got := len(b.PositionsOf(player)); got != player.PieceCount() {
			m.t.Fatalf("%s owns %d cells but has %d queued pieces", player.Name, got, player.PieceCount())
		}
		onBoard += player.PieceCount()

		scored := m.game.LinesScored(player)
		if player.Score() != len(scored) {
			m.t.Fatalf("%s score %d differs from %d scored lines", player.Name, player.Score(), len(scored))
		}
		if m.lines.GetCount(player.ID) != player.Score() {
			m.t.Fatalf("%s watcher saw %d lines, score is %d", player.Name, m.lines.GetCount(player.ID), player.Score())
		}
	}

	occupied := 0
	for x := 0; x < board.Size; x++ {
		for y := 0; y < board.Size; y++ {
			for z := 0; z < board.Size; z++ {
				pos := board.NewPosition(x, y, z)
				if !b.IsEmpty(pos) {
					occupied++
				}
				if b.FrozenTurnsRemaining(pos) > cards.FreezeTurns {
					m.t.Fatalf("Cell %s frozen for %d turns", pos, b.FrozenTurnsRemaining(pos))
				}
			}
		}
	}
	if occupied != onBoard {
		m.t.Fatalf("Board has %d pieces, players queue %d", occupied, onBoard)
	}
}

func TestMatchFlow_FullRandomMatch(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m := newRandomMatch(t, seed)
		var lastScores []int
		m.game.Events().SubscribeTyped(rules.EventRoundAdvanced, func(rules.Event) {
			for i, p := range m.players {
				if lastScores != nil && p.Score() < lastScores[i] {
					t.Fatalf("Score of %s went down", p.Name)
				}
			}
			lastScores = lastScores[:0]
			for _, p := range m.players {
				lastScores = append(lastScores, p.Score())
			}
		})

		m.play()

		if !m.game.IsGameOver() {
			t.Fatal("Expected game over")
		}
		if m.game.CurrentRound() != m.game.TurnLimit()+1 {
			t.Fatalf("Expected round %d, got %d", m.game.TurnLimit()+1, m.game.CurrentRound())
		}
		if m.actions == 0 {
			t.Fatal("Expected at least one action")
		}

		// One snapshot at creation, one per action, card and round.
		replay := m.game.Replay()
		if replay.Size() < 1+m.actions+m.game.TurnLimit() {
			t.Fatalf("Replay has %d states, expected at least %d", replay.Size(), 1+m.actions+m.game.TurnLimit())
		}
		last, _ := replay.GetStateAt(replay.Size() - 1)
		if last.Checksum != m.game.Board().Checksum() || !last.GameOver {
			t.Fatal("Last replay state does not match the final game")
		}

		result := repository.NewMatchResult(m.game.Snapshot(), time.Now())
		winners := m.game.Winners()
		if len(result.Winners()) != len(winners) {
			t.Fatalf("Expected %d winners, got %v", len(winners), result.Winners())
		}
		for i, w := range winners {
			if result.Winners()[i] != w.Name {
				t.Fatalf("Expected winner %s, got %s", w.Name, result.Winners()[i])
			}
		}
	}
}

func TestMatchFlow_SameSeedSameMatch(t *testing.T) {
	outcome := func() ([]int, []string) {
		m := newRandomMatch(t, 99)
		m.play()
		var scores []int
		for _, p := range m.players {
			scores = append(scores, p.Score())
		}
		var owners []string
		for _, cell := range m.game.Snapshot().Cells {
			owners = append(owners, cell.OwnerName)
		}
		return scores, owners
	}

	scoresA, ownersA := outcome()
	scoresB, ownersB := outcome()
	for i := range scoresA {
		if scoresA[i] != scoresB[i] {
			t.Fatalf("Scores differ: %v vs %v", scoresA, scoresB)
		}
	}
	for i := range ownersA {
		if ownersA[i] != ownersB[i] {
			t.Fatalf("Cell %d differs: %q vs %q", i, ownersA[i], ownersB[i])
		}
	}
}
