package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ttt3d/ttt3d-server-go/internal/game"
	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
	"github.com/ttt3d/ttt3d-server-go/internal/game/cards"
	"github.com/ttt3d/ttt3d-server-go/internal/game/rules"
)

type verb string

const (
	verbPlace   verb = "place"
	verbCapture verb = "capture"
	verbPass    verb = "pass"
	verbStatus  verb = "status"
)

// command is one parsed line of player input.
type command struct {
	verb      verb
	positions []board.Position
}

var errUsage = errors.New("usage: place x y z | capture x y z x y z | pass | status")

// parseCommand parses an action line. Coordinates are only range-checked by the game.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errUsage
	}

	cmd := command{verb: verb(fields[0])}
	args := fields[1:]
	want := 0
	switch cmd.verb {
	case verbPlace:
		want = 3
	case verbCapture:
		want = 6
	case verbPass, verbStatus:
	default:
		return command{}, fmt.Errorf("unknown action %q: %w", fields[0], errUsage)
	}
	if len(args) != want {
		return command{}, fmt.Errorf("%s takes %d numbers, got %d: %w", cmd.verb, want, len(args), errUsage)
	}
	for i := 0; i < len(args); i += 3 {
		pos, err := parsePosition(args[i : i+3])
		if err != nil {
			return command{}, err
		}
		cmd.positions = append(cmd.positions, pos)
	}
	return cmd, nil
}

// parsePosition reads three integer coordinates.
func parsePosition(fields []string) (board.Position, error) {
	if len(fields) != 3 {
		return board.Position{}, fmt.Errorf("need three integers, got %d", len(fields))
	}
	var coords [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return board.Position{}, fmt.Errorf("invalid coordinate %q", f)
		}
		coords[i] = n
	}
	return board.NewPosition(coords[0], coords[1], coords[2]), nil
}

// session drives one game over a line-based console.
type session struct {
	game    *game.Game
	players []*board.Player
	turns   *rules.TurnManager
	in      *bufio.Scanner
	out     io.Writer
	logger  *zap.Logger
}

func newSession(g *game.Game, in io.Reader, out io.Writer, logger *zap.Logger) *session {
	players := g.Players()
	return &session{
		game:    g,
		players: players,
		turns:   rules.NewTurnManager(len(players)),
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
}

// play runs turns until the game is over. It returns io.EOF if input runs out first.
func (s *session) play(ctx context.Context) error {
	for !s.game.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return err
		}
		player := s.players[s.turns.ActiveIndex()]
		fmt.Fprintf(s.out, "\n=== Round %d / %d: %s ===\n", s.game.CurrentRound(), s.game.TurnLimit(), player.Name)

		if s.game.ShouldOfferCard() {
			if err := s.offerCard(player); err != nil {
				return err
			}
		}
		s.printStatus()
		if err := s.takeTurn(player); err != nil {
			return err
		}
		if s.turns.EndTurn() {
			s.game.AdvanceRound()
		}
	}
	return nil
}

func (s *session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *session) takeTurn(player *board.Player) error {
	for {
		line, err := s.readLine("Action (place x y z | capture x y z x y z | pass | status): ")
		if err != nil {
			return err
		}
		cmd, err := parseCommand(line)
		if err != nil {
			s.logger.Debug("unrecognized input",
				zap.String("game_id", s.game.ID()),
				zap.String("player", player.Name),
				zap.String("line", line),
			)
			fmt.Fprintln(s.out, err)
			continue
		}

		switch cmd.verb {
		case verbPlace:
			if s.game.PlacePiece(player, cmd.positions[0]) {
				s.announceLines()
				return nil
			}
			fmt.Fprintln(s.out, "Cannot place there (occupied, frozen, or out of bounds).")
		case verbCapture:
			piece := s.ownPiece(player, cmd.positions[0])
			if piece == nil || !piece.IsEmpowered() {
				fmt.Fprintln(s.out, "That is not one of your empowered pieces.")
				continue
			}
			if s.game.EmpoweredCapture(player, piece, cmd.positions[1]) {
				s.announceLines()
				return nil
			}
			fmt.Fprintln(s.out, "Invalid capture target.")
		case verbPass:
			return nil
		case verbStatus:
			s.printStatus()
		}
	}
}

// offerCard shows the offer and plays the chosen card immediately.
func (s *session) offerCard(player *board.Player) error {
	offer := s.game.OfferCards()
	fmt.Fprintln(s.out, "Card offer: choose one to play immediately this turn")
	for i, card := range offer {
		fmt.Fprintf(s.out, "  [%d] %s\n", i, card.Name())
	}

	var card cards.Card
	for card == nil {
		line, err := s.readLine("Select: ")
		if err != nil {
			return err
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 0 || idx >= len(offer) {
			fmt.Fprintf(s.out, "Enter a number from 0 to %d.\n", len(offer)-1)
			continue
		}
		card = offer[idx]
	}

	ctx, err := s.cardContext(player, card)
	if err != nil {
		return err
	}
	if s.game.UseCard(card, player, ctx) {
		s.announceLines()
	}
	if card.Kind() == cards.KindEmpower && ctx.Piece != nil {
		fmt.Fprintln(s.out, "Piece empowered. Use 'capture' to move it onto an adjacent enemy.")
	}
	return nil
}

// cardContext asks for the target a card needs. A target that cannot be read
// leaves the context empty and the card does nothing.
func (s *session) cardContext(player *board.Player, card cards.Card) (cards.ActionContext, error) {
	switch card.Kind() {
	case cards.KindLayerShiftUp, cards.KindLayerShiftDown:
		for {
			line, err := s.readLine(fmt.Sprintf("Layer for %s (0 = bottom, %d = top): ", card.Name(), board.Size-1))
			if err != nil {
				return cards.ActionContext{}, err
			}
			layer, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(s.out, "Invalid layer.")
				continue
			}
			return cards.LayerContext(layer), nil
		}
	case cards.KindEmpower, cards.KindTimeRewind:
		pos, err := s.readPosition(fmt.Sprintf("Your piece for %s (x y z): ", card.Name()))
		if err != nil || pos == nil {
			return cards.ActionContext{}, err
		}
		piece := s.ownPiece(player, *pos)
		if piece == nil {
			fmt.Fprintln(s.out, "No such piece.")
			return cards.ActionContext{}, nil
		}
		return cards.PieceContext(piece), nil
	case cards.KindFreeze:
		pos, err := s.readPosition("Cell to freeze (x y z): ")
		if err != nil || pos == nil {
			return cards.ActionContext{}, err
		}
		return cards.PositionContext(*pos), nil
	}
	return cards.ActionContext{}, nil
}

// readPosition returns nil without error when the line is not a position.
func (s *session) readPosition(prompt string) (*board.Position, error) {
	line, err := s.readLine(prompt)
	if err != nil {
		return nil, err
	}
	pos, err := parsePosition(strings.Fields(line))
	if err != nil {
		fmt.Fprintln(s.out, err)
		return nil, nil
	}
	return &pos, nil
}

func (s *session) ownPiece(player *board.Player, pos board.Position) *board.Piece {
	b := s.game.Board()
	if !b.InBounds(pos) {
		return nil
	}
	piece := b.GetPiece(pos)
	if piece == nil || piece.Owner() != player {
		return nil
	}
	return piece
}

// announceLines reports the lines the last action completed and shows them on the board.
func (s *session) announceLines() {
	completed := s.game.LastCompletedLines()
	if len(completed) == 0 {
		return
	}
	highlight := make([]board.Line, 0, len(completed))
	for _, scored := range completed {
		fmt.Fprintf(s.out, "%s completed line %s!\n", scored.Player.Name, scored.Line)
		highlight = append(highlight, scored.Line)
	}
	fmt.Fprint(s.out, renderBoard(s.game.Board(), highlight))
}

func (s *session) printStatus() {
	fmt.Fprint(s.out, renderBoard(s.game.Board(), nil))
	fmt.Fprintln(s.out, "Scores:")
	for _, p := range s.players {
		fmt.Fprintf(s.out, "  %s: %d\n", p.Name, p.Score())
	}
}

// renderBoard draws layers top to bottom. Pieces show their owner's initial,
// with * when empowered; frozen cells show F and the turns left. Cells on a
// highlighted line get a trailing !.
func renderBoard(b *board.Board, highlight []board.Line) string {
	var sb strings.Builder
	for z := board.Size - 1; z >= 0; z-- {
		fmt.Fprintf(&sb, "Layer z=%d:\n", z)
		for y := 0; y < board.Size; y++ {
			for x := 0; x < board.Size; x++ {
				pos := board.NewPosition(x, y, z)
				mark := cellMark(b, pos)
				if onAnyLine(highlight, pos) {
					mark += "!"
				}
				fmt.Fprintf(&sb, "%4s", mark)
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellMark(b *board.Board, pos board.Position) string {
	if piece := b.GetPiece(pos); piece != nil {
		mark := "?"
		if owner := piece.Owner(); owner != nil && owner.Name != "" {
			mark = strings.ToUpper(string([]rune(owner.Name)[:1]))
		}
		if piece.IsEmpowered() {
			mark += "*"
		}
		return mark
	}
	if b.IsFrozen(pos) {
		return "F" + strconv.Itoa(b.FrozenTurnsRemaining(pos))
	}
	return "."
}

func onAnyLine(lines []board.Line, pos board.Position) bool {
	for _, line := range lines {
		if line.Contains(pos) {
			return true
		}
	}
	return false
}
