package main

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ttt3d/ttt3d-server-go/internal/config"
	"github.com/ttt3d/ttt3d-server-go/internal/game"
	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
	"github.com/ttt3d/ttt3d-server-go/internal/game/cards"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    command
		wantErr bool
	}{
		{line: "place 0 1 2", want: command{verb: verbPlace, positions: []board.Position{board.NewPosition(0, 1, 2)}}},
		{line: "  PLACE  2 2 2 ", want: command{verb: verbPlace, positions: []board.Position{board.NewPosition(2, 2, 2)}}},
		{line: "capture 1 1 1 1 1 2", want: command{verb: verbCapture, positions: []board.Position{
			board.NewPosition(1, 1, 1), board.NewPosition(1, 1, 2),
		}}},
		{line: "place 5 -1 0", want: command{verb: verbPlace, positions: []board.Position{board.NewPosition(5, -1, 0)}}},
		{line: "pass", want: command{verb: verbPass}},
		{line: "status", want: command{verb: verbStatus}},
		{line: "", wantErr: true},
		{line: "jump 1 1 1", wantErr: true},
		{line: "place 1 1", wantErr: true},
		{line: "place a b c", wantErr: true},
		{line: "capture 1 1 1", wantErr: true},
		{line: "pass now", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderBoard(t *testing.T) {
	alice := board.NewPlayer("alice")
	b := board.NewBoard()
	piece := board.NewPiece(alice, 1)
	piece.SetEmpowered(true)
	require.NoError(t, b.SetPiece(board.NewPosition(0, 0, 0), piece))
	require.NoError(t, b.SetPiece(board.NewPosition(2, 1, 2), board.NewPiece(alice, 1)))
	b.FreezeCell(board.NewPosition(1, 0, 0), 2)

	out := renderBoard(b, nil)
	sections := strings.Split(out, "Layer z=")
	require.Len(t, sections, 4)
	assert.True(t, strings.HasPrefix(sections[1], "2:"))
	assert.Contains(t, sections[1], "   .   .   A\n")
	assert.True(t, strings.HasPrefix(sections[3], "0:"))
	assert.Contains(t, sections[3], "  A*  F2   .\n")
	assert.NotContains(t, out, "!")
}

func TestRenderBoardHighlightsLines(t *testing.T) {
	alice := board.NewPlayer("alice")
	b := board.NewBoard()
	piece := board.NewPiece(alice, 1)
	piece.SetEmpowered(true)
	require.NoError(t, b.SetPiece(board.NewPosition(0, 0, 0), piece))
	require.NoError(t, b.SetPiece(board.NewPosition(1, 0, 0), board.NewPiece(alice, 1)))
	require.NoError(t, b.SetPiece(board.NewPosition(2, 0, 0), board.NewPiece(alice, 1)))
	require.NoError(t, b.SetPiece(board.NewPosition(2, 1, 0), board.NewPiece(alice, 1)))

	line := board.Line{board.NewPosition(0, 0, 0), board.NewPosition(1, 0, 0), board.NewPosition(2, 0, 0)}
	out := renderBoard(b, []board.Line{line})
	sections := strings.Split(out, "Layer z=")
	require.Len(t, sections, 4)
	assert.Contains(t, sections[3], " A*!  A!  A!\n")
	assert.Contains(t, sections[3], "   .   .   A\n")
	assert.Equal(t, 3, strings.Count(out, "!"))
}

func TestAnnounceLinesShowsCompletedLine(t *testing.T) {
	s, alice, out := newTestSession(t, "")
	require.True(t, s.game.PlacePiece(alice, board.NewPosition(0, 0, 0)))
	require.True(t, s.game.PlacePiece(alice, board.NewPosition(0, 1, 0)))
	s.announceLines()
	assert.Empty(t, out.String())

	require.True(t, s.game.PlacePiece(alice, board.NewPosition(0, 2, 0)))
	s.announceLines()
	assert.Contains(t, out.String(), "Alice completed line")
	assert.Equal(t, 3, strings.Count(out.String(), "A!"))
}

func newTestSession(t *testing.T, input string) (*session, *board.Player, *bytes.Buffer) {
	t.Helper()
	alice := board.NewPlayer("Alice")
	bob := board.NewPlayer("Bob")
	g, err := game.NewGame([]*board.Player{alice, bob}, 5, 30, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	var out bytes.Buffer
	return newSession(g, strings.NewReader(input), &out, zaptest.NewLogger(t)), alice, &out
}

func TestCardContext(t *testing.T) {
	s, alice, out := newTestSession(t, "x\n1\n0 0 0\n9 9 9\nnope\n2 2 2\n")
	require.True(t, s.game.PlacePiece(alice, board.NewPosition(0, 0, 0)))

	ctx, err := s.cardContext(alice, cards.NewLayerShiftUpCard())
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Layer)
	assert.Contains(t, out.String(), "Invalid layer.")

	ctx, err = s.cardContext(alice, cards.NewEmpowerCard())
	require.NoError(t, err)
	assert.Same(t, s.game.Board().GetPiece(board.NewPosition(0, 0, 0)), ctx.Piece)

	ctx, err = s.cardContext(alice, cards.NewTimeRewindCard())
	require.NoError(t, err)
	assert.Nil(t, ctx.Piece)

	ctx, err = s.cardContext(alice, cards.NewFreezeCard())
	require.NoError(t, err)
	assert.Nil(t, ctx.Pos)

	ctx, err = s.cardContext(alice, cards.NewFreezeCard())
	require.NoError(t, err)
	require.NotNil(t, ctx.Pos)
	assert.Equal(t, board.NewPosition(2, 2, 2), *ctx.Pos)
}

func TestRunScriptedGame(t *testing.T) {
	cfg := &config.Config{Game: config.GameConfig{
		Players:      []string{"Alice", "Bob"},
		PieceCap:     5,
		TurnLimit:    2,
		Seed:         1,
		RecordReplay: true,
	}}
	input := strings.Join([]string{
		"place 0 0 0",
		"bogus",
		"place 0 0 0",
		"place 2 2 2",
		"status",
		"place 1 1 0",
		"pass",
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zaptest.NewLogger(t), strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "=== Round 1 / 2: Alice ===")
	assert.Contains(t, text, "=== Round 2 / 2: Bob ===")
	assert.Contains(t, text, "unknown action")
	assert.Contains(t, text, "Cannot place there")
	assert.Contains(t, text, "Game over!")
	assert.Contains(t, text, "Winners: Alice, Bob")
	assert.Contains(t, text, "No lines were completed.")
	assert.Contains(t, text, "No captures were made.")
	assert.Contains(t, text, "Replay recorded: 6 states")
}

func TestRunReportsCompletedLines(t *testing.T) {
	cfg := &config.Config{Game: config.GameConfig{
		Players:   []string{"Alice", "Bob"},
		PieceCap:  5,
		TurnLimit: 3,
		Seed:      1,
	}}
	input := strings.Join([]string{
		"place 0 0 0",
		"place 2 2 2",
		"place 1 0 0",
		"place 2 2 1",
		// Round 3 offers cards. Layer 2 keeps z=0 intact and is not a valid cell.
		"0", "2",
		"place 2 0 0",
		"0", "2",
		"pass",
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zaptest.NewLogger(t), strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "Alice completed line")
	assert.Contains(t, text, "Card offer")
	assert.Contains(t, text, "Winners: Alice\n")
	assert.NotContains(t, text, "No lines were completed.")
	assert.Contains(t, text, "No captures were made.")
}

func TestRunEndsEarlyOnEOF(t *testing.T) {
	cfg := &config.Config{Game: config.GameConfig{
		Players:   []string{"Alice", "Bob"},
		PieceCap:  5,
		TurnLimit: 30,
		Seed:      1,
	}}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zaptest.NewLogger(t), strings.NewReader("pass\n"), &out))
	assert.Contains(t, out.String(), "Game ended early.")
	assert.NotContains(t, out.String(), "Game over!")
}
