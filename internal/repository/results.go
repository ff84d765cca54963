package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ttt3d/ttt3d-server-go/internal/game"
)

// PlayerResult is one player's line in a finished match.
type PlayerResult struct {
	Seat        int
	PlayerID    string
	Name        string
	Score       int
	LinesScored int
	Winner      bool
}

// MatchResult is the stored outcome of a match.
type MatchResult struct {
	GameID     string
	Rounds     int
	TurnLimit  int
	PieceCap   int
	Checksum   string
	FinishedAt time.Time
	Players    []PlayerResult // seat order
}

// Winners returns the names of the winning players.
func (m MatchResult) Winners() []string {
	var names []string
	for _, p := range m.Players {
		if p.Winner {
			names = append(names, p.Name)
		}
	}
	return names
}

// NewMatchResult builds a result from a final snapshot. Every player on the
// top score is marked as a winner.
func NewMatchResult(snapshot game.GameSnapshot, finishedAt time.Time) MatchResult {
	best := 0
	for _, p := range snapshot.Players {
		best = max(best, p.Score)
	}

	result := MatchResult{
		GameID:     snapshot.GameID,
		Rounds:     min(snapshot.Round, snapshot.TurnLimit),
		TurnLimit:  snapshot.TurnLimit,
		PieceCap:   snapshot.PieceCap,
		Checksum:   snapshot.Checksum,
		FinishedAt: finishedAt.UTC(),
		Players:    make([]PlayerResult, 0, len(snapshot.Players)),
	}
	for seat, p := range snapshot.Players {
		result.Players = append(result.Players, PlayerResult{
			Seat:        seat,
			PlayerID:    p.ID,
			Name:        p.Name,
			Score:       p.Score,
			LinesScored: p.LinesScored,
			Winner:      p.Score == best,
		})
	}
	return result
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	game_id     TEXT PRIMARY KEY,
	rounds      INTEGER NOT NULL,
	turn_limit  INTEGER NOT NULL,
	piece_cap   INTEGER NOT NULL,
	checksum    TEXT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS match_players (
	game_id      TEXT NOT NULL REFERENCES matches(game_id) ON DELETE CASCADE,
	seat         INTEGER NOT NULL,
	player_id    TEXT NOT NULL,
	name         TEXT NOT NULL,
	score        INTEGER NOT NULL,
	lines_scored INTEGER NOT NULL,
	winner       BOOLEAN NOT NULL,
	PRIMARY KEY (game_id, seat)
);

CREATE INDEX IF NOT EXISTS matches_finished_at_idx ON matches (finished_at DESC);
`

// ResultsRepository stores finished matches in PostgreSQL.
type ResultsRepository struct {
	db *pgxpool.Pool
}

// NewResultsRepository creates a results repository.
func NewResultsRepository(db *pgxpool.Pool) *ResultsRepository {
	return &ResultsRepository{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (r *ResultsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveResult writes a match and its players in one transaction.
func (r *ResultsRepository) SaveResult(ctx context.Context, result MatchResult) error {
	if result.GameID == "" {
		return errors.New("match result has no game id")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO matches (game_id, rounds, turn_limit, piece_cap, checksum, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, result.GameID, result.Rounds, result.TurnLimit, result.PieceCap, result.Checksum, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", result.GameID, err)
	}

	for _, p := range result.Players {
		_, err = tx.Exec(ctx, `
			INSERT INTO match_players (game_id, seat, player_id, name, score, lines_scored, winner)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, result.GameID, p.Seat, p.PlayerID, p.Name, p.Score, p.LinesScored, p.Winner)
		if err != nil {
			return fmt.Errorf("failed to insert player %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit match %s: %w", result.GameID, err)
	}
	return nil
}

// RecentResults returns up to limit matches, newest first.
func (r *ResultsRepository) RecentResults(ctx context.Context, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT m.game_id, m.rounds, m.turn_limit, m.piece_cap, m.checksum, m.finished_at,
		       p.seat, p.player_id, p.name, p.score, p.lines_scored, p.winner
		FROM (
			SELECT * FROM matches ORDER BY finished_at DESC, game_id LIMIT $1
		) m
		JOIN match_players p ON p.game_id = m.game_id
		ORDER BY m.finished_at DESC, m.game_id, p.seat
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var m MatchResult
		var p PlayerResult
		if err := rows.Scan(
			&m.GameID, &m.Rounds, &m.TurnLimit, &m.PieceCap, &m.Checksum, &m.FinishedAt,
			&p.Seat, &p.PlayerID, &p.Name, &p.Score, &p.LinesScored, &p.Winner,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if n := len(results); n == 0 || results[n-1].GameID != m.GameID {
			results = append(results, m)
		}
		last := &results[len(results)-1]
		last.Players = append(last.Players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}
