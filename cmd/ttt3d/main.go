package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ttt3d/ttt3d-server-go/internal/config"
	"github.com/ttt3d/ttt3d-server-go/internal/game"
	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
	"github.com/ttt3d/ttt3d-server-go/internal/game/rules"
	"github.com/ttt3d/ttt3d-server-go/internal/game/watchers"
	"github.com/ttt3d/ttt3d-server-go/internal/repository"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting ttt3d",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("game failed", zap.Error(err))
		os.Exit(1)
	}
}

// run plays one match on in/out and stores the result when the database is enabled.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) error {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("random source seeded", zap.Int64("seed", seed))

	players := make([]*board.Player, 0, len(cfg.Game.Players))
	for _, name := range cfg.Game.Players {
		players = append(players, board.NewPlayer(strings.TrimSpace(name)))
	}

	opts := []game.Option{game.WithLogger(logger)}
	if cfg.Game.RecordReplay {
		opts = append(opts, game.WithReplay())
	}
	g, err := game.NewGame(players, cfg.Game.PieceCap, cfg.Game.TurnLimit, rand.New(rand.NewSource(seed)), opts...)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	registry := rules.NewWatcherRegistry()
	lines := watchers.NewLinesScoredWatcher()
	captures := watchers.NewCapturesWatcher()
	evictions := watchers.NewEvictionsWatcher()
	registry.AddWatcher(lines)
	registry.AddWatcher(captures)
	registry.AddWatcher(evictions)
	registry.Attach(g.Events())

	s := newSession(g, in, out, logger)
	if err := s.play(ctx); err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("game ended early", zap.String("game_id", g.ID()), zap.Error(err))
		fmt.Fprintln(out, "\nGame ended early.")
	} else {
		fmt.Fprintln(out, "\nGame over!")
	}

	fmt.Fprintln(out, "Final scores:")
	for _, p := range g.Players() {
		fmt.Fprintf(out, "  %s: %d (lines %d, captures %d, lost %d, evicted %d)\n",
			p.Name, p.Score(),
			lines.GetCount(p.ID),
			captures.GetCapturesMade(p.ID),
			captures.GetPiecesLost(p.ID),
			evictions.GetCount(p.ID),
		)
	}
	if !lines.ConditionMet() {
		fmt.Fprintln(out, "No lines were completed.")
	}
	if !captures.ConditionMet() {
		fmt.Fprintln(out, "No captures were made.")
	}
	fmt.Fprintf(out, "Winners: %s\n", joinNames(g.Winners()))
	if replay := g.Replay(); replay != nil {
		fmt.Fprintf(out, "Replay recorded: %d states\n", replay.Size())
	}

	if !g.IsGameOver() {
		return nil
	}
	if !cfg.Database.Enabled {
		return nil
	}
	return saveResult(ctx, cfg.Database, g.Snapshot(), logger)
}

func saveResult(ctx context.Context, cfg config.DatabaseConfig, snapshot game.GameSnapshot, logger *zap.Logger) error {
	db, err := repository.NewDB(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewResultsRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	result := repository.NewMatchResult(snapshot, time.Now())
	if err := repo.SaveResult(ctx, result); err != nil {
		return err
	}
	logger.Info("match result saved",
		zap.String("game_id", result.GameID),
		zap.Strings("winners", result.Winners()),
	)
	return nil
}

func joinNames(players []*board.Player) string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	// Keep stdout for the board.
	zapCfg.OutputPaths = []string{"stderr"}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
