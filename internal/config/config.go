package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// GameConfig configures a match.
type GameConfig struct {
	Players      []string `mapstructure:"players"`
	PieceCap     int      `mapstructure:"piece_cap"`
	TurnLimit    int      `mapstructure:"turn_limit"`
	Seed         int64    `mapstructure:"seed"` // 0 seeds from the clock
	RecordReplay bool     `mapstructure:"record_replay"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// DatabaseConfig configures the optional match-results store.
type DatabaseConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// EnvPrefix is prepended to environment overrides, e.g. TTT3D_GAME_PIECE_CAP.
const EnvPrefix = "TTT3D"

// Load reads configuration from path, applies TTT3D_* environment overrides
// and validates the result. An empty path uses defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.players", []string{"Player 1", "Player 2"})
	v.SetDefault("game.piece_cap", 5)
	v.SetDefault("game.turn_limit", 30)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.record_replay", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.connect_timeout", 5*time.Second)
}

// Validate checks the settings a game cannot start without.
func (c *Config) Validate() error {
	if c.Game.PieceCap < 1 {
		return fmt.Errorf("game.piece_cap must be at least 1, got %d", c.Game.PieceCap)
	}
	if c.Game.TurnLimit < 1 {
		return fmt.Errorf("game.turn_limit must be at least 1, got %d", c.Game.TurnLimit)
	}
	if len(c.Game.Players) < 2 {
		return fmt.Errorf("game.players needs at least 2 names, got %d", len(c.Game.Players))
	}
	seen := make(map[string]struct{}, len(c.Game.Players))
	for _, name := range c.Game.Players {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.New("game.players contains an empty name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("game.players lists %q twice", name)
		}
		seen[name] = struct{}{}
	}
	if c.Database.Enabled && c.Database.URL == "" {
		return errors.New("database.url is required when database.enabled is set")
	}
	return nil
}
