package config

import (
	"fmt"

	"github.com/spf13/viper"

	"sevens/internal/domain"
)

// Config is the root configuration for the Sevens runtime.
type Config struct {
	Game  GameConfig  `mapstructure:"game"`
	Redis RedisConfig `mapstructure:"redis"`
	Log   LogConfig   `mapstructure:"log"`
}

// GameConfig tunes the rules engine.
type GameConfig struct {
	// OpenerCard is the token of the designated opening card.
	OpenerCard string `mapstructure:"opener_card"`
	// MaxReshuffleAttempts bounds the fair-deal loop.
	MaxReshuffleAttempts int `mapstructure:"max_reshuffle_attempts"`
	// TurnTimeoutSeconds is the advisory per-turn timeout used by the
	// watchdog. Zero disables it.
	TurnTimeoutSeconds int `mapstructure:"turn_timeout_seconds"`
}

// RedisConfig locates the shared state store.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig tunes logging output.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the YAML configuration at configPath, applying defaults that
// match the conventional game (7H opener, 10 reshuffles, 30s turns).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("game.opener_card", "7H")
	v.SetDefault("game.max_reshuffle_attempts", 10)
	v.SetDefault("game.turn_timeout_seconds", 30)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "sevens")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if _, err := cfg.Game.Opener(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Opener parses the configured opening card. Only a seven may open, since the
// board anchors both runs on it.
func (g GameConfig) Opener() (domain.Card, error) {
	card, err := domain.ParseCard(g.OpenerCard)
	if err != nil {
		return domain.Card{}, fmt.Errorf("opener card: %w", err)
	}
	if card.Rank != domain.RankSeven {
		return domain.Card{}, fmt.Errorf("opener card %s is not a seven", card)
	}
	return card, nil
}
