package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/samansohani78/private-poker/internal/game"
)

// GameConfig holds the default settings new tables are created with.
type GameConfig struct {
	SmallBlind    int64         `env:"GAME_SMALL_BLIND" envDefault:"50"`
	BigBlind      int64         `env:"GAME_BIG_BLIND" envDefault:"100"`
	MinBuyIn      int64         `env:"GAME_MIN_BUY_IN" envDefault:"2000"`
	MaxSeats      int           `env:"GAME_MAX_SEATS" envDefault:"9"`
	ActionTimeout time.Duration `env:"GAME_ACTION_TIMEOUT" envDefault:"30s"`
	AutoStart     int           `env:"GAME_AUTO_START" envDefault:"2"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c GameConfig) Settings() game.GameSettings {
	return game.GameSettings{
		SmallBlind:    c.SmallBlind,
		BigBlind:      c.BigBlind,
		MinBuyIn:      c.MinBuyIn,
		MaxSeats:      c.MaxSeats,
		ActionTimeout: c.ActionTimeout,
		AutoStart:     c.AutoStart,
	}
}
