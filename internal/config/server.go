package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	// Empty DSN runs the server on the in-memory wallet, for local play.
	PostgresDSN string `env:"POSTGRES_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	// Chips auto-credited to unknown users in memory-wallet mode.
	DevStartingChips int64 `env:"DEV_STARTING_CHIPS" envDefault:"10000"`

	HistoryBuffer int `env:"HISTORY_BUFFER" envDefault:"256"`

	// Empty key leaves the admin endpoints open, for local play.
	AdminAPIKey string `env:"ADMIN_API_KEY"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
