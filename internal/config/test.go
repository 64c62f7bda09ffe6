package config

import "github.com/caarlos0/env/v11"

// TestConfig gates integration tests that need a live postgres. Tests call
// LoadTest and skip when the DSN is absent.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
