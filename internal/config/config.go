package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string        `env:"RUN_ADDRESS" env-default:"localhost:8080"`
	DatabaseURL      string        `env:"DATABASE_URI"`
	PrivateKey       string        `env:"PRIVATE_KEY" env-default:"privatekey"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	AuthDisabledURLs []string      `env:"AUTH_DISABLED_URLS" env-default:"/register,/login" env-separator:","`
}

func Load() (*Config, error) {
	// .env is optional, real environments pass variables directly
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.Addr, "a", "localhost:8080", "HTTP server address")
	flag.StringVar(&cfg.DatabaseURL, "d", "", "database URL")

	flag.Parse()

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}
