package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/playperu/treasurehunt/internal/game"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/treasurehunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"web"`
	// RedisURL enables the shared hunt catalog cache when set.
	RedisURL string `env:"REDIS_URL"`

	APIBaseURL       string        `env:"TH_API_URL" envDefault:"https://codecyprus.org/th/api"`
	AppName          string        `env:"TH_APP_NAME" envDefault:"the-game-hunt"`
	RequestTimeout   time.Duration `env:"TH_REQUEST_TIMEOUT" envDefault:"30s"`
	LeaderboardLimit int           `env:"LEADERBOARD_LIMIT" envDefault:"10"`
	CatalogCacheTTL  time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1m"`
	// ClientIdleTTL is how long a browser's game is kept after its last request.
	ClientIdleTTL time.Duration `env:"CLIENT_IDLE_TTL" envDefault:"2h"`

	GeoHighAccuracy bool          `env:"GEO_HIGH_ACCURACY" envDefault:"true"`
	GeoTimeout      time.Duration `env:"GEO_TIMEOUT" envDefault:"10s"`
	GeoMaximumAge   time.Duration `env:"GEO_MAXIMUM_AGE" envDefault:"0s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.LeaderboardLimit <= 0 {
		return nil, fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", cfg.LeaderboardLimit)
	}
	return &cfg, nil
}

func (c *Config) GeoOptions() game.GeoOptions {
	return game.GeoOptions{
		HighAccuracy: c.GeoHighAccuracy,
		Timeout:      c.GeoTimeout,
		MaximumAge:   c.GeoMaximumAge,
	}
}
