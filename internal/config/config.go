package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds server configuration loaded from environment variables.
// The token secrets have no defaults: the process refuses to start without
// them, and verification code only ever sees them through the Config.
type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	DBPath        string        `envconfig:"DB_PATH" default:"minstant.db"`
	AccessSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"24h"`
	MaxHistory    int           `envconfig:"MAX_HISTORY" default:"50"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
