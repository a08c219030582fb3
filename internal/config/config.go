package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port            string `env:"PORT" envDefault:"8080"`
	DBPath          string `env:"DB_PATH"`
	SecretKey       string `env:"SECRET_KEY" envDefault:"change_me_in_production"`
	Timezone        string `env:"TZ" envDefault:"UTC"`
	CookieSecure    bool   `env:"COOKIE_SECURE" envDefault:"false"`
	LutealPhaseDays int    `env:"LUTEAL_PHASE_DAYS" envDefault:"14"`
}

func Load() (Config, error) {
	loaded := Config{}
	if err := env.Parse(&loaded); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if loaded.DBPath == "" {
		loaded.DBPath = filepath.Join("data", "ovella.db")
	}
	return loaded, nil
}
