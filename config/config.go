package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Env          string `env:"ENVIRONMENT"`
	ServerPort   int    `env:"PORT" envDefault:"8300"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"quaketrack.sqlite"`

	Catalog struct {
		QueryURL string `env:"CATALOG_QUERY_URL" envDefault:"https://earthquake.usgs.gov/fdsnws/event/1/query"`
	}
	GeoNames struct {
		Endpoint string `env:"GEONAMES_ENDPOINT" envDefault:"http://api.geonames.org/searchJSON"`
		Username string `env:"GEONAMES_USERNAME"`
	}
	AlertServer struct {
		UpdatePreferencesURL string `env:"UPDATE_PREFERENCES_URL"`
		UnreadAlertsURL      string `env:"UNREAD_ALERTS_URL"`
		ClearAlertsURL       string `env:"CLEAR_ALERTS_URL"`
	}

	log *zap.Logger
}

func NewConfig(lc fx.Lifecycle, log *zap.Logger) *Config {
	cfg := &Config{log: log}
	env.Parse(cfg)

	if err := cfg.validate(); err != nil {
		if cfg.Env != "production" {
			cfg.log.Sugar().Infof("%s (placeholder values will be used outside production)", err)
			cfg.applyDevelopmentDefaults()
		} else {
			cfg.log.Sugar().Panic(err)
		}
	}

	return cfg
}

func (cfg *Config) validate() error {
	if cfg.GeoNames.Username == "" {
		return errors.New("GEONAMES_USERNAME envvar must be populated")
	}
	if cfg.AlertServer.UpdatePreferencesURL == "" {
		return errors.New("UPDATE_PREFERENCES_URL envvar must be populated")
	}
	if cfg.AlertServer.UnreadAlertsURL == "" {
		return errors.New("UNREAD_ALERTS_URL envvar must be populated")
	}
	if cfg.AlertServer.ClearAlertsURL == "" {
		return errors.New("CLEAR_ALERTS_URL envvar must be populated")
	}
	return nil
}

func (cfg *Config) applyDevelopmentDefaults() {
	if cfg.GeoNames.Username == "" {
		cfg.GeoNames.Username = "demo"
	}
	if cfg.AlertServer.UpdatePreferencesURL == "" {
		cfg.AlertServer.UpdatePreferencesURL = "http://localhost:8301/update_user_preferences"
	}
	if cfg.AlertServer.UnreadAlertsURL == "" {
		cfg.AlertServer.UnreadAlertsURL = "http://localhost:8301/get_unread_alerts"
	}
	if cfg.AlertServer.ClearAlertsURL == "" {
		cfg.AlertServer.ClearAlertsURL = "http://localhost:8301/clear_user_alerts"
	}
}
