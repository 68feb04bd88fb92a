package cmd

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/cafebot-sim/server/internal/core"
	"github.com/cafebot-sim/server/internal/robot/model"
	logx "github.com/cafebot-sim/server/pkg/logger"
	pkgredis "github.com/cafebot-sim/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the simulator,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	Log         logx.Config

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Planner configs
	Planner model.PlannerModelConfig
	Session model.SessionConfig
	Layout  model.CafeLayout
}

// LoadConfig binds the process environment into an AppConfig.
func LoadConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if cfg.Layout.Tables < 1 {
		return nil, fmt.Errorf("CAFE_TABLES must be at least 1, got %d", cfg.Layout.Tables)
	}
	if cfg.Session.MaxRounds < 1 {
		return nil, fmt.Errorf("SESSION_MAX_ROUNDS must be at least 1, got %d", cfg.Session.MaxRounds)
	}
	if cfg.Session.Timeout < 0 {
		return nil, fmt.Errorf("SESSION_TIMEOUT must not be negative, got %s", cfg.Session.Timeout)
	}
	return &cfg, nil
}
