package model

import "time"

// ================ Config ================
type PlannerModelConfig struct {
	Model          string `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int    `envconfig:"PLANNER_MAX_TOKENS" default:"1024"`
	ThinkingBudget int32  `envconfig:"PLANNER_THINKING_BUDGET" default:"0"`
}

type SessionConfig struct {
	MaxRounds int           `envconfig:"SESSION_MAX_ROUNDS" default:"50"`
	Timeout   time.Duration `envconfig:"SESSION_TIMEOUT" default:"2m"`
}
