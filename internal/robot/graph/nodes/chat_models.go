package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/model"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

// ChatModelConfig holds the configuration for planner model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Planner *model.PlannerModelConfig
}

// NewPlannerModel creates the Gemini chat model that plans robot actions.
func NewPlannerModel(ctx context.Context, config ChatModelConfig) (einomodel.ToolCallingChatModel, error) {
	if config.Planner == nil {
		return nil, fmt.Errorf("planner model config is nil")
	}
	if config.APIKey == "" {
		return nil, errx.InvalidInput("GEMINI_API_KEY is not set")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := float32(0)
	maxTokens := config.Planner.MaxTokens
	gcfg := &gemini.Config{
		Client:      client,
		Model:       config.Planner.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
	if config.Planner.ThinkingBudget > 0 {
		gcfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(config.Planner.ThinkingBudget),
		}
	}

	chatModel, err := gemini.NewChatModel(ctx, gcfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating planner model")
		return nil, fmt.Errorf("error creating planner model: %w", err)
	}
	return chatModel, nil
}

// plannerClient surfaces every client failure as PlannerUnavailable and
// records it on the session state carried by the context.
type plannerClient struct {
	inner einomodel.ToolCallingChatModel
}

// NewPlannerClient wraps a tool-calling chat model for use as the planner node.
func NewPlannerClient(inner einomodel.ToolCallingChatModel) einomodel.ToolCallingChatModel {
	if pc, ok := inner.(*plannerClient); ok {
		return pc
	}
	return &plannerClient{inner: inner}
}

func (p *plannerClient) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := p.inner.Generate(ctx, input, opts...)
	if err != nil {
		return nil, p.fail(ctx, err)
	}
	return out, nil
}

func (p *plannerClient) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, err := p.inner.Stream(ctx, input, opts...)
	if err != nil {
		return nil, p.fail(ctx, err)
	}
	return sr, nil
}

func (p *plannerClient) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	bound, err := p.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &plannerClient{inner: bound}, nil
}

func (p *plannerClient) GetType() string {
	return "CafePlanner"
}

// IsCallbacksEnabled defers to the wrapped model so callbacks fire once.
func (p *plannerClient) IsCallbacksEnabled() bool {
	if c, ok := p.inner.(components.Checker); ok {
		return c.IsCallbacksEnabled()
	}
	return false
}

func (p *plannerClient) fail(ctx context.Context, err error) error {
	var wrapped error
	if ctxErr := ctx.Err(); ctxErr != nil {
		wrapped = errx.Canceled(ctxErr)
	} else {
		wrapped = errx.PlannerUnavailable(err)
	}
	logx.Error().Err(err).Msg("Planner request failed")
	if s := PlanStateFrom(ctx); s != nil {
		return s.Fail(wrapped)
	}
	return wrapped
}
