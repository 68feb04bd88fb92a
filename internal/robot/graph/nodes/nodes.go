package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/catalogue"
	"github.com/cafebot-sim/server/internal/robot/executor"
	"github.com/cafebot-sim/server/internal/robot/graph/parsers"
	"github.com/cafebot-sim/server/internal/robot/graph/prompts"
	"github.com/cafebot-sim/server/internal/robot/model"
	"github.com/cafebot-sim/server/internal/robot/present"
	"github.com/cafebot-sim/server/internal/robot/tracker"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

const (
	NodeSeed     = "Seed"
	NodePlanner  = "Planner"
	NodeExecutor = "Executor"
)

// NewSeedNode renders the system prompt for the session layout and starts
// the conversation with it and the user's instruction.
func NewSeedNode(actions []string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.SessionInput) ([]*schema.Message, error) {
		var turns []*schema.Message
		err := compose.ProcessState(ctx, func(ctx context.Context, s *model.PlanState) error {
			systemPrompt, err := prompts.RenderSystem(ctx, s.Layout, actions)
			if err != nil {
				return s.Fail(errx.Internal(fmt.Errorf("render system prompt: %w", err)))
			}
			s.Conversation = model.NewConversation(systemPrompt, in.Instruction)
			turns = s.Conversation.Turns()
			return nil
		})
		if err != nil {
			return nil, err
		}
		logx.Debug().Int("turns", len(turns)).Msg("Conversation seeded")
		return turns, nil
	})
}

// NewPlannerPreHandler enforces the session budget and hands the planner
// the full conversation.
func NewPlannerPreHandler(maxRounds int) func(context.Context, []*schema.Message, *model.PlanState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, s *model.PlanState) ([]*schema.Message, error) {
		if err := ctx.Err(); err != nil {
			return nil, s.Fail(errx.Canceled(err))
		}
		if err := checkBudget(s, maxRounds, time.Now()); err != nil {
			logx.Warn().
				Str("session_id", s.SessionID).
				Int("rounds", s.Rounds).
				Int("actions", len(s.Trace)).
				Msg("Session budget exhausted")
			return nil, s.Fail(err)
		}
		if s.Conversation == nil {
			return nil, s.Fail(errx.Internal(fmt.Errorf("conversation was not seeded")))
		}
		s.Rounds++

		logx.Debug().
			Str("session_id", s.SessionID).
			Int("round", s.Rounds).
			Int("turns", s.Conversation.Len()).
			Msg("Planner thinking...")

		return s.Conversation.Turns(), nil
	}
}

// NewPlannerPostHandler records usage cost, keeps a single call with an id
// and parses it into the pending action.
func NewPlannerPostHandler() func(context.Context, *schema.Message, *model.PlanState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, s *model.PlanState) (*schema.Message, error) {
		if out == nil {
			return nil, s.Fail(errx.MalformedResponse("planner returned no message"))
		}

		msg, dropped := normalizeReply(s, out)
		recordUsage(s, msg)

		if dropped > 0 {
			logx.Warn().
				Str("session_id", s.SessionID).
				Int("round", s.Rounds).
				Int("dropped", dropped).
				Msg("Planner proposed several actions; keeping the first")
		}

		call, err := parsers.ParsePlannerReply(msg)
		if err != nil {
			logx.Error().Err(err).Str("session_id", s.SessionID).Int("round", s.Rounds).Msg("Planner reply rejected")
			return nil, s.Fail(err)
		}

		s.Pending = call
		if call == nil {
			s.FinalMessage = strings.TrimSpace(msg.Content)
			logx.Debug().Str("session_id", s.SessionID).Int("round", s.Rounds).Msg("Planner finished")
			return msg, nil
		}

		logx.Debug().
			Str("session_id", s.SessionID).
			Int("round", s.Rounds).
			Str("call_id", call.CallID).
			Str("action", call.Name).
			Msg("Planner proposed action")
		return msg, nil
	}
}

// recordUsage prices the reply and accumulates the session's total cost.
func recordUsage(s *model.PlanState, out *schema.Message) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(s.Model))

	extra := make(map[string]any, len(out.Extra)+2)
	for k, v := range out.Extra {
		extra[k] = v
	}
	extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             s.Model,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}

	s.TotalCostUSD += totalC
	extra["usage_cost_total_usd"] = s.TotalCostUSD
	out.Extra = extra

	logx.Debug().
		Str("session_id", s.SessionID).
		Str("node", NodePlanner).
		Str("model", s.Model).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}

// NewPlanCondition routes to the executor while a call is pending and ends
// the session once the planner replies without one.
func NewPlanCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, _ *schema.Message) (string, error) {
		var pending bool
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.PlanState) error {
			pending = s.Pending != nil
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}
		if pending {
			return NodeExecutor, nil
		}
		logx.Debug().Msg("No action proposed - continuing to end")
		return compose.END, nil
	}
}

// NewExecutorNode validates the pending call, runs it, advances the robot
// pose and appends the call/result pair before notifying the presenter.
// A rejected call leaves pose, trace and conversation untouched.
func NewExecutorNode(cat *catalogue.Catalogue, presenter present.Presenter) *compose.Lambda {
	if presenter == nil {
		presenter = present.Nop{}
	}
	runner := executor.New(cat)
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) ([]*schema.Message, error) {
		var (
			turns []*schema.Message
			frame model.Frame
		)
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.PlanState) error {
			call := s.Pending
			s.Pending = nil
			if call == nil {
				return s.Fail(errx.Internal(fmt.Errorf("executor reached without a pending action")))
			}

			action, result, err := runner.Perform(*call)
			if err != nil {
				logx.Warn().
					Err(err).
					Str("session_id", s.SessionID).
					Str("action", call.Name).
					Str("arguments", call.ArgumentsJSON).
					Msg("Planner proposed an invalid action")
				return s.Fail(err)
			}

			if err := s.Conversation.AppendExchange(*call, result); err != nil {
				return s.Fail(errx.Internal(fmt.Errorf("append exchange: %w", err)))
			}

			s.Pose = tracker.Apply(s.Pose, action)
			s.History = append(s.History, s.Pose)

			spec, _ := cat.Lookup(call.Name)
			s.Trace = append(s.Trace, model.TraceEntry{
				Round:     s.Rounds,
				CallID:    call.CallID,
				Action:    call.Name,
				Arguments: action.Arguments(),
				ArgOrder:  spec.ParamNames(),
				Status:    result.Status,
				Pose:      s.Pose,
			})

			logx.Info().
				Str("session_id", s.SessionID).
				Int("step", len(s.Trace)).
				Str("action", call.Name).
				Str("status", string(result.Status)).
				Float64("position", s.Pose.Position).
				Str("orientation", string(s.Pose.Orientation)).
				Msg("Action executed")

			turns = s.Conversation.Turns()
			frame = s.Frame()
			return nil
		})
		if err != nil {
			return nil, err
		}

		presenter.Step(ctx, frame)
		return turns, nil
	})
}
