package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/cafebot-sim/server/pkg/logger"
)

// newModelHandler builds a typed ModelCallbackHandler that logs each planner
// round: the context it saw and the action or text it produced.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := logx.Debug().Str("component", info.Type).Str("node", info.Name)
			if input != nil {
				ev = ev.Int("turns", len(input.Messages)).Int("tools", len(input.Tools))
				if last := lastTurn(input.Messages); last != nil {
					ev = ev.Str("last_role", string(last.Role)).Str("last_content", clip(last.Content))
				}
			}
			ev.Msg("Model start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			ev := logx.Debug().Str("component", info.Type).Str("node", info.Name)
			if output != nil && output.Message != nil {
				msg := output.Message
				if len(msg.ToolCalls) > 0 {
					ev = ev.Str("action", msg.ToolCalls[0].Function.Name).
						Str("arguments", clip(msg.ToolCalls[0].Function.Arguments)).
						Int("tool_calls", len(msg.ToolCalls))
				} else if content := strings.TrimSpace(msg.Content); content != "" {
					ev = ev.Str("assistant", clip(content))
				}
			}
			ev.Msg("Model end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("component", info.Type).Str("node", info.Name).Msg("Model error")
			return ctx
		},
	}
}

func lastTurn(msgs []*schema.Message) *schema.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i] != nil {
			return msgs[i]
		}
	}
	return nil
}

func clip(s string) string {
	const max = 240
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
