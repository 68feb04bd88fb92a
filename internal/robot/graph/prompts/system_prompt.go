package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/cafebot-sim/server/internal/robot/model"
)

//go:embed template/system_prompt.txt
var systemPrompt string

// RenderSystem renders the planner's system instructions for a cafe layout
// via the Eino prompt component, which also fires prompt callbacks.
func RenderSystem(ctx context.Context, layout model.CafeLayout, actions []string) (string, error) {
	if layout.Tables < 1 {
		return "", fmt.Errorf("system prompt render: layout needs at least one table, got %d", layout.Tables)
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
	)
	vars := map[string]any{
		"Gate":       formatX(layout.Gate),
		"Counter":    formatX(layout.Counter),
		"FirstTable": formatX(layout.TablePosition(1)),
		"LastTable":  formatX(layout.TablePosition(layout.Tables)),
		"Actions":    strings.Join(actions, ", "),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func formatX(x float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", x), "0"), ".")
}
