package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/model"
)

const DefaultMaxRounds = 50

type planStateKey struct{}

// WithPlanState attaches the session state so the graph's local state and
// the planner client share one instance with the caller.
func WithPlanState(ctx context.Context, s *model.PlanState) context.Context {
	return context.WithValue(ctx, planStateKey{}, s)
}

// PlanStateFrom returns the state attached by WithPlanState, or nil.
func PlanStateFrom(ctx context.Context) *model.PlanState {
	s, _ := ctx.Value(planStateKey{}).(*model.PlanState)
	return s
}

// NormalizeMaxRounds returns a sane default when the provided value is invalid.
func NormalizeMaxRounds(n int) int {
	if n <= 0 {
		return DefaultMaxRounds
	}
	return n
}

// checkBudget fails once the planner has used every round or the session
// deadline has passed.
func checkBudget(s *model.PlanState, maxRounds int, now time.Time) error {
	maxRounds = NormalizeMaxRounds(maxRounds)
	if s.Rounds >= maxRounds {
		return errx.BudgetExceeded(fmt.Sprintf("planner still proposing actions after %d rounds", maxRounds))
	}
	if !s.Deadline.IsZero() && now.After(s.Deadline) {
		return errx.BudgetExceeded(fmt.Sprintf("wall-clock budget of %s spent", s.Deadline.Sub(s.Started).Round(time.Millisecond)))
	}
	return nil
}

// normalizeReply returns a shallow copy of out that keeps only the first
// tool call, with a synthesized id when the provider sent none. The second
// result is the number of dropped calls.
func normalizeReply(s *model.PlanState, out *schema.Message) (*schema.Message, int) {
	msg := *out
	if len(out.ToolCalls) == 0 {
		msg.ToolCalls = nil
		return &msg, 0
	}
	first := out.ToolCalls[0]
	if strings.TrimSpace(first.ID) == "" {
		s.CallIDSeq++
		first.ID = fmt.Sprintf("call_%d", s.CallIDSeq)
	}
	if first.Type == "" {
		first.Type = "function"
	}
	msg.ToolCalls = []schema.ToolCall{first}
	return &msg, len(out.ToolCalls) - 1
}
