package model

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationSeed(t *testing.T) {
	c := NewConversation("you are a cafe robot", "serve coffee to table 8")

	turns := c.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, schema.System, turns[0].Role)
	assert.Equal(t, schema.User, turns[1].Role)
	assert.Equal(t, "serve coffee to table 8", turns[1].Content)
	assert.Zero(t, c.CallTurns())
}

func TestConversationAppendExchangePairsCallID(t *testing.T) {
	c := NewConversation("sys", "go")
	call := ActionCall{CallID: "call_1", Name: "move_forward", Arguments: map[string]any{"distance": 3.0}}

	require.NoError(t, c.AppendExchange(call, ExecutionResult{Status: StatusOK}))

	turns := c.Turns()
	require.Len(t, turns, 4)

	callTurn, resultTurn := turns[2], turns[3]
	assert.Equal(t, schema.Assistant, callTurn.Role)
	require.Len(t, callTurn.ToolCalls, 1)
	assert.Equal(t, "call_1", callTurn.ToolCalls[0].ID)
	assert.Equal(t, "move_forward", callTurn.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"distance":3}`, callTurn.ToolCalls[0].Function.Arguments)

	assert.Equal(t, schema.Tool, resultTurn.Role)
	assert.Equal(t, "call_1", resultTurn.ToolCallID)
	assert.Equal(t, "move_forward", resultTurn.ToolName)
	assert.JSONEq(t, `{"status":"ok"}`, resultTurn.Content)

	assert.Equal(t, 1, c.CallTurns())
	assert.Equal(t, 1, c.ResultTurns())
}

func TestConversationTurnsIsACopy(t *testing.T) {
	c := NewConversation("sys", "go")
	turns := c.Turns()
	turns = append(turns, schema.UserMessage("injected"))
	turns[0] = nil

	assert.Equal(t, 2, c.Len())
	assert.NotNil(t, c.Turns()[0])
	_ = turns
}

func TestPlanStateFrameAndResult(t *testing.T) {
	s := NewPlanState()
	s.SessionID = "s-1"
	s.Conversation = NewConversation("sys", "go")

	idle := s.Frame()
	assert.Nil(t, idle.Current)
	assert.Equal(t, []RobotPose{InitialPose()}, idle.History)

	s.Pose = RobotPose{Position: 3, Orientation: Forward}
	s.History = append(s.History, s.Pose)
	s.Trace = append(s.Trace, TraceEntry{Round: 1, CallID: "call_1", Action: "move_forward", Arguments: map[string]any{"distance": 3.0}, Status: StatusOK, Pose: s.Pose})

	f := s.Frame()
	require.NotNil(t, f.Current)
	assert.Equal(t, "move_forward", f.Current.Action)

	// snapshots do not alias live state
	s.Trace[0].Action = "changed"
	assert.Equal(t, "move_forward", f.Trace[0].Action)

	res := s.Result()
	assert.Equal(t, "s-1", res.SessionID)
	assert.Len(t, res.Conversation, 2)
	assert.Equal(t, 3.0, res.Pose.Position)
}

func TestPlanStateFailKeepsFirstError(t *testing.T) {
	s := NewPlanState()
	first := errors.New("first")
	assert.Equal(t, first, s.Fail(first))
	assert.Equal(t, first, s.Fail(errors.New("second")))
	assert.Equal(t, first, s.Err)
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 2_000_000}, ResolvePricing("gemini-2.5-flash"))
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 5.00, out, 1e-9)
	assert.InDelta(t, 5.30, total, 1e-9)

	_, _, total = ComputeCost(nil, ResolvePricing("gemini-2.5-flash"))
	assert.Zero(t, total)
	assert.Equal(t, Pricing{}, ResolvePricing("unknown-model"))
}
