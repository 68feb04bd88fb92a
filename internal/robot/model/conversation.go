package model

import (
	"github.com/cloudwego/eino/schema"
)

// Conversation is the append-only list of turns exchanged with the planner.
// Turns are never edited after they are appended.
type Conversation struct {
	turns []*schema.Message
}

// NewConversation seeds a conversation with the system instructions and the
// user's free-text instruction.
func NewConversation(systemPrompt, instruction string) *Conversation {
	return &Conversation{
		turns: []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(instruction),
		},
	}
}

// AppendExchange appends the assistant function-call turn and its result turn.
// Both carry call.CallID so the planner can pair them.
func (c *Conversation) AppendExchange(call ActionCall, result ExecutionResult) error {
	args, err := EncodeArguments(call.Arguments)
	if err != nil {
		return err
	}
	callTurn := schema.AssistantMessage("", []schema.ToolCall{{
		ID:   call.CallID,
		Type: "function",
		Function: schema.FunctionCall{
			Name:      call.Name,
			Arguments: args,
		},
	}})
	resultTurn := &schema.Message{
		Role:       schema.Tool,
		Content:    result.JSON(),
		ToolCallID: call.CallID,
		ToolName:   call.Name,
	}
	c.turns = append(c.turns, callTurn, resultTurn)
	return nil
}

// Turns returns a copy of the turn list.
func (c *Conversation) Turns() []*schema.Message {
	out := make([]*schema.Message, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len is the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// CallTurns counts assistant function-call turns.
func (c *Conversation) CallTurns() int {
	n := 0
	for _, m := range c.turns {
		if m.Role == schema.Assistant && len(m.ToolCalls) > 0 {
			n++
		}
	}
	return n
}

// ResultTurns counts function-call result turns.
func (c *Conversation) ResultTurns() int {
	n := 0
	for _, m := range c.turns {
		if m.Role == schema.Tool {
			n++
		}
	}
	return n
}
