package parsers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/model"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

// basic safety limits to avoid pathological payloads
const (
	maxNameLen      = 128
	maxArgumentsLen = 16 * 1024 // 16KB
	maxErrSnippet   = 200
)

// ParsePlannerReply extracts the function call proposed in msg.
// It returns a nil call when the planner proposed none. Only the first tool
// call is read; callers trim extras before the reply enters the conversation.
func ParsePlannerReply(msg *schema.Message) (call *model.ActionCall, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "reply_parser").Msgf("panic recovered: %v", r)
			call = nil
			err = errx.MalformedResponse("parser panic")
		}
	}()

	if msg == nil {
		return nil, errx.MalformedResponse("empty reply")
	}
	if len(msg.ToolCalls) == 0 {
		return nil, nil
	}

	tc := msg.ToolCalls[0]
	name := strings.TrimSpace(tc.Function.Name)
	switch {
	case name == "":
		return nil, errx.MalformedResponse("function call without a name")
	case len(name) > maxNameLen:
		return nil, errx.MalformedResponse("function name too long")
	case !utf8.ValidString(name):
		return nil, errx.MalformedResponse("function name is not valid utf8")
	}

	raw := tc.Function.Arguments
	if len(raw) > maxArgumentsLen {
		return nil, errx.MalformedResponse(fmt.Sprintf("arguments of %s exceed %d bytes", name, maxArgumentsLen))
	}
	args, perr := model.ParseArguments(raw)
	if perr != nil {
		logx.Warn().
			Str("component", "reply_parser").
			Str("action", name).
			Str("arguments", safeSnippet(raw)).
			Msg("planner sent unparseable arguments")
		return nil, errx.MalformedResponse(fmt.Sprintf("%s: %v", name, perr))
	}

	return &model.ActionCall{
		CallID:        tc.ID,
		Name:          name,
		Arguments:     args,
		ArgumentsJSON: raw,
	}, nil
}

func safeSnippet(s string) string {
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet] + "..."
}
