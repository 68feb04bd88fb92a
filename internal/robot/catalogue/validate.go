package catalogue

import (
	"fmt"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/model"
)

// Validate checks call against its closed schema and returns the typed action.
// It never mutates call, so validating the same call twice gives the same answer.
func (c *Catalogue) Validate(call model.ActionCall) (model.Action, error) {
	spec, ok := c.Lookup(call.Name)
	if !ok {
		return nil, errx.UnknownAction(call.Name)
	}

	var problems []string
	for _, p := range spec.Params {
		v, present := call.Arguments[p.Name]
		if !present {
			if p.Required {
				problems = append(problems, fmt.Sprintf("missing required parameter %q", p.Name))
			}
			continue
		}
		if !p.Type.Matches(v) {
			problems = append(problems, fmt.Sprintf("parameter %q must be a %s, got %s", p.Name, p.Type, jsonType(v)))
		}
	}
	for _, name := range model.SortedKeys(call.Arguments) {
		if _, declared := spec.Param(name); !declared {
			problems = append(problems, fmt.Sprintf("unexpected parameter %q", name))
		}
	}
	if len(problems) > 0 {
		return nil, errx.InvalidArguments(call.Name, problems)
	}

	kind, _ := model.ParseKind(spec.Name)
	action, err := model.NewAction(kind, call.Arguments)
	if err != nil {
		return nil, errx.InvalidArguments(call.Name, []string{err.Error()})
	}
	return action, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
