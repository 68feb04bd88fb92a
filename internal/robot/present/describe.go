package present

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cafebot-sim/server/internal/robot/model"
)

// Describe captions an executed action for people.
func Describe(e model.TraceEntry) string {
	args := e.Arguments
	switch model.Kind(e.Action) {
	case model.KindMoveForward:
		return fmt.Sprintf("Moving forward %s m", formatValue(args["distance"]))
	case model.KindMoveBackward:
		return fmt.Sprintf("Moving backward %s m", formatValue(args["distance"]))
	case model.KindTurnLeft:
		return fmt.Sprintf("Turning left %s°", formatValue(args["angle"]))
	case model.KindTurnRight:
		return fmt.Sprintf("Turning right %s°", formatValue(args["angle"]))
	case model.KindWait:
		return fmt.Sprintf("Waiting for %s s", formatValue(args["duration"]))
	case model.KindPickup:
		return fmt.Sprintf("Picking up '%s'", formatValue(args["object_id"]))
	case model.KindPut:
		return fmt.Sprintf("Putting '%s' at %s", formatValue(args["object_id"]), formatValue(args["location"]))
	default:
		return e.Action
	}
}

// FormatCall renders an entry as name(k=v, ...) in parameter order.
func FormatCall(e model.TraceEntry) string {
	keys := e.ArgOrder
	if len(keys) != len(e.Arguments) {
		keys = model.SortedKeys(e.Arguments)
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(e.Arguments[k]))
	}
	return e.Action + "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case nil:
		return "?"
	default:
		return fmt.Sprint(x)
	}
}

func formatX(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
