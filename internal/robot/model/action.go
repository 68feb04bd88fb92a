package model

import (
	"fmt"
	"sort"
)

// Kind names one primitive robot action.
type Kind string

const (
	KindMoveForward  Kind = "move_forward"
	KindMoveBackward Kind = "move_backward"
	KindTurnLeft     Kind = "turn_left"
	KindTurnRight    Kind = "turn_right"
	KindWait         Kind = "wait"
	KindPickup       Kind = "pickup"
	KindPut          Kind = "put"
)

// Kinds lists every primitive in catalogue order.
var Kinds = []Kind{
	KindMoveForward,
	KindMoveBackward,
	KindTurnLeft,
	KindTurnRight,
	KindWait,
	KindPickup,
	KindPut,
}

// ParseKind returns the Kind for a planner-supplied name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

// Action is a validated primitive with its typed arguments.
// The set of implementations is closed to this package.
type Action interface {
	Kind() Kind
	// Arguments renders the canonical argument mapping sent back to the planner.
	Arguments() map[string]any
	isAction()
}

type MoveForward struct{ Distance float64 }
type MoveBackward struct{ Distance float64 }
type TurnLeft struct{ Angle float64 }
type TurnRight struct{ Angle float64 }
type Wait struct{ Duration float64 }
type Pickup struct{ ObjectID string }
type Put struct {
	ObjectID string
	Location string
}

func (MoveForward) Kind() Kind  { return KindMoveForward }
func (MoveBackward) Kind() Kind { return KindMoveBackward }
func (TurnLeft) Kind() Kind     { return KindTurnLeft }
func (TurnRight) Kind() Kind    { return KindTurnRight }
func (Wait) Kind() Kind         { return KindWait }
func (Pickup) Kind() Kind       { return KindPickup }
func (Put) Kind() Kind          { return KindPut }

func (a MoveForward) Arguments() map[string]any  { return map[string]any{"distance": a.Distance} }
func (a MoveBackward) Arguments() map[string]any { return map[string]any{"distance": a.Distance} }
func (a TurnLeft) Arguments() map[string]any     { return map[string]any{"angle": a.Angle} }
func (a TurnRight) Arguments() map[string]any    { return map[string]any{"angle": a.Angle} }
func (a Wait) Arguments() map[string]any         { return map[string]any{"duration": a.Duration} }
func (a Pickup) Arguments() map[string]any       { return map[string]any{"object_id": a.ObjectID} }
func (a Put) Arguments() map[string]any {
	return map[string]any{"object_id": a.ObjectID, "location": a.Location}
}

func (MoveForward) isAction()  {}
func (MoveBackward) isAction() {}
func (TurnLeft) isAction()     {}
func (TurnRight) isAction()    {}
func (Wait) isAction()         {}
func (Pickup) isAction()       {}
func (Put) isAction()          {}

// NewAction builds the typed variant for kind from already schema-checked arguments.
// It still reports missing or mistyped values so a catalogue that disagrees
// with the variants is caught at load time.
func NewAction(kind Kind, args map[string]any) (Action, error) {
	switch kind {
	case KindMoveForward:
		d, err := number(args, "distance")
		return MoveForward{Distance: d}, err
	case KindMoveBackward:
		d, err := number(args, "distance")
		return MoveBackward{Distance: d}, err
	case KindTurnLeft:
		a, err := number(args, "angle")
		return TurnLeft{Angle: a}, err
	case KindTurnRight:
		a, err := number(args, "angle")
		return TurnRight{Angle: a}, err
	case KindWait:
		d, err := number(args, "duration")
		return Wait{Duration: d}, err
	case KindPickup:
		id, err := text(args, "object_id")
		return Pickup{ObjectID: id}, err
	case KindPut:
		id, err := text(args, "object_id")
		if err != nil {
			return nil, err
		}
		loc, err := text(args, "location")
		return Put{ObjectID: id, Location: loc}, err
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}

func number(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%q must be a number, got %T", key, v)
	}
	return f, nil
}

func text(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q must be a string, got %T", key, v)
	}
	return s, nil
}

// SortedKeys returns the argument names in a stable order for rendering.
func SortedKeys(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
