// Package executor runs primitive actions against the stub world.
package executor

import (
	"fmt"

	"github.com/cafebot-sim/server/internal/robot/catalogue"
	"github.com/cafebot-sim/server/internal/robot/model"
)

// Run executes a validated action. The stub world always succeeds.
func Run(action model.Action) model.ExecutionResult {
	switch action.(type) {
	case model.MoveForward, model.MoveBackward, model.TurnLeft, model.TurnRight, model.Wait:
		return model.ExecutionResult{Status: model.StatusOK}
	case model.Pickup:
		return model.ExecutionResult{Status: model.StatusPicked}
	case model.Put:
		return model.ExecutionResult{Status: model.StatusPlaced}
	default:
		panic(fmt.Sprintf("executor: unhandled action %T", action))
	}
}

// Executor executes calls by name after checking them against a catalogue.
type Executor struct {
	catalogue *catalogue.Catalogue
}

func New(c *catalogue.Catalogue) *Executor {
	return &Executor{catalogue: c}
}

// Execute validates name and arguments and runs the action.
func (e *Executor) Execute(name string, arguments map[string]any) (model.ExecutionResult, error) {
	_, res, err := e.Perform(model.ActionCall{Name: name, Arguments: arguments})
	return res, err
}

// Perform validates call and runs it, also returning the typed action so
// callers can advance the robot pose with the same value.
func (e *Executor) Perform(call model.ActionCall) (model.Action, model.ExecutionResult, error) {
	action, err := e.catalogue.Validate(call)
	if err != nil {
		return nil, model.ExecutionResult{}, err
	}
	return action, Run(action), nil
}
