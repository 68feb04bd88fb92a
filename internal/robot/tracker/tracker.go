// Package tracker folds executed actions into the robot's 1-D pose.
package tracker

import (
	"fmt"

	"github.com/cafebot-sim/server/internal/robot/model"
)

// Apply returns the pose after action. Only moves change the pose.
func Apply(pose model.RobotPose, action model.Action) model.RobotPose {
	switch a := action.(type) {
	case model.MoveForward:
		return model.RobotPose{Position: pose.Position + a.Distance, Orientation: model.Forward}
	case model.MoveBackward:
		return model.RobotPose{Position: pose.Position - a.Distance, Orientation: model.Backward}
	case model.TurnLeft, model.TurnRight, model.Wait, model.Pickup, model.Put:
		return pose
	default:
		panic(fmt.Sprintf("tracker: unhandled action %T", action))
	}
}

// Replay folds actions from the initial pose. history holds the initial pose
// followed by the pose after each action.
func Replay(actions []model.Action) (final model.RobotPose, history []model.RobotPose) {
	final = model.InitialPose()
	history = make([]model.RobotPose, 0, len(actions)+1)
	history = append(history, final)
	for _, a := range actions {
		final = Apply(final, a)
		history = append(history, final)
	}
	return final, history
}

// Positions extracts the x coordinates of a pose history.
func Positions(history []model.RobotPose) []float64 {
	xs := make([]float64, len(history))
	for i, p := range history {
		xs[i] = p.Position
	}
	return xs
}
