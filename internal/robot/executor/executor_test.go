package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/catalogue"
	"github.com/cafebot-sim/server/internal/robot/model"
)

func TestRunStatusByFamily(t *testing.T) {
	tests := []struct {
		action model.Action
		want   model.Status
	}{
		{model.MoveForward{Distance: 1}, model.StatusOK},
		{model.MoveBackward{Distance: 1}, model.StatusOK},
		{model.TurnLeft{Angle: 90}, model.StatusOK},
		{model.TurnRight{Angle: 90}, model.StatusOK},
		{model.Wait{Duration: 2}, model.StatusOK},
		{model.Pickup{ObjectID: "coffee"}, model.StatusPicked},
		{model.Put{ObjectID: "coffee", Location: "Table 8"}, model.StatusPlaced},
	}
	require.Len(t, tests, len(model.Kinds))

	for _, tt := range tests {
		t.Run(string(tt.action.Kind()), func(t *testing.T) {
			assert.Equal(t, tt.want, Run(tt.action).Status)
			// deterministic
			assert.Equal(t, Run(tt.action), Run(tt.action))
		})
	}
}

func TestExecute(t *testing.T) {
	e := New(catalogue.MustDefault())

	res, err := e.Execute("pickup", map[string]any{"object_id": "coffee"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPicked, res.Status)

	res, err = e.Execute("put", map[string]any{"object_id": "coffee", "location": "Table 8"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlaced, res.Status)

	_, err = e.Execute("teleport", map[string]any{"x": 5.0})
	assert.ErrorIs(t, err, errx.ErrUnknownAction)

	_, err = e.Execute("move_forward", map[string]any{"distance": 1.0, "speed": 2.0})
	assert.ErrorIs(t, err, errx.ErrInvalidArguments)

	_, err = e.Execute("wait", map[string]any{})
	assert.ErrorIs(t, err, errx.ErrInvalidArguments)
}

func TestPerformReturnsTypedAction(t *testing.T) {
	e := New(catalogue.MustDefault())

	action, res, err := e.Perform(model.ActionCall{CallID: "call_1", Name: "move_backward", Arguments: map[string]any{"distance": 2.5}})
	require.NoError(t, err)
	assert.Equal(t, model.MoveBackward{Distance: 2.5}, action)
	assert.Equal(t, model.StatusOK, res.Status)

	action, _, err = e.Perform(model.ActionCall{Name: "teleport"})
	assert.ErrorIs(t, err, errx.ErrUnknownAction)
	assert.Nil(t, action)
}
