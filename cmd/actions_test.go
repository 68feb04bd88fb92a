package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/cafebot-sim/server/internal/core/error"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecCommand(t *testing.T) {
	out, err := execute(t, "exec", "move_forward", `{"distance": 3}`)
	require.NoError(t, err)
	assert.Contains(t, out, `result: {"status":"ok"}`)
	assert.Contains(t, out, "pose:   x=3 facing forward")

	out, err = execute(t, "exec", "put", `{"object_id": "coffee", "location": "Table 8"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `{"status":"placed"}`)
}

func TestExecCommandRejectsBadCalls(t *testing.T) {
	_, err := execute(t, "exec", "teleport", `{"x": 5}`)
	assert.ErrorIs(t, err, errx.ErrUnknownAction)
	assert.Equal(t, 3, errx.ExitCode(err))

	_, err = execute(t, "exec", "wait")
	assert.ErrorIs(t, err, errx.ErrInvalidArguments)

	_, err = execute(t, "exec", "wait", `[1]`)
	assert.ErrorIs(t, err, errx.ErrInvalidInput)
}

func TestActionsCommand(t *testing.T) {
	out, err := execute(t, "actions")
	require.NoError(t, err)
	for _, name := range []string{"move_forward", "move_backward", "turn_left", "turn_right", "wait", "pickup", "put"} {
		assert.Contains(t, out, name)
	}
}
