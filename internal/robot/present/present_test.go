package present

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafebot-sim/server/internal/robot/model"
)

func entry(action string, args map[string]any, order ...string) model.TraceEntry {
	return model.TraceEntry{Action: action, Arguments: args, ArgOrder: order}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		entry model.TraceEntry
		want  string
	}{
		{entry("move_forward", map[string]any{"distance": 3.0}), "Moving forward 3 m"},
		{entry("move_backward", map[string]any{"distance": 2.5}), "Moving backward 2.5 m"},
		{entry("turn_left", map[string]any{"angle": 90.0}), "Turning left 90°"},
		{entry("turn_right", map[string]any{"angle": 45.0}), "Turning right 45°"},
		{entry("wait", map[string]any{"duration": 2.0}), "Waiting for 2 s"},
		{entry("pickup", map[string]any{"object_id": "coffee"}), "Picking up 'coffee'"},
		{entry("put", map[string]any{"object_id": "coffee", "location": "Table 8"}), "Putting 'coffee' at Table 8"},
		{entry("dance", nil), "dance"},
	}
	for _, tt := range tests {
		t.Run(tt.entry.Action, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.entry))
		})
	}
}

func TestFormatCall(t *testing.T) {
	e := entry("put", map[string]any{"object_id": "coffee", "location": "Table 8"}, "object_id", "location")
	assert.Equal(t, "put(object_id=coffee, location=Table 8)", FormatCall(e))

	// without a declared order keys are sorted
	e.ArgOrder = nil
	assert.Equal(t, "put(location=Table 8, object_id=coffee)", FormatCall(e))

	assert.Equal(t, "move_forward(distance=11)", FormatCall(entry("move_forward", map[string]any{"distance": 11.0}, "distance")))
}

func TestRenderTrace(t *testing.T) {
	assert.Contains(t, RenderTrace(nil), "(no actions yet)")

	out := RenderTrace([]model.TraceEntry{
		entry("move_forward", map[string]any{"distance": 11.0}, "distance"),
		entry("pickup", map[string]any{"object_id": "coffee"}, "object_id"),
	})
	assert.Contains(t, out, "  1. move_forward(distance=11)\n")
	assert.Contains(t, out, "  2. pickup(object_id=coffee)\n")
}

func TestRenderTrack(t *testing.T) {
	f := model.Frame{
		Layout:  model.DefaultLayout(),
		Pose:    model.RobotPose{Position: 11, Orientation: model.Forward},
		History: []model.RobotPose{model.InitialPose(), {Position: 11, Orientation: model.Forward}},
	}
	out := RenderTrack(f, 80)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "G")
	assert.Contains(t, lines[0], "T1")
	assert.Contains(t, lines[0], "T10")
	assert.Contains(t, lines[0], "C")
	assert.Equal(t, 1, strings.Count(lines[1], ">"))
	assert.LessOrEqual(t, len(lines[1]), 80)
	// the robot sits under the counter label
	assert.Equal(t, strings.Index(lines[0], "C"), strings.Index(lines[1], ">"))

	f.Pose.Orientation = model.Backward
	assert.Contains(t, RenderTrack(f, 80), "<")
}

func TestRenderTrackNarrowAndOutOfBounds(t *testing.T) {
	f := model.Frame{
		Layout:  model.DefaultLayout(),
		Pose:    model.RobotPose{Position: -5, Orientation: model.Backward},
		History: []model.RobotPose{model.InitialPose(), {Position: -5, Orientation: model.Backward}},
	}
	out := RenderTrack(f, 5)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, minTrackWidth-1, len(lines[1]))
	assert.Equal(t, 2, strings.Index(lines[1], "<"))
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, 60)
	ctx := context.Background()

	f := model.Frame{Layout: model.DefaultLayout(), Pose: model.InitialPose(), History: []model.RobotPose{model.InitialPose()}}
	c.Idle(ctx, f)
	assert.Contains(t, buf.String(), "Idle: robot at entry gate (x=0)")

	e := entry("move_forward", map[string]any{"distance": 11.0}, "distance")
	e.Pose = model.RobotPose{Position: 11, Orientation: model.Forward}
	f.Trace = []model.TraceEntry{e}
	f.Current = &f.Trace[0]
	f.Pose = e.Pose
	buf.Reset()
	c.Step(ctx, f)
	assert.Contains(t, buf.String(), "Current action: Moving forward 11 m")
	assert.Contains(t, buf.String(), "1. move_forward(distance=11)")

	buf.Reset()
	c.Done(ctx, f, nil)
	assert.Contains(t, buf.String(), "Simulation complete! 1 action(s) executed.")
	assert.Contains(t, buf.String(), "Final pose: x=11 facing forward")

	buf.Reset()
	c.Done(ctx, f, errors.New("boom"))
	assert.Contains(t, buf.String(), "Simulation aborted after 1 action(s): boom")
}

type fakePublisher struct {
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channels = append(f.channels, channel)
	if b, ok := message.([]byte); ok {
		f.payloads = append(f.payloads, b)
	}
	return redis.NewIntResult(1, f.err)
}

func TestPublisher(t *testing.T) {
	fake := &fakePublisher{}
	p := NewPublisher(fake, "")
	ctx := context.Background()
	f := model.Frame{SessionID: "s-1", Layout: model.DefaultLayout(), Pose: model.InitialPose()}

	p.Idle(ctx, f)
	p.Step(ctx, f)
	p.Done(ctx, f, errors.New("planner is unavailable"))

	require.Len(t, fake.channels, 3)
	for _, ch := range fake.channels {
		assert.Equal(t, "cafebot:session:s-1:frames", ch)
	}

	var ev struct {
		Type  string      `json:"type"`
		Error string      `json:"error"`
		Frame model.Frame `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(fake.payloads[2], &ev))
	assert.Equal(t, EventDone, ev.Type)
	assert.Equal(t, "planner is unavailable", ev.Error)
	assert.Equal(t, "s-1", ev.Frame.SessionID)

	require.NoError(t, json.Unmarshal(fake.payloads[0], &ev))
	assert.Equal(t, EventIdle, ev.Type)
}

func TestPublisherSwallowsErrors(t *testing.T) {
	fake := &fakePublisher{err: errors.New("connection refused")}
	p := NewPublisher(fake, "shop")
	assert.NotPanics(t, func() {
		p.Step(context.Background(), model.Frame{SessionID: "s-2"})
	})
	assert.Equal(t, []string{"shop:session:s-2:frames"}, fake.channels)
}

type countingPresenter struct{ idle, step, done int }

func (c *countingPresenter) Idle(context.Context, model.Frame)        { c.idle++ }
func (c *countingPresenter) Step(context.Context, model.Frame)        { c.step++ }
func (c *countingPresenter) Done(context.Context, model.Frame, error) { c.done++ }

func TestMulti(t *testing.T) {
	a, b := &countingPresenter{}, &countingPresenter{}
	m := Multi(a, nil, b)
	ctx := context.Background()

	m.Idle(ctx, model.Frame{})
	m.Step(ctx, model.Frame{})
	m.Step(ctx, model.Frame{})
	m.Done(ctx, model.Frame{}, nil)

	for _, p := range []*countingPresenter{a, b} {
		assert.Equal(t, 1, p.idle)
		assert.Equal(t, 2, p.step)
		assert.Equal(t, 1, p.done)
	}
}
