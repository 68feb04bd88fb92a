package catalogue

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/model"
)

func TestDefaultDeclaresSevenPrimitives(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"move_forward", "move_backward", "turn_left", "turn_right", "wait", "pickup", "put"}, c.Names())

	put, ok := c.Lookup("put")
	require.True(t, ok)
	assert.Equal(t, []string{"object_id", "location"}, put.ParamNames())
	for _, p := range put.Params {
		assert.True(t, p.Required)
		assert.Equal(t, model.ParamString, p.Type)
	}

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestSpecsReturnsCopy(t *testing.T) {
	c := MustDefault()
	specs := c.Specs()
	specs[0].Name = "fly"
	_, ok := c.Lookup("move_forward")
	assert.True(t, ok)
	assert.Equal(t, "move_forward", c.Specs()[0].Name)
}

func TestToolInfos(t *testing.T) {
	infos := MustDefault().ToolInfos()
	require.Len(t, infos, 7)

	byName := map[string]*schema.ToolInfo{}
	for _, info := range infos {
		byName[info.Name] = info
		assert.NotEmpty(t, info.Desc)
		require.NotNil(t, info.ParamsOneOf)
	}
	assert.Contains(t, byName, "move_forward")
	assert.Contains(t, byName, "put")
	assert.Equal(t, "Put down an object at a location.", byName["put"].Desc)
}

func TestValidate(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		name     string
		call     model.ActionCall
		want     model.Action
		sentinel error
		problem  string
	}{
		{
			name: "move forward",
			call: model.ActionCall{Name: "move_forward", Arguments: map[string]any{"distance": 3.0}},
			want: model.MoveForward{Distance: 3},
		},
		{
			name: "put",
			call: model.ActionCall{Name: "put", Arguments: map[string]any{"object_id": "coffee", "location": "Table 8"}},
			want: model.Put{ObjectID: "coffee", Location: "Table 8"},
		},
		{
			name:     "unknown action",
			call:     model.ActionCall{Name: "teleport", Arguments: map[string]any{"x": 5.0}},
			sentinel: errx.ErrUnknownAction,
			problem:  "teleport",
		},
		{
			name:     "missing required key",
			call:     model.ActionCall{Name: "put", Arguments: map[string]any{"object_id": "coffee"}},
			sentinel: errx.ErrInvalidArguments,
			problem:  `missing required parameter "location"`,
		},
		{
			name:     "extra key",
			call:     model.ActionCall{Name: "wait", Arguments: map[string]any{"duration": 2.0, "reason": "customer"}},
			sentinel: errx.ErrInvalidArguments,
			problem:  `unexpected parameter "reason"`,
		},
		{
			name:     "wrong type",
			call:     model.ActionCall{Name: "move_backward", Arguments: map[string]any{"distance": "three"}},
			sentinel: errx.ErrInvalidArguments,
			problem:  `parameter "distance" must be a number, got string`,
		},
		{
			name:     "string expected",
			call:     model.ActionCall{Name: "pickup", Arguments: map[string]any{"object_id": 42.0}},
			sentinel: errx.ErrInvalidArguments,
			problem:  `parameter "object_id" must be a string, got number`,
		},
		{
			name:     "nil arguments",
			call:     model.ActionCall{Name: "turn_left"},
			sentinel: errx.ErrInvalidArguments,
			problem:  `missing required parameter "angle"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Validate(tt.call)
			if tt.sentinel != nil {
				require.ErrorIs(t, err, tt.sentinel)
				assert.ErrorContains(t, err, tt.problem)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	c := MustDefault()
	calls := []model.ActionCall{
		{Name: "move_forward", Arguments: map[string]any{"distance": 11.0}},
		{Name: "turn_right", Arguments: map[string]any{"angle": 180.0}},
		{Name: "wait", Arguments: map[string]any{"duration": 2.0}},
		{Name: "pickup", Arguments: map[string]any{"object_id": "coffee"}},
		{Name: "put", Arguments: map[string]any{"object_id": "coffee", "location": "Table 3"}},
	}
	for _, call := range calls {
		first, err := c.Validate(call)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := c.Validate(call)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
		// validating the canonical arguments of a valid action also succeeds
		_, err = c.Validate(model.ActionCall{Name: call.Name, Arguments: first.Arguments()})
		require.NoError(t, err)
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	full := string(rawCatalogue)

	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"empty", "", "empty document"},
		{"unknown field", "actions:\n  - name: wait\n    colour: red\n", "decode"},
		{"unknown action", full + "\n  - name: teleport\n    description: nope\n    params: []\n", `"teleport" has no executor`},
		{"duplicate action", full + "\n  - name: wait\n    description: again\n    params:\n      - {name: duration, type: number, required: true}\n", `duplicate action "wait"`},
		{"missing action", "actions:\n  - name: wait\n    description: pause\n    params:\n      - {name: duration, type: number, required: true}\n", "is not declared"},
		{"bad type", "actions:\n  - name: wait\n    description: pause\n    params:\n      - {name: duration, type: boolean, required: true}\n", "unsupported type"},
		{"schema mismatch", "actions:\n  - name: wait\n    description: pause\n    params:\n      - {name: seconds, type: number, required: true}\n", "does not match its variant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
