package model

import (
	"encoding/json"
	"fmt"
)

// ParamType is the JSON type of one action parameter.
type ParamType string

const (
	ParamNumber ParamType = "number"
	ParamString ParamType = "string"
)

// Valid reports whether t is one of the supported parameter types.
func (t ParamType) Valid() bool {
	return t == ParamNumber || t == ParamString
}

// Matches reports whether a decoded JSON value has this type.
func (t ParamType) Matches(v any) bool {
	switch t {
	case ParamNumber:
		_, ok := v.(float64)
		return ok
	case ParamString:
		_, ok := v.(string)
		return ok
	default:
		return false
	}
}

// Param describes one parameter of an ActionSpec.
type Param struct {
	Name        string    `yaml:"name" json:"name"`
	Type        ParamType `yaml:"type" json:"type"`
	Description string    `yaml:"description" json:"description,omitempty"`
	Required    bool      `yaml:"required" json:"required"`
}

// ActionSpec is the closed schema of one primitive action.
type ActionSpec struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Params      []Param `yaml:"params" json:"params"`
}

// Param looks up a parameter by name.
func (s ActionSpec) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParamNames returns the parameter names in declaration order.
func (s ActionSpec) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// ActionCall is one function call proposed by the planner.
type ActionCall struct {
	CallID        string         `json:"call_id"`
	Name          string         `json:"name"`
	Arguments     map[string]any `json:"arguments"`
	ArgumentsJSON string         `json:"-"`
}

// ParseArguments decodes a planner argument payload. Only JSON objects are accepted.
func ParseArguments(payload string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		return nil, fmt.Errorf("arguments are not a JSON object: null")
	}
	return args, nil
}

// EncodeArguments is the inverse of ParseArguments.
func EncodeArguments(args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("marshal arguments: %w", err)
	}
	return string(b), nil
}

// Status is the outcome reported by the stub executor.
type Status string

const (
	StatusOK     Status = "ok"
	StatusPicked Status = "picked"
	StatusPlaced Status = "placed"
)

// ExecutionResult is what the executor hands back to the planner.
type ExecutionResult struct {
	Status Status `json:"status"`
}

// JSON renders the result as the function-call output payload.
func (r ExecutionResult) JSON() string {
	b, _ := json.Marshal(r)
	return string(b)
}
