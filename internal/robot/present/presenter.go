// Package present renders plan sessions for people and other processes.
package present

import (
	"context"

	"github.com/cafebot-sim/server/internal/robot/model"
)

// Presenter receives a frame when a session starts, after every executed
// action, and once when the session ends. Nothing flows back to the planner;
// implementations deal with their own failures.
type Presenter interface {
	Idle(ctx context.Context, frame model.Frame)
	Step(ctx context.Context, frame model.Frame)
	// Done is called with a nil err on completion and the fatal error otherwise.
	Done(ctx context.Context, frame model.Frame, err error)
}

// Nop discards every frame.
type Nop struct{}

func (Nop) Idle(context.Context, model.Frame)        {}
func (Nop) Step(context.Context, model.Frame)        {}
func (Nop) Done(context.Context, model.Frame, error) {}

type multi []Presenter

// Multi fans frames out to several presenters in order.
func Multi(ps ...Presenter) Presenter {
	out := make(multi, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multi) Idle(ctx context.Context, f model.Frame) {
	for _, p := range m {
		p.Idle(ctx, f)
	}
}

func (m multi) Step(ctx context.Context, f model.Frame) {
	for _, p := range m {
		p.Step(ctx, f)
	}
}

func (m multi) Done(ctx context.Context, f model.Frame, err error) {
	for _, p := range m {
		p.Done(ctx, f, err)
	}
}
