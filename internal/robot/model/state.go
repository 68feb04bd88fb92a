package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// TraceEntry records one executed action.
type TraceEntry struct {
	Round     int            `json:"round"`
	CallID    string         `json:"call_id"`
	Action    string         `json:"action"`
	Arguments map[string]any `json:"arguments"`
	// ArgOrder is the declaration order of the action's parameters, for display.
	ArgOrder []string  `json:"-"`
	Status   Status    `json:"status"`
	Pose     RobotPose `json:"pose"`
}

// PlanState is the per-session graph local state.
// Concurrency model:
//   - One PlanState belongs to exactly one Runner.Run call.
//   - Inside the graph it is only touched from Eino state handlers or
//     compose.ProcessState, which serialise access.
//   - Runner reads it again only after Invoke has returned.
type PlanState struct {
	SessionID   string
	Instruction string
	Model       string
	Layout      CafeLayout

	Conversation *Conversation
	Pose         RobotPose
	History      []RobotPose // initial pose plus one entry per executed action
	Trace        []TraceEntry

	Pending   *ActionCall // set by the planner post-handler, consumed by the executor
	Rounds    int         // planner invocations so far
	CallIDSeq int         // local sequence to synthesize call ids when the provider omits them

	Started  time.Time
	Deadline time.Time // zero means no wall-clock budget

	FinalMessage string
	TotalCostUSD float64

	// Err is the first fatal error raised inside the graph.
	Err error
}

// NewPlanState returns an empty state with the robot at the gate.
func NewPlanState() *PlanState {
	pose := InitialPose()
	return &PlanState{
		Layout:  DefaultLayout(),
		Pose:    pose,
		History: []RobotPose{pose},
		Trace:   []TraceEntry{},
	}
}

// Fail records err as the session failure unless one is already recorded,
// and returns the recorded failure.
func (s *PlanState) Fail(err error) error {
	if s.Err == nil {
		s.Err = err
	}
	return s.Err
}

// Frame snapshots the state for the presentation layer.
func (s *PlanState) Frame() Frame {
	f := Frame{
		SessionID:   s.SessionID,
		Instruction: s.Instruction,
		Layout:      s.Layout,
		Pose:        s.Pose,
		History:     append([]RobotPose(nil), s.History...),
		Trace:       append([]TraceEntry(nil), s.Trace...),
	}
	if n := len(f.Trace); n > 0 {
		cur := f.Trace[n-1]
		f.Current = &cur
	}
	return f
}

// Result snapshots the state for the session caller.
func (s *PlanState) Result() *SessionResult {
	res := &SessionResult{
		SessionID:    s.SessionID,
		Trace:        append([]TraceEntry(nil), s.Trace...),
		Pose:         s.Pose,
		History:      append([]RobotPose(nil), s.History...),
		Rounds:       s.Rounds,
		FinalMessage: s.FinalMessage,
		TotalCostUSD: s.TotalCostUSD,
	}
	if s.Conversation != nil {
		res.Conversation = s.Conversation.Turns()
	}
	return res
}

// Frame is a read-only view handed to presenters.
type Frame struct {
	SessionID   string       `json:"session_id"`
	Instruction string       `json:"instruction"`
	Layout      CafeLayout   `json:"layout"`
	Pose        RobotPose    `json:"pose"`
	History     []RobotPose  `json:"history"`
	Trace       []TraceEntry `json:"trace"`
	Current     *TraceEntry  `json:"current,omitempty"`
}

// SessionInput is what a caller supplies to start a plan.
type SessionInput struct {
	Instruction string `json:"instruction"`
	Model       string `json:"model"`
}

// SessionResult is what a session leaves behind, complete or partial.
type SessionResult struct {
	SessionID    string            `json:"session_id"`
	Trace        []TraceEntry      `json:"trace"`
	Pose         RobotPose         `json:"pose"`
	History      []RobotPose       `json:"history"`
	Conversation []*schema.Message `json:"conversation"`
	Rounds       int               `json:"rounds"`
	FinalMessage string            `json:"final_message,omitempty"`
	TotalCostUSD float64           `json:"total_cost_usd"`
}
