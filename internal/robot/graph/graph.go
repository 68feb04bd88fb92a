// Package graph wires the planner, executor and tracker into the
// plan-act-observe loop and runs sessions through it.
package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/catalogue"
	"github.com/cafebot-sim/server/internal/robot/graph/nodes"
	"github.com/cafebot-sim/server/internal/robot/graph/observers"
	"github.com/cafebot-sim/server/internal/robot/model"
	"github.com/cafebot-sim/server/internal/robot/present"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

// Config holds everything needed to compose the planning graph.
type Config struct {
	// Planner is the tool-calling chat model; the catalogue's tools are bound to it.
	Planner   einomodel.ToolCallingChatModel
	Catalogue *catalogue.Catalogue
	Presenter present.Presenter
	Layout    model.CafeLayout
	Session   model.SessionConfig
	// DefaultModel is used for sessions that do not name a model.
	DefaultModel string
}

// GraphBuilder handles the construction of the planning graph
type GraphBuilder struct {
	config  *Config
	planner einomodel.ToolCallingChatModel
	graph   *compose.Graph[model.SessionInput, *schema.Message]
}

// Runner executes plan sessions on a compiled graph. It is safe for
// concurrent use; every Run owns its state.
type Runner struct {
	runnable  compose.Runnable[model.SessionInput, *schema.Message]
	presenter present.Presenter
	layout    model.CafeLayout
	session   model.SessionConfig
	model     string
	now       func() time.Time
}

// BuildPlanner binds the catalogue to the planner, builds the graph and
// returns a Runner.
func BuildPlanner(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.Planner == nil {
		return nil, fmt.Errorf("planner model is nil")
	}
	if cfg.Catalogue == nil {
		return nil, fmt.Errorf("action catalogue is nil")
	}
	if cfg.Layout.Tables < 1 {
		return nil, fmt.Errorf("cafe layout needs at least one table")
	}
	if cfg.Presenter == nil {
		cfg.Presenter = present.Nop{}
	}
	cfg.Session.MaxRounds = nodes.NormalizeMaxRounds(cfg.Session.MaxRounds)

	planner, err := nodes.NewPlannerClient(cfg.Planner).WithTools(cfg.Catalogue.ToolInfos())
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind actions to planner")
		return nil, fmt.Errorf("failed to bind actions to planner: %w", err)
	}

	builder := &GraphBuilder{
		config:  &cfg,
		planner: planner,
		graph: compose.NewGraph[model.SessionInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.PlanState {
				if s := nodes.PlanStateFrom(ctx); s != nil {
					return s
				}
				return model.NewPlanState()
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Int("actions", len(cfg.Catalogue.Names())).Msg("Planning graph built successfully")
	return &Runner{
		runnable:  runnable,
		presenter: cfg.Presenter,
		layout:    cfg.Layout,
		session:   cfg.Session,
		model:     cfg.DefaultModel,
		now:       time.Now,
	}, nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeSeed,
		nodes.NewSeedNode(b.config.Catalogue.Names()),
	); err != nil {
		return fmt.Errorf("error adding seed node: %w", err)
	}

	if err := b.graph.AddChatModelNode(nodes.NodePlanner,
		b.planner,
		compose.WithStatePreHandler(nodes.NewPlannerPreHandler(b.config.Session.MaxRounds)),
		compose.WithStatePostHandler(nodes.NewPlannerPostHandler()),
	); err != nil {
		return fmt.Errorf("error adding planner node: %w", err)
	}

	if err := b.graph.AddLambdaNode(nodes.NodeExecutor,
		nodes.NewExecutorNode(b.config.Catalogue, b.config.Presenter),
	); err != nil {
		return fmt.Errorf("error adding executor node: %w", err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeSeed},
		{nodes.NodeSeed, nodes.NodePlanner},
		{nodes.NodeExecutor, nodes.NodePlanner},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	planBranch := compose.NewGraphBranch(
		nodes.NewPlanCondition(),
		map[string]bool{
			nodes.NodeExecutor: true,
			compose.END:        true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodePlanner, planBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding plan branch")
		return fmt.Errorf("error adding plan branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.SessionInput, *schema.Message], error) {
	// seed, then a planner and an executor step per round, plus the final
	// planner step; the round budget trips first
	maxSteps := 2*b.config.Session.MaxRounds + 10

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Int("max_steps", maxSteps).Msg("Graph compiled successfully")
	return runnable, nil
}

// Run plans and executes one instruction. The returned result is never nil
// once the input is accepted: on failure it holds everything executed
// before the fatal error.
func (r *Runner) Run(ctx context.Context, in model.SessionInput) (*model.SessionResult, error) {
	in.Instruction = strings.TrimSpace(in.Instruction)
	if in.Instruction == "" {
		return nil, errx.InvalidInput("instruction is empty")
	}
	if in.Model == "" {
		in.Model = r.model
	}

	st := model.NewPlanState()
	st.SessionID = uuid.NewString()
	st.Instruction = in.Instruction
	st.Model = in.Model
	st.Layout = r.layout
	st.Started = r.now()
	if r.session.Timeout > 0 {
		st.Deadline = st.Started.Add(r.session.Timeout)
	}

	logx.Info().
		Str("session_id", st.SessionID).
		Str("model", st.Model).
		Str("instruction", st.Instruction).
		Msg("Session started")
	r.presenter.Idle(ctx, st.Frame())

	chatOpts := []einomodel.Option{einomodel.WithTemperature(0)}
	if in.Model != "" {
		chatOpts = append(chatOpts, einomodel.WithModel(in.Model))
	}

	_, err := r.runnable.Invoke(nodes.WithPlanState(ctx, st), in,
		compose.WithCallbacks(observers.NewAllCallbacks()),
		compose.WithChatModelOption(chatOpts...),
	)
	if err != nil {
		err = sessionError(ctx, st, err)
		logx.Error().
			Err(err).
			Str("session_id", st.SessionID).
			Str("code", string(errx.CodeOf(err))).
			Int("rounds", st.Rounds).
			Int("actions", len(st.Trace)).
			Msg("Session failed")
		r.presenter.Done(ctx, st.Frame(), err)
		return st.Result(), err
	}

	logx.Info().
		Str("session_id", st.SessionID).
		Int("rounds", st.Rounds).
		Int("actions", len(st.Trace)).
		Float64("position", st.Pose.Position).
		Float64("total_cost_usd", st.TotalCostUSD).
		Dur("elapsed", r.now().Sub(st.Started)).
		Msg("Session complete")
	r.presenter.Done(ctx, st.Frame(), nil)
	return st.Result(), nil
}

// sessionError picks the error reported to the caller: the first failure
// recorded inside the graph, then caller cancellation, then whatever the
// graph runtime returned.
func sessionError(ctx context.Context, st *model.PlanState, err error) error {
	if st.Err != nil {
		return st.Err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errx.Canceled(ctxErr)
	}
	return errx.Internal(err)
}
