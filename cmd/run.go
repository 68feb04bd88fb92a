package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/catalogue"
	"github.com/cafebot-sim/server/internal/robot/graph"
	"github.com/cafebot-sim/server/internal/robot/graph/nodes"
	"github.com/cafebot-sim/server/internal/robot/model"
	"github.com/cafebot-sim/server/internal/robot/present"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

var (
	runModel     string
	runMaxRounds int
	runTimeout   time.Duration
	runNoPublish bool
	runJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run [instruction]",
	Short: "Plan and execute one instruction",
	Long: `Runs one planning session. The instruction is taken from the arguments,
or read from standard input when none are given.

Each executed action is rendered on the terminal. When REDIS_URL is set,
frames are also published to <prefix>:session:<id>:frames.`,
	Example: `  cafebot run "Bring coffee to table 8"
  echo "Bring tea to table 3" | cafebot run --max-rounds 20`,
	RunE: runInstruction,
}

func init() {
	runCmd.Flags().StringVar(&runModel, "model", "", "Planner model for this session (default PLANNER_MODEL)")
	runCmd.Flags().IntVar(&runMaxRounds, "max-rounds", 0, "Maximum planner rounds (default SESSION_MAX_ROUNDS)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Wall-clock budget for the session (default SESSION_TIMEOUT)")
	runCmd.Flags().BoolVar(&runNoPublish, "no-publish", false, "Do not publish frames to Redis even when REDIS_URL is set")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the session result as JSON instead of a summary")
}

func runInstruction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := *appCfg

	instruction := strings.TrimSpace(strings.Join(args, " "))
	if instruction == "" {
		line, err := readInstruction(cmd.InOrStdin())
		if err != nil {
			return errx.InvalidInput(fmt.Sprintf("read instruction: %v", err))
		}
		instruction = line
	}

	if cmd.Flags().Changed("max-rounds") {
		cfg.Session.MaxRounds = runMaxRounds
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Session.Timeout = runTimeout
	}
	if cfg.Session.MaxRounds < 1 {
		return errx.InvalidInput("--max-rounds must be at least 1")
	}

	chatModel, err := nodes.NewPlannerModel(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Planner: &cfg.Planner,
	})
	if err != nil {
		return err
	}

	cat, err := catalogue.Default()
	if err != nil {
		return errx.Internal(err)
	}

	out := cmd.OutOrStdout()
	var presenters []present.Presenter
	if !runJSON {
		presenters = append(presenters, present.NewConsole(out, present.TerminalWidth(os.Stdout, 80)))
	}
	if cfg.Redis.Enabled() && !runNoPublish {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Warn().Err(errx.WrapRedis(err)).Msg("Redis unavailable; frames will not be published")
		} else {
			defer rdb.Close()
			presenters = append(presenters, present.NewPublisher(rdb, cfg.Redis.ChannelPrefix))
			logx.Debug().Str("prefix", cfg.Redis.ChannelPrefix).Msg("Publishing frames to Redis")
		}
	}

	runner, err := graph.BuildPlanner(ctx, graph.Config{
		Planner:      chatModel,
		Catalogue:    cat,
		Presenter:    present.Multi(presenters...),
		Layout:       cfg.Layout,
		Session:      cfg.Session,
		DefaultModel: cfg.Planner.Model,
	})
	if err != nil {
		return errx.Internal(err)
	}

	res, runErr := runner.Run(ctx, model.SessionInput{Instruction: instruction, Model: runModel})
	if res != nil {
		if runJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				logx.Warn().Err(err).Msg("Failed to encode session result")
			}
		} else {
			printSummary(out, res)
		}
	}
	return runErr
}

func readInstruction(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func printSummary(w io.Writer, res *model.SessionResult) {
	fmt.Fprintf(w, "Session:  %s\n", res.SessionID)
	fmt.Fprintf(w, "Rounds:   %d\n", res.Rounds)
	fmt.Fprintf(w, "Actions:  %d\n", len(res.Trace))
	if res.FinalMessage != "" {
		fmt.Fprintf(w, "Planner:  %s\n", res.FinalMessage)
	}
	if res.TotalCostUSD > 0 {
		fmt.Fprintf(w, "Cost:     $%.6f\n", res.TotalCostUSD)
	}
}
