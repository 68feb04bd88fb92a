package cmd

import (
	"context"

	"github.com/spf13/cobra"

	errx "github.com/cafebot-sim/server/internal/core/error"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

// appCfg is loaded once per invocation before any subcommand runs.
var appCfg *AppConfig

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cafebot",
	Short: "Plan and simulate cafe robot errands with an LLM planner",
	Long: `cafebot turns a free-text instruction such as "bring coffee to table 8"
into a sequence of primitive robot actions. A function-calling LLM proposes
one action at a time, the stub robot executes it, and the result is fed back
until the planner stops calling actions.

The cafe is a straight track: the gate at x=0, tables 1..10 at x=1..10 and
the counter at x=11.

Available commands:
  run      - plan and execute one instruction
  actions  - list the primitive actions offered to the planner
  exec     - execute a single action against the stub robot`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return errx.InvalidInput(err.Error())
		}
		logx.Init(logx.LoggerOpts{
			Environment: cfg.Environment,
			Config:      cfg.Log,
			Console:     cmd.ErrOrStderr(),
		})
		appCfg = cfg
		logx.Debug().Str("environment", cfg.Environment.String()).Msg("Configuration loaded")
		return nil
	},
}

// Execute adds all child commands to the root command and runs it with ctx.
// This is called by main.main().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errx.InvalidInput(err.Error())
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(execCmd)
}
