package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/catalogue"
	"github.com/cafebot-sim/server/internal/robot/executor"
	"github.com/cafebot-sim/server/internal/robot/model"
	"github.com/cafebot-sim/server/internal/robot/tracker"
)

var actionsJSON bool

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the primitive actions offered to the planner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalogue.Default()
		if err != nil {
			return errx.Internal(err)
		}
		out := cmd.OutOrStdout()
		if actionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cat.Specs())
		}
		return printActions(out, cat.Specs())
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <action> [arguments-json]",
	Short: "Execute a single action against the stub robot",
	Long: `Validates one action call against the catalogue, runs it on the stub robot
starting from the gate, and prints the execution result and the new pose.`,
	Example: `  cafebot exec move_forward '{"distance": 3}'
  cafebot exec put '{"object_id": "coffee", "location": "Table 8"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalogue.Default()
		if err != nil {
			return errx.Internal(err)
		}

		payload := "{}"
		if len(args) == 2 {
			payload = args[1]
		}
		arguments, err := model.ParseArguments(payload)
		if err != nil {
			return errx.InvalidInput(err.Error())
		}

		action, result, err := executor.New(cat).Perform(model.ActionCall{Name: args[0], Arguments: arguments})
		if err != nil {
			return err
		}
		pose := tracker.Apply(model.InitialPose(), action)

		fmt.Fprintf(cmd.OutOrStdout(), "result: %s\npose:   x=%g facing %s\n", result.JSON(), pose.Position, pose.Orientation)
		return nil
	},
}

func init() {
	actionsCmd.Flags().BoolVar(&actionsJSON, "json", false, "Print the action specs as JSON")
}

func printActions(w io.Writer, specs []model.ActionSpec) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tPARAMETERS\tDESCRIPTION")
	for _, s := range specs {
		params := make([]string, 0, len(s.Params))
		for _, p := range s.Params {
			params = append(params, fmt.Sprintf("%s:%s", p.Name, p.Type))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, strings.Join(params, ", "), s.Description)
	}
	return tw.Flush()
}
