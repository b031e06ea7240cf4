package main

import (
	"fmt"

	"github.com/aretw0/casenav/internal/cli"
	"github.com/aretw0/casenav/internal/presentation/tui"
	"github.com/aretw0/casenav/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <session-id>",
	Short: "Navigate a session interactively",
	Long: `Reads one command per line from stdin and prints each screen.

A plain line is a selection (a menu index, a case id or "action N").
Commands: :back :home :search prompt=value... :next :prev :filter text
:details id :quit. An empty line redraws the screen.

With --json, screens are written as JSON Lines and input lines may be
JSON strings or {"command": ..., "arg": ..., "inputs": {...}} objects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStack(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		jsonMode, _ := cmd.Flags().GetBool("json")
		var handler runner.IOHandler
		if jsonMode {
			handler = runner.NewJSONHandler(cmd.InOrStdin(), cmd.OutOrStdout())
		} else {
			style, _ := cmd.Flags().GetString("style")
			renderer, err := tui.NewRenderer(style)
			if err != nil {
				return err
			}
			handler = runner.NewTextHandler(cmd.InOrStdin(), cmd.OutOrStdout(),
				runner.WithTextHandlerRenderer(renderer))
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		r := runner.NewRunner(
			runner.WithInputHandler(handler),
			runner.WithLogger(st.Logger),
			runner.WithAuth(authFlags(cmd)),
		)
		last, err := r.Run(ctx, st.Engine, args[0])
		if ctx.Interrupted(err) {
			err = nil
		}
		if err != nil {
			return err
		}
		if last != nil && !jsonMode {
			fmt.Fprintf(cmd.ErrOrStderr(), "Left session %s at %d selection(s)\n", args[0], len(last.Selections))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("style", "", "Glamour style for screens, e.g. dark, light or notty")
	addAuthFlags(runCmd)
}
