package main

import (
	"fmt"

	"github.com/aretw0/casenav/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <app-id>",
	Short: "Print an app's navigation as a Mermaid flowchart",
	Long: `Prints menus, case lists, searches and claims of an app as Mermaid.
With --session, the steps the session has taken are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStack(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		def, err := st.Apps.Definition(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			s, err := st.Engine.Session(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading session '%s': %w", id, err)
			}
			if s.AppID != def.ID {
				return fmt.Errorf("session '%s' belongs to app %q", id, s.AppID)
			}
			overlay = &graph.Overlay{}
			if s.Context != nil {
				overlay.Steps = s.Context.Frame.Snapshot()
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this session")
}
