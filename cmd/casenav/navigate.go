package main

import (
	"github.com/aretw0/casenav/internal/cli"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/spf13/cobra"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate <session-id> [selection...]",
	Short: "Apply a full selection path to a session",
	Long: `Resets the session to its root and applies the selections in order.
With no selections the current screen is redrawn, or the root with --restart.

Entity-list actions are selected as "action N". Remote searches only run
for the query keys passed with --execute.`,
	Example: `  casenav navigate 4f2c 1 "action 1" --execute case_search.m1 --input case_search.m1:name=Ada`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		execute, _ := cmd.Flags().GetStringSlice("execute")
		inputs, _ := cmd.Flags().GetStringArray("input")
		queryData, err := cli.ParseQueryData(execute, inputs)
		if err != nil {
			return err
		}

		st, err := openStack(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		printer, err := newPrinter(cmd)
		if err != nil {
			return err
		}

		req := domain.NavigationRequest{
			SessionID:  args[0],
			Selections: args[1:],
			QueryData:  queryData,
			Auth:       authFlags(cmd),
		}
		req.Offset, _ = cmd.Flags().GetInt("offset")
		req.SearchText, _ = cmd.Flags().GetString("search")
		req.Restart, _ = cmd.Flags().GetBool("restart")

		resp, err := st.Engine.Advance(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printer.Response(resp)
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <session-id> <entity-id> [selection...]",
	Short: "Show the detail view of an entity on the list reached by the selections",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStack(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		printer, err := newPrinter(cmd)
		if err != nil {
			return err
		}

		detail, err := st.Engine.Details(cmd.Context(), domain.DetailRequest{
			SessionID:  args[0],
			EntityID:   args[1],
			Selections: args[2:],
			Auth:       authFlags(cmd),
		})
		if err != nil {
			return err
		}
		return printer.Detail(detail)
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <session-id>",
	Short: "Recompute a session's selections from its recorded history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStack(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		printer, err := newPrinter(cmd)
		if err != nil {
			return err
		}

		resp, err := st.Engine.Rebuild(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printer.Response(resp)
	},
}

func init() {
	rootCmd.AddCommand(navigateCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(rebuildCmd)

	navigateCmd.Flags().StringSlice("execute", nil, "Query keys to run when their search screen is reached")
	navigateCmd.Flags().StringArray("input", nil, "Prompt answer as <query-key>:<prompt>=<value>")
	navigateCmd.Flags().Int("offset", 0, "Entity list offset")
	navigateCmd.Flags().String("search", "", "Filter entity lists by text")
	navigateCmd.Flags().Bool("restart", false, "Return to the root when no selections are given")
	addAuthFlags(navigateCmd)
	addAuthFlags(detailsCmd)
}
