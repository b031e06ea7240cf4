package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [app-id...]",
	Short: "Check app definitions for broken references",
	Long:  `Loads every app in the apps directory (or only the ones named) and reports definition errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStack(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ids := args
		if len(ids) == 0 {
			if ids, err = st.Apps.Apps(cmd.Context()); err != nil {
				return err
			}
		}

		var errs []error
		for _, id := range ids {
			if _, err := st.Apps.Evaluator(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", id, err)
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", id)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d invalid app(s): %w", len(errs), errors.Join(errs...))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
