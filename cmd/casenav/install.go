package main

import (
	"fmt"

	"github.com/aretw0/casenav"
	"github.com/aretw0/casenav/internal/presentation/tui"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <app-id>",
	Short: "Start a session on an app",
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

		req := domain.InstallRequest{AppID: args[0], Auth: authFlags(cmd)}
		req.Username, _ = cmd.Flags().GetString("user")
		req.Domain, _ = cmd.Flags().GetString("domain")
		req.Locale, _ = cmd.Flags().GetString("locale")
		req.RestoreAs, _ = cmd.Flags().GetString("restore-as")

		if !printer.JSON {
			tui.PrintBanner(cmd.OutOrStdout(), casenav.Version)
		}
		resp, err := st.Engine.Install(cmd.Context(), req)
		if err != nil {
			return err
		}
		if !printer.JSON {
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s\n", resp.SessionID)
		}
		return printer.Response(resp)
	},
}

func authFlags(cmd *cobra.Command) domain.Auth {
	token, _ := cmd.Flags().GetString("token")
	cookie, _ := cmd.Flags().GetString("session-cookie")
	return domain.Auth{Token: token, SessionCookie: cookie}
}

func addAuthFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "Bearer token forwarded to remote endpoints")
	cmd.Flags().String("session-cookie", "", "Session cookie forwarded to remote endpoints")
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().StringP("user", "u", "", "Username of the mobile worker")
	installCmd.Flags().StringP("domain", "d", "", "Project space the user belongs to")
	installCmd.Flags().String("locale", "", "BCP 47 locale, e.g. en or pt-BR")
	installCmd.Flags().String("restore-as", "", "Navigate with another user's data")
	_ = installCmd.MarkFlagRequired("user")
	_ = installCmd.MarkFlagRequired("domain")
	addAuthFlags(installCmd)
}
