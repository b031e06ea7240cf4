package main

import (
	"fmt"
	"os"

	"github.com/aretw0/casenav/internal/cli"
	"github.com/aretw0/casenav/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casenav",
	Short: "casenav navigates case management applications",
	Long: `casenav replays menu, case list, search and claim selections for
case management applications, either as an HTTP server or from the command line.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("apps", "", "Directory containing app definitions (overrides apps_dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

// loadConfig reads the config file and environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if apps, _ := cmd.Flags().GetString("apps"); apps != "" {
		cfg.AppsDir = apps
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// openStack builds the engine for a command. Logs go to stderr so stdout
// stays machine readable.
func openStack(cmd *cobra.Command) (*cli.Stack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return cli.Build(cfg, logger)
}

func newPrinter(cmd *cobra.Command) (*cli.Printer, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return cli.NewPrinter(cmd.OutOrStdout(), jsonMode, "")
}
