// Autobuilder designs automations from plain-language tasks and manages
// the cloud automations that run them.
//
// It talks to the automation builder backend over HTTP: a four-step
// wizard turns a task description into a workflow design and a runnable
// Python script, and the cloud commands create, pause and delete
// automations the backend checks on a schedule.
//
// Usage:
//
//	autobuilder [command] [flags]
//
// Running without arguments opens the interactive home screen.
// See 'autobuilder --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/version"
	"github.com/agenticauto/autobuilder/internal/wizard/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if api.IsNetworkError(err) || api.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "\n%s\n", api.GetTroubleshootingHint(err))
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autobuilder",
	Short: "Automation builder",
	Long: `Design automations from a plain-language description and run them
yourself or in the cloud.

Download mode generates a Python script (automation.py) that you run on
your own machine. Cloud mode registers a website monitor that the backend
checks on a schedule and notifies you through Discord or email.

If no command is specified, the interactive home screen opens.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tui.ScreenHome)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autobuilder %s (commit: %s)\n", version.Version, version.Commit)
	},
}
