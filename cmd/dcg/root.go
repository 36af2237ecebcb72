// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for dcg.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"dcg-cli/internal/logging"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	// verbose enables verbose output
	verbose bool
	// robot forces machine output and a silent stderr
	robot bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "dcg",
		Short: "A destructive command guard",
		Long: TitleStyle.Render("dcg") + SubtitleStyle.Render(" - a destructive command guard") + `

dcg classifies shell commands as allow or deny before an AI coding
assistant or a pre-commit hook runs them. Deny verdicts block commands
likely to destroy uncommitted work, remote history, persistent data,
or production state, and come with a stable rule id, a safe
alternative, and a one-shot allow-once code.

` + SubtitleStyle.Render("Examples:") + `
  dcg test 'git reset --hard HEAD~5'   Evaluate one command
  dcg explain 'git push --force'       Evaluate with a full trace
  dcg allow-once k3xzpq                Prime a one-shot exception
  dcg scan --paths .                   Scan committed files
  dcg packs --enabled                  Show the active packs`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&robot, "robot", false, "machine output, silent stderr")

	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(allowOnceCmd)
	rootCmd.AddCommand(allowlistCmd)
	rootCmd.AddCommand(packsCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(scanCmd)
}

func initLogging() {
	if os.Getenv("DCG_ROBOT") != "" {
		robot = true
	}
	if os.Getenv("DCG_VERBOSE") != "" {
		verbose = true
	}
	logging.Setup(verbose, robot)
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return Version + " (commit: " + Commit + ")"
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
