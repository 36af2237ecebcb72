// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dcg-cli/internal/guard"
)

var testJSON bool

// testCmd evaluates a single command and prints the verdict.
var testCmd = &cobra.Command{
	Use:   "test <command>",
	Short: "Evaluate one command and print the verdict",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		command := strings.Join(args, " ")
		verdict := app.Engine.Evaluate(command, guard.Options{IssueCode: true})

		if testJSON || app.Config.UI.Robot {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(verdict)
		}
		printVerdict(cmd, &verdict, command)
		return nil
	},
}

func init() {
	testCmd.Flags().BoolVar(&testJSON, "json", false, "print the verdict as JSON")
}

func printVerdict(cmd *cobra.Command, v *guard.Verdict, command string) {
	out := cmd.OutOrStdout()
	if v.Allowed() {
		fmt.Fprintf(out, "%s %s\n", AllowStyle.Render("✓ allow"), DimStyle.Render("("+string(v.Source)+")"))
		return
	}
	fmt.Fprintf(out, "%s %s\n", DenyStyle.Render("✗ deny"), RuleStyle.Render(v.RuleID))
	fmt.Fprintf(out, "  %s\n", v.Reason)
	if v.Suggestion != "" {
		fmt.Fprintf(out, "  %s\n", DimStyle.Render("try: "+v.Suggestion))
	}
	fmt.Fprintf(out, "  %s\n", DimStyle.Render(fmt.Sprintf("severity %s · confidence %.2f", v.Severity, v.Confidence)))
	if v.AllowOnceCode != "" {
		fmt.Fprintf(out, "  %s\n", DimStyle.Render("allow once: dcg allow-once "+v.AllowOnceCode))
	}
}
