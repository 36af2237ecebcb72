// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"dcg-cli/internal/guard"
)

var explainFormat string

// explainCmd evaluates a command with the full trace.
var explainCmd = &cobra.Command{
	Use:   "explain <command>",
	Short: "Evaluate one command with a full pipeline trace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		command := strings.Join(args, " ")
		verdict := app.Engine.Evaluate(command, guard.Options{Explain: true})

		switch explainFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(verdict)
		case "compact":
			printCompactTrace(cmd, &verdict)
			return nil
		default:
			return printPrettyExplain(cmd, &verdict, command)
		}
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainFormat, "format", "pretty", "output format: pretty, json, compact")
}

func printCompactTrace(cmd *cobra.Command, v *guard.Verdict) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s", v.Decision)
	if v.RuleID != "" {
		fmt.Fprintf(out, " %s", v.RuleID)
	}
	fmt.Fprintln(out)
	if v.Trace == nil {
		return
	}
	for _, step := range v.Trace.Steps {
		fmt.Fprintf(out, "%s: %s\n", step.Stage, step.Detail)
	}
}

func printPrettyExplain(cmd *cobra.Command, v *guard.Verdict, command string) error {
	printVerdict(cmd, v, command)
	out := cmd.OutOrStdout()

	if v.Trace != nil {
		fmt.Fprintf(out, "\n%s\n", TitleStyle.Render("trace"))
		fmt.Fprintf(out, "  normalized: %s\n", v.Trace.Normalized)
		if len(v.Trace.CandidatePacks) > 0 {
			fmt.Fprintf(out, "  candidates: %s\n", strings.Join(v.Trace.CandidatePacks, ", "))
		}
		for _, step := range v.Trace.Steps {
			fmt.Fprintf(out, "  %s %s\n", DimStyle.Render(step.Stage+":"), step.Detail)
		}
	}

	// The long-form explanation is markdown; render it properly.
	if v.Explanation != "" {
		rendered, err := glamour.RenderWithEnvironmentConfig(v.Explanation)
		if err != nil {
			fmt.Fprintf(out, "\n%s\n", v.Explanation)
			return nil
		}
		fmt.Fprint(out, rendered)
	}
	return nil
}
