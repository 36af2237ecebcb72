// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dcg-cli/internal/guard"
	"dcg-cli/internal/hookio"
)

// hookCmd is the PreToolUse entry point: read one JSON request from
// stdin, decide, write the result, exit. Allow writes no bytes. Any
// internal failure fails open - the hook must never block work it
// cannot judge, and must never hang.
var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Evaluate a PreToolUse hook request from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, err := hookio.ReadInput(cmd.InOrStdin())
		if err != nil {
			log.Error("malformed hook input", "err", err)
			return &ExitError{Code: 1, Err: err}
		}
		if !in.Evaluated() {
			return nil // not a Bash call: silent allow
		}

		// The bypass switch short-circuits the hook protocol only.
		if os.Getenv("DCG_BYPASS") != "" {
			return nil
		}

		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		if app.Config.Bypass {
			return nil
		}

		verdict := evaluateFailOpen(app, in.ToolInput.Command)
		if verdict.Allowed() {
			return nil
		}
		if err := hookio.WriteDeny(cmd.OutOrStdout(), &verdict); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		if !app.Config.UI.Robot {
			hookio.RenderDenial(cmd.ErrOrStderr(), &verdict, in.ToolInput.Command)
		}
		return nil
	},
}

// evaluateFailOpen guards the hot path: a panic anywhere inside
// evaluation is logged and converted into an allow.
func evaluateFailOpen(app *app, command string) (verdict guard.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("evaluation panic; failing open", "panic", r)
			verdict = guard.Verdict{Decision: guard.Allow, Source: guard.SourceDefault, Confidence: 1}
		}
	}()
	return app.Engine.Evaluate(command, guard.Options{IssueCode: true})
}
