// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var allowOncePrune bool

// allowOnceCmd primes a one-shot exception. Redemption does not consume
// the code; the next evaluation of the exact command in the same scope
// consumes it atomically.
var allowOnceCmd = &cobra.Command{
	Use:   "allow-once [code]",
	Short: "Prime a one-shot exception issued by a deny",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}

		if allowOncePrune {
			if err := app.Ledger.Compact(time.Now()); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ledger compacted")
			return nil
		}

		if len(args) == 0 {
			return listActive(cmd, app)
		}

		code := args[0]
		if err := app.Ledger.Prime(code, app.Cwd, time.Now()); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
			AllowStyle.Render("✓ primed"),
			DimStyle.Render("the next evaluation of the blocked command in this scope will be allowed once"))
		return nil
	},
}

func init() {
	allowOnceCmd.Flags().BoolVar(&allowOncePrune, "prune", false, "compact the ledger, dropping consumed and expired entries")
}

func listActive(cmd *cobra.Command, app *app) error {
	entries, err := app.Ledger.Active(time.Now())
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "no active allow-once entries")
		return nil
	}
	for _, e := range entries {
		state := "issued"
		if e.Primed {
			state = "primed"
		}
		fmt.Fprintf(out, "%s  %s  expires %s  scope %s\n",
			e.Code, state, e.ExpiresAt.Format(time.RFC3339), e.ScopePath)
	}
	return nil
}
