// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dcg-cli/internal/packs"
)

var packsEnabledOnly bool

// packsCmd introspects the registry.
var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List available detection packs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		out := cmd.OutOrStdout()

		enabled := make(map[string]bool)
		for _, id := range app.Engine.EnabledPacks() {
			enabled[id] = true
		}

		ids := app.Engine.EnabledPacks()
		if !packsEnabledOnly {
			// Every registered pack, in canonical tier order.
			ids = app.Registry.ResolveEnabled(app.Registry.AllIDs(), nil)
		}
		for _, id := range ids {
			p, ok := app.Registry.Get(id)
			if !ok {
				continue
			}
			marker := DimStyle.Render("·")
			if enabled[id] {
				marker = AllowStyle.Render("✓")
			}
			fmt.Fprintf(out, "%s %s %s\n", marker, RuleStyle.Render(id), DimStyle.Render(p.Description))
		}
		if !packsEnabledOnly {
			fmt.Fprintf(out, "\n%d enabled\n", len(enabled))
		}
		return nil
	},
}

// packCmd validates external pack files.
var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Work with external pack files",
}

var packValidateCmd = &cobra.Command{
	Use:   "validate <file.yaml>",
	Short: "Validate an external pack file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pack, err := packs.LoadExternalPack(args[0])
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s v%s: %d destructive, %d safe pattern(s)\n",
			AllowStyle.Render("✓ valid"), pack.ID, pack.Version,
			len(pack.DestructivePatterns), len(pack.SafePatterns))
		return nil
	},
}

func init() {
	packsCmd.Flags().BoolVar(&packsEnabledOnly, "enabled", false, "list only the enabled packs, in evaluation order")
	packCmd.AddCommand(packValidateCmd)
}
