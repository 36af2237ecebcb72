// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"dcg-cli/internal/allowlist"
	"dcg-cli/internal/issue"
	"dcg-cli/internal/packs"
)

var (
	allowlistProject bool
	allowlistUser    bool
	allowlistSystem  bool
	allowlistReason  string
	allowlistExpires time.Duration
)

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Manage the layered allowlist",
}

var allowlistAddCmd = &cobra.Command{
	Use:   "add <pack.id:pattern_name>",
	Short: "Allowlist a specific rule (the narrowest bypass)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule := args[0]
		if _, _, ok := packs.SplitRuleID(rule); !ok {
			return &ExitError{Code: 2, Err: issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "add allowlist rule").
				WithResource(rule).
				WithSuggestion("Use the rule id from the deny output, e.g. core.git:reset-hard")}
		}
		return appendEntry(cmd, allowlist.Entry{Rule: rule, Reason: allowlistReason})
	},
}

var allowlistAddCommandCmd = &cobra.Command{
	Use:   "add-command <command>",
	Short: "Allowlist one exact command (post-normalization match)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appendEntry(cmd, allowlist.Entry{ExactCommand: args[0], Reason: allowlistReason})
	},
}

var allowlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allowlist entries across all layers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		out := cmd.OutOrStdout()
		for _, layer := range []allowlist.Layer{allowlist.LayerProject, allowlist.LayerUser, allowlist.LayerSystem} {
			path := allowlist.Paths(layer, app.Root)
			entries, err := readLayerFile(path)
			if err != nil || len(entries) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s %s\n", TitleStyle.Render(string(layer)), DimStyle.Render(path))
			for _, e := range entries {
				fmt.Fprintf(out, "  %s\n", describeEntry(e))
			}
		}
		return nil
	},
}

var allowlistRemoveCmd = &cobra.Command{
	Use:   "remove <pack.id:pattern_name|exact-command>",
	Short: "Remove entries matching the given selector from a layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := layerFilePath()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		entries, err := readLayerFile(path)
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		kept := entries[:0]
		removed := 0
		for _, e := range entries {
			if e.Rule == args[0] || e.ExactCommand == args[0] {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if removed == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no matching entries")
			return nil
		}
		if err := writeLayerFile(path, kept); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d entr%s\n", removed, plural(removed, "y", "ies"))
		return nil
	},
}

var allowlistValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the allowlist files of every layer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		out := cmd.OutOrStdout()
		bad := 0
		for _, layer := range []allowlist.Layer{allowlist.LayerProject, allowlist.LayerUser, allowlist.LayerSystem} {
			path := allowlist.Paths(layer, app.Root)
			if path == "" {
				continue
			}
			entries, err := readLayerFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				fmt.Fprintf(out, "%s: %v\n", path, err)
				bad++
				continue
			}
			for i := range entries {
				if err := entries[i].Validate(); err != nil {
					fmt.Fprintf(out, "%s: entry %d: %v\n", path, i+1, err)
					bad++
				}
			}
		}
		if bad > 0 {
			return &ExitError{Code: 2, Err: fmt.Errorf("%d invalid allowlist entr%s", bad, plural(bad, "y", "ies"))}
		}
		fmt.Fprintln(out, "all allowlist entries are valid")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{allowlistAddCmd, allowlistAddCommandCmd, allowlistRemoveCmd} {
		c.Flags().BoolVar(&allowlistProject, "project", false, "use the project layer (.dcg/allowlist.toml)")
		c.Flags().BoolVar(&allowlistUser, "user", false, "use the user layer (default)")
		c.Flags().BoolVar(&allowlistSystem, "system", false, "use the system layer (/etc/dcg)")
	}
	allowlistAddCmd.Flags().StringVar(&allowlistReason, "reason", "", "why this exception exists")
	allowlistAddCmd.Flags().DurationVar(&allowlistExpires, "expires", 0, "drop the entry after this duration")
	allowlistAddCommandCmd.Flags().StringVar(&allowlistReason, "reason", "", "why this exception exists")

	allowlistCmd.AddCommand(allowlistAddCmd)
	allowlistCmd.AddCommand(allowlistAddCommandCmd)
	allowlistCmd.AddCommand(allowlistListCmd)
	allowlistCmd.AddCommand(allowlistRemoveCmd)
	allowlistCmd.AddCommand(allowlistValidateCmd)
}

func layerFilePath() (string, error) {
	app, err := newApp()
	if err != nil {
		return "", err
	}
	switch {
	case allowlistProject:
		if app.Root == "" {
			return "", issue.New(issue.CodeConfigMissing, issue.CategoryConfig, "resolve project allowlist").
				WithSuggestion("Run inside a repository (a directory with .git)")
		}
		return allowlist.Paths(allowlist.LayerProject, app.Root), nil
	case allowlistSystem:
		return allowlist.Paths(allowlist.LayerSystem, ""), nil
	default:
		return allowlist.Paths(allowlist.LayerUser, ""), nil
	}
}

func appendEntry(cmd *cobra.Command, entry allowlist.Entry) error {
	now := time.Now()
	entry.AddedAt = &now
	entry.AddedBy = os.Getenv("USER")
	if allowlistExpires > 0 {
		exp := now.Add(allowlistExpires)
		entry.ExpiresAt = &exp
	}
	if err := entry.Validate(); err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	path, err := layerFilePath()
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	entries, err := readLayerFile(path)
	if err != nil && !os.IsNotExist(err) {
		return &ExitError{Code: 2, Err: err}
	}
	entries = append(entries, entry)
	if err := writeLayerFile(path, entries); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added to %s\n", path)
	return nil
}

func readLayerFile(path string) ([]allowlist.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file allowlist.File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "parse allowlist").
			WithResource(path).Wrap(err)
	}
	return file.Entries, nil
}

func writeLayerFile(path string, entries []allowlist.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(allowlist.File{Entries: entries})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func describeEntry(e allowlist.Entry) string {
	var desc string
	switch {
	case e.Rule != "":
		desc = "rule " + RuleStyle.Render(e.Rule)
	case e.ExactCommand != "":
		desc = "exact " + e.ExactCommand
	case e.CommandPrefix != "":
		desc = "prefix " + e.CommandPrefix + " (context " + e.Context + ")"
	default:
		desc = "pattern " + e.Pattern
	}
	if e.Reason != "" {
		desc += DimStyle.Render(" — " + e.Reason)
	}
	return desc
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
