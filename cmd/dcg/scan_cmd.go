// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"dcg-cli/internal/issue"
	"dcg-cli/internal/scan"
)

var (
	scanPaths    []string
	scanStaged   bool
	scanGitDiff  string
	scanFormat   string
	scanFailOn   string
	scanRedact   string
	scanTruncate int
	scanWorkers  int
)

// scanCmd applies the evaluator to commands embedded in files.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan files for destructive commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}

		paths := scanPaths
		switch {
		case scanStaged:
			paths, err = gitFileList(app.Root, "diff", "--cached", "--name-only", "--diff-filter=ACM")
		case scanGitDiff != "":
			paths, err = gitFileList(app.Root, "diff", "--name-only", "--diff-filter=ACM", scanGitDiff)
		}
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		if len(paths) == 0 {
			paths = []string{"."}
		}

		cfg := app.Config.Scan
		if scanFormat != "" {
			cfg.Format = scanFormat
		}
		if scanFailOn != "" {
			cfg.FailOn = scanFailOn
		}
		if scanRedact != "" {
			cfg.Redact = scanRedact
		}
		if cmd.Flags().Changed("truncate") {
			cfg.Truncate = scanTruncate
		}

		scanner := scan.New(app.Engine, afero.NewOsFs(), scan.Options{
			Paths:       paths,
			Include:     cfg.Paths.Include,
			Exclude:     cfg.Paths.Exclude,
			MaxFileSize: cfg.MaxFileSize,
			MaxFindings: cfg.MaxFindings,
			Workers:     scanWorkers,
		})
		res, err := scanner.Run()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}

		if err := scan.Render(cmd.OutOrStdout(), res, scan.ReportOptions{
			Format:   cfg.Format,
			Redact:   cfg.Redact,
			Truncate: cfg.Truncate,
			NoColor:  app.Config.UI.Robot || app.Config.UI.Color == "never",
		}); err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		if code := scan.ExitCode(res, cfg.FailOn); code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	},
}

// preCommitHook is the script installed into .git/hooks/pre-commit.
const preCommitHook = `#!/bin/sh
# Installed by 'dcg scan install-pre-commit'.
exec dcg scan --staged
`

var scanInstallCmd = &cobra.Command{
	Use:   "install-pre-commit",
	Short: "Install dcg scan as a git pre-commit hook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		if app.Root == "" {
			return &ExitError{Code: 2, Err: issue.New(issue.CodeConfigMissing, issue.CategoryConfig, "install pre-commit hook").
				WithSuggestion("Run inside a repository (a directory with .git)")}
		}
		hookPath := filepath.Join(app.Root, ".git", "hooks", "pre-commit")
		if _, err := os.Stat(hookPath); err == nil {
			return &ExitError{Code: 2, Err: issue.New(issue.CodeIOFailure, issue.CategoryRuntime, "install pre-commit hook").
				WithResource(hookPath).
				WithSuggestion("A pre-commit hook already exists; remove it or chain dcg manually")}
		}
		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		if err := os.WriteFile(hookPath, []byte(preCommitHook), 0o755); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		if err := writeHooksConfig(app.Root); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", hookPath)
		return nil
	},
}

var scanUninstallCmd = &cobra.Command{
	Use:   "uninstall-pre-commit",
	Short: "Remove the dcg pre-commit hook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		hookPath := filepath.Join(app.Root, ".git", "hooks", "pre-commit")
		content, err := os.ReadFile(hookPath)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no pre-commit hook installed")
			return nil
		}
		if !strings.Contains(string(content), "dcg scan") {
			return &ExitError{Code: 2, Err: issue.New(issue.CodeIOFailure, issue.CategoryRuntime, "uninstall pre-commit hook").
				WithResource(hookPath).
				WithSuggestion("The existing hook was not installed by dcg; not touching it")}
		}
		if err := os.Remove(hookPath); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", hookPath)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanPaths, "paths", nil, "files or directories to scan")
	scanCmd.Flags().BoolVar(&scanStaged, "staged", false, "scan git staged files")
	scanCmd.Flags().StringVar(&scanGitDiff, "git-diff", "", "scan files changed in the given range")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "output format: pretty, json, markdown, sarif")
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "", "exit non-zero threshold: error, warning, none")
	scanCmd.Flags().StringVar(&scanRedact, "redact", "", "redaction level: none, quoted, aggressive")
	scanCmd.Flags().IntVar(&scanTruncate, "truncate", 0, "truncate reported commands to N characters")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 1, "extraction parallelism")

	scanCmd.AddCommand(scanInstallCmd)
	scanCmd.AddCommand(scanUninstallCmd)
}

// writeHooksConfig records the scan hook settings in .dcg/hooks.toml.
func writeHooksConfig(root string) error {
	path := filepath.Join(root, ".dcg", "hooks.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(map[string]any{
		"pre_commit": map[string]any{
			"enabled": true,
			"fail_on": "error",
		},
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func gitFileList(root string, args ...string) ([]string, error) {
	cmd := exec.Command("git", args...)
	if root != "" {
		cmd.Dir = root
	}
	out, err := cmd.Output()
	if err != nil {
		return nil, issue.New(issue.CodeIOFailure, issue.CategoryRuntime, "list files via git").Wrap(err)
	}
	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}
