// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Packs.Enabled) != 1 || cfg.Packs.Enabled[0] != "core" {
		t.Errorf("expected default enabled packs [core], got %v", cfg.Packs.Enabled)
	}
	if !cfg.Heredoc.Enabled {
		t.Error("expected heredoc scanning enabled by default")
	}
	if cfg.Heredoc.TimeoutMs != 50 {
		t.Errorf("expected heredoc timeout 50ms, got %d", cfg.Heredoc.TimeoutMs)
	}
	if cfg.Heredoc.MaxBodyBytes != 1<<20 {
		t.Errorf("expected 1 MiB body cap, got %d", cfg.Heredoc.MaxBodyBytes)
	}
	if cfg.Heredoc.MaxHeredocs != 10 {
		t.Errorf("expected 10 heredocs cap, got %d", cfg.Heredoc.MaxHeredocs)
	}
	if cfg.Scan.FailOn != "error" {
		t.Errorf("expected fail_on error, got %s", cfg.Scan.FailOn)
	}
	if cfg.Scan.Format != "pretty" {
		t.Errorf("expected pretty format, got %s", cfg.Scan.Format)
	}
	if cfg.UI.Color != "auto" {
		t.Errorf("expected auto color, got %s", cfg.UI.Color)
	}
	if cfg.Bypass {
		t.Error("bypass must default to off")
	}
}

func TestProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := ProjectRoot(deep); got != root {
		t.Errorf("ProjectRoot = %q, want %q", got, root)
	}
	if got := ProjectRoot(t.TempDir()); got != "" {
		t.Errorf("ProjectRoot outside a project = %q, want empty", got)
	}
}

func TestLoadProjectFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	project := `
[packs]
enabled = ["core", "database"]
disabled = ["database.mysql"]

[heredoc]
max_heredocs = 5

[scan]
fail_on = "warning"
`
	if err := os.WriteFile(filepath.Join(root, ProjectFileName), []byte(project), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Packs.Enabled) != 2 {
		t.Errorf("enabled = %v", cfg.Packs.Enabled)
	}
	if len(cfg.Packs.Disabled) != 1 || cfg.Packs.Disabled[0] != "database.mysql" {
		t.Errorf("disabled = %v", cfg.Packs.Disabled)
	}
	if cfg.Heredoc.MaxHeredocs != 5 {
		t.Errorf("max_heredocs = %d", cfg.Heredoc.MaxHeredocs)
	}
	// Unset keys keep their defaults.
	if cfg.Heredoc.TimeoutMs != 50 {
		t.Errorf("timeout_ms = %d", cfg.Heredoc.TimeoutMs)
	}
	if cfg.Scan.FailOn != "warning" {
		t.Errorf("fail_on = %s", cfg.Scan.FailOn)
	}
}

func TestLoadMalformedProjectFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ProjectFileName), []byte("not = [valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("malformed config must be a configuration error")
	}
}

func TestEnvListOverrides(t *testing.T) {
	t.Setenv("DCG_PACKS", "core, database.postgresql")
	t.Setenv("DCG_DISABLE", "strict_git")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Packs.Enabled) != 2 || cfg.Packs.Enabled[1] != "database.postgresql" {
		t.Errorf("enabled = %v", cfg.Packs.Enabled)
	}
	if len(cfg.Packs.Disabled) != 1 || cfg.Packs.Disabled[0] != "strict_git" {
		t.Errorf("disabled = %v", cfg.Packs.Disabled)
	}
}

func TestExplicitConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[scan]\nfail_on = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.FailOn != "none" {
		t.Errorf("fail_on = %s", cfg.Scan.FailOn)
	}

	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.toml"))
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("a missing explicitly-named config must error")
	}
}
