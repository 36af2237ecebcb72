// SPDX-License-Identifier: MPL-2.0

package allowlist

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAllowlist(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "allowlist.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEntryValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		ok    bool
	}{
		{"rule", Entry{Rule: "core.git:reset-hard"}, true},
		{"exact", Entry{ExactCommand: "git reset --hard HEAD~1"}, true},
		{"prefix with context", Entry{CommandPrefix: "terraform destroy", Context: "sandbox"}, true},
		{"prefix without context", Entry{CommandPrefix: "terraform destroy"}, false},
		{"pattern acknowledged", Entry{Pattern: `^git push --force`, RiskAcknowledged: true}, true},
		{"pattern unacknowledged", Entry{Pattern: `^git push --force`}, false},
		{"no selector", Entry{Reason: "why"}, false},
		{"two selectors", Entry{Rule: "a.b:c", ExactCommand: "x"}, false},
		{"malformed rule", Entry{Rule: "not-a-rule-id"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadDropsInvalidAndExpired(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, `
[[allow]]
rule = "core.git:reset-hard"
reason = "CI needs this"

[[allow]]
command_prefix = "no context here"

[[allow]]
rule = "core.git:stash-clear"
expires_at = 2020-01-01T00:00:00Z
`)
	entries, err := loadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Rule != "core.git:reset-hard" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestMatchRulePrecedence(t *testing.T) {
	projectDir := t.TempDir()
	userDir := t.TempDir()
	project := writeAllowlist(t, projectDir, `
[[allow]]
rule = "core.git:reset-hard"
reason = "project"
`)
	user := writeAllowlist(t, userDir, `
[[allow]]
rule = "core.git:reset-hard"
reason = "user"
`)
	l, errs := LoadFiles(projectDir, map[Layer]string{
		LayerProject: project,
		LayerUser:    user,
	})
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	hit := l.MatchRule("core.git", "reset-hard")
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if hit.Layer != LayerProject || hit.Entry.Reason != "project" {
		t.Errorf("project layer must win: %+v", hit)
	}
}

func TestMatchRuleBypassesOnlyThatRule(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, `
[[allow]]
rule = "core.git:reset-hard"
`)
	l, _ := LoadFiles(dir, map[Layer]string{LayerProject: path})
	if l.MatchRule("core.git", "stash-clear") != nil {
		t.Error("a rule entry must not bypass other rules in the pack")
	}
	if l.MatchRule("core.git", "reset-hard") == nil {
		t.Error("the named rule must match")
	}
}

func TestMatchCommandShapes(t *testing.T) {
	dir := t.TempDir()
	path := writeAllowlist(t, dir, `
[[allow]]
exact_command = "git reset --hard HEAD~1"

[[allow]]
command_prefix = "terraform destroy -target="
context = "sandbox"

[[allow]]
pattern = '^docker volume rm scratch-'
risk_acknowledged = true
`)
	l, errs := LoadFiles(dir, map[Layer]string{LayerProject: path})
	if len(errs) > 0 {
		t.Fatal(errs)
	}

	if l.MatchCommand("git reset --hard HEAD~1") == nil {
		t.Error("exact command should match")
	}
	if l.MatchCommand("git reset --hard HEAD~2") != nil {
		t.Error("exact command must not match a different command")
	}
	if l.MatchCommand("terraform destroy -target=module.scratch") == nil {
		t.Error("prefix should match")
	}
	if l.MatchCommand("docker volume rm scratch-1") == nil {
		t.Error("pattern should match")
	}
	if l.MatchCommand("docker volume rm data") != nil {
		t.Error("pattern must not overmatch")
	}
}

func TestContextPathScoping(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "svc")
	if err := os.MkdirAll(inside, 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeAllowlist(t, dir, `
[[allow]]
command_prefix = "terraform destroy"
context = "`+dir+`"
`)
	l, _ := LoadFiles(inside, map[Layer]string{LayerProject: path})
	if l.MatchCommand("terraform destroy") == nil {
		t.Error("cwd inside the context subtree should match")
	}

	outside, _ := LoadFiles(t.TempDir(), map[Layer]string{LayerProject: path})
	if outside.MatchCommand("terraform destroy") != nil {
		t.Error("cwd outside the context subtree must not match")
	}
}

func TestExpiresAtFuture(t *testing.T) {
	dir := t.TempDir()
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	path := writeAllowlist(t, dir, `
[[allow]]
rule = "core.git:reset-hard"
expires_at = `+future+`
`)
	entries, err := loadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("future expiry must be kept: %+v", entries)
	}
}
