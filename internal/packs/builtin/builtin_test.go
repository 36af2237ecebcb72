// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"testing"

	"dcg-cli/internal/packs"
)

func TestAllBuiltinPatternsCompile(t *testing.T) {
	r := NewRegistry()
	for _, id := range r.AllIDs() {
		p, _ := r.Get(id)
		for i := range p.SafePatterns {
			sp := &p.SafePatterns[i]
			if !sp.Regex().Usable() {
				t.Errorf("%s:%s does not compile: %v", id, sp.Name, sp.Regex().CompileErr())
			}
		}
		for i := range p.DestructivePatterns {
			dp := &p.DestructivePatterns[i]
			if !dp.Regex().Usable() {
				t.Errorf("%s:%s does not compile: %v", id, dp.Name, dp.Regex().CompileErr())
			}
			if !dp.Severity.Valid() {
				t.Errorf("%s:%s has invalid severity %q", id, dp.Name, dp.Severity)
			}
			if dp.Reason == "" {
				t.Errorf("%s:%s has no reason", id, dp.Name)
			}
		}
	}
}

func TestBuiltinIDsAreReserved(t *testing.T) {
	r := NewRegistry()
	for _, id := range r.AllIDs() {
		if !packs.ReservedNamespace(id) {
			t.Errorf("built-in pack %s is not in a reserved namespace", id)
		}
	}
}

func TestPatternNamesUniqueWithinPack(t *testing.T) {
	r := NewRegistry()
	for _, id := range r.AllIDs() {
		p, _ := r.Get(id)
		seen := make(map[string]bool)
		for _, sp := range p.SafePatterns {
			if seen[sp.Name] {
				t.Errorf("%s: duplicate pattern name %q", id, sp.Name)
			}
			seen[sp.Name] = true
		}
		for _, dp := range p.DestructivePatterns {
			if seen[dp.Name] {
				t.Errorf("%s: duplicate pattern name %q", id, dp.Name)
			}
			seen[dp.Name] = true
		}
	}
}

func findDestructive(t *testing.T, packID, name string) *packs.DestructivePattern {
	t.Helper()
	r := NewRegistry()
	p, ok := r.Get(packID)
	if !ok {
		t.Fatalf("pack %s not registered", packID)
	}
	for i := range p.DestructivePatterns {
		if p.DestructivePatterns[i].Name == name {
			return &p.DestructivePatterns[i]
		}
	}
	t.Fatalf("pattern %s:%s not found", packID, name)
	return nil
}

func TestGitPatternBehaviour(t *testing.T) {
	tests := []struct {
		pattern string
		cmd     string
		match   bool
	}{
		{"reset-hard", "git reset --hard HEAD~5", true},
		{"reset-hard", "git reset --soft HEAD~1", false},
		{"push-force", "git push --force origin main", true},
		{"push-force", "git push --force-with-lease origin main", false},
		{"push-force", "git push origin main", false},
		{"stash-clear", "git stash clear", true},
		{"clean-force", "git clean -fd", true},
		{"branch-delete-force", "git branch -D feature", true},
		{"checkout-discard", "git checkout -- .", true},
	}
	for _, tt := range tests {
		dp := findDestructive(t, "core.git", tt.pattern)
		if got := dp.Regex().Match(tt.cmd); got != tt.match {
			t.Errorf("%s on %q = %v, want %v", tt.pattern, tt.cmd, got, tt.match)
		}
	}
}

func TestGitSafePatterns(t *testing.T) {
	r := NewRegistry()
	p, _ := r.Get("core.git")
	safeCmds := []string{
		"git checkout -b feature/x",
		"git clean -n",
		"git clean --dry-run",
	}
	for _, cmd := range safeCmds {
		matched := false
		for i := range p.SafePatterns {
			if p.SafePatterns[i].Regex().Match(cmd) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("no safe pattern matches %q", cmd)
		}
	}
}

func TestFilesystemPatternBehaviour(t *testing.T) {
	tests := []struct {
		pattern string
		cmd     string
		match   bool
	}{
		{"rm-recursive-force", "rm -rf /tmp/build", true},
		{"rm-recursive-force", "rm -fr node_modules", true},
		{"rm-recursive-force", "rm file.txt", false},
		{"rm-rf-root", "rm -rf /", true},
		{"rm-rf-root", "rm -rf /tmp", false},
		{"find-delete", "find . -name '*.log' -delete", true},
		{"dd-to-device", "dd if=/dev/zero of=/dev/sda", true},
		{"dd-to-device", "dd if=/dev/zero of=image.img", false},
	}
	for _, tt := range tests {
		dp := findDestructive(t, "core.filesystem", tt.pattern)
		if got := dp.Regex().Match(tt.cmd); got != tt.match {
			t.Errorf("%s on %q = %v, want %v", tt.pattern, tt.cmd, got, tt.match)
		}
	}
}
