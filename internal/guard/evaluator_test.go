// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dcg-cli/internal/allowlist"
	"dcg-cli/internal/ledger"
	"dcg-cli/internal/packs/builtin"
)

type engineOption func(*Config)

func withLedger(t *testing.T) engineOption {
	t.Helper()
	return func(cfg *Config) {
		cfg.Ledger = ledger.Open(filepath.Join(t.TempDir(), "allow_once.jsonl"))
	}
}

func withAllowlist(t *testing.T, toml string) engineOption {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	return func(cfg *Config) {
		l, errs := allowlist.LoadFiles(cfg.Cwd, map[allowlist.Layer]string{allowlist.LayerProject: path})
		if len(errs) > 0 {
			t.Fatal(errs)
		}
		cfg.Allowlist = l
	}
}

func testEngine(t *testing.T, enabled []string, opts ...engineOption) *Engine {
	t.Helper()
	cfg := Config{
		Registry:       builtin.NewRegistry(),
		Enabled:        enabled,
		HeredocEnabled: true,
		Budget:         time.Second,
		Cwd:            t.TempDir(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func TestDestructiveGitReset(t *testing.T) {
	e := testEngine(t, nil, withLedger(t))
	v := e.Evaluate("git reset --hard HEAD~5", Options{IssueCode: true})
	if !v.Denied() {
		t.Fatalf("verdict = %+v", v)
	}
	if v.RuleID != "core.git:reset-hard" {
		t.Errorf("rule id = %q", v.RuleID)
	}
	if v.Severity != "critical" {
		t.Errorf("severity = %q", v.Severity)
	}
	if v.AllowOnceCode == "" {
		t.Error("deny must carry an allow-once code")
	}
	if v.Confidence <= 0 || v.Confidence > 1 {
		t.Errorf("confidence = %v", v.Confidence)
	}
}

func TestSafeBranchCreation(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("git checkout -b feature/x", Options{})
	if !v.Allowed() {
		t.Fatalf("verdict = %+v", v)
	}
	if v.Source != SourceSafePattern {
		t.Errorf("source = %q, want safe_pattern", v.Source)
	}
}

func TestCommitMessageImmunity(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate(`git commit -m "Fix git reset --hard detection"`, Options{})
	if !v.Allowed() {
		t.Fatalf("dangerous text in a commit message was blocked: %+v", v)
	}
}

func TestEchoImmunity(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("echo git reset --hard", Options{})
	if !v.Allowed() {
		t.Fatalf("echo arguments were evaluated: %+v", v)
	}
}

func TestQuickRejectRunsNoPatterns(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("ls -la", Options{})
	if !v.Allowed() || v.Source != SourceQuickReject {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestHeredocPythonDeny(t *testing.T) {
	e := testEngine(t, nil)
	cmd := "python3 << 'EOF'\nimport shutil\nshutil.rmtree(\"/var/data\")\nEOF"
	v := e.Evaluate(cmd, Options{})
	if !v.Denied() {
		t.Fatalf("verdict = %+v", v)
	}
	if v.RuleID != "heredoc.python.shutil_rmtree" {
		t.Errorf("rule id = %q", v.RuleID)
	}
	if v.Severity != "high" {
		t.Errorf("severity = %q", v.Severity)
	}
}

func TestHeredocShellBodyRoutedThroughEvaluator(t *testing.T) {
	e := testEngine(t, nil)
	cmd := "bash << 'EOF'\ngit reset --hard HEAD~1\nEOF"
	v := e.Evaluate(cmd, Options{})
	if !v.Denied() {
		t.Fatalf("verdict = %+v", v)
	}
	if v.RuleID != "core.git:reset-hard" {
		t.Errorf("rule id = %q", v.RuleID)
	}
}

func TestHeredocToCatIsData(t *testing.T) {
	e := testEngine(t, nil)
	cmd := "cat << 'EOF'\nrm -rf /\ngit reset --hard\nEOF"
	v := e.Evaluate(cmd, Options{})
	if !v.Allowed() {
		t.Fatalf("documentation heredoc was blocked: %+v", v)
	}
}

func TestInlineBashDeny(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("bash -c 'rm -rf /tmp/scratch'", Options{})
	if !v.Denied() {
		t.Fatalf("verdict = %+v", v)
	}
	if v.PackID != "core.filesystem" {
		t.Errorf("pack id = %q", v.PackID)
	}
}

func TestAllowOnceRoundTrip(t *testing.T) {
	led := ledger.Open(filepath.Join(t.TempDir(), "allow_once.jsonl"))
	cwd := t.TempDir()
	e := New(Config{
		Registry:       builtin.NewRegistry(),
		HeredocEnabled: true,
		Budget:         time.Second,
		Cwd:            cwd,
		Ledger:         led,
	})
	cmd := "git reset --hard HEAD~5"

	// (a) deny issues a code.
	v := e.Evaluate(cmd, Options{IssueCode: true})
	if !v.Denied() || v.AllowOnceCode == "" {
		t.Fatalf("verdict = %+v", v)
	}

	// (b) redeem primes without consuming.
	if err := led.Prime(v.AllowOnceCode, cwd, time.Now()); err != nil {
		t.Fatal(err)
	}

	// (c) the next evaluation of the exact command is allowed once.
	v2 := e.Evaluate(cmd, Options{IssueCode: true})
	if !v2.Allowed() || v2.Source != SourceAllowOnce {
		t.Fatalf("after prime: %+v", v2)
	}

	// (d) evaluating again denies with a fresh code.
	v3 := e.Evaluate(cmd, Options{IssueCode: true})
	if !v3.Denied() {
		t.Fatalf("after consume: %+v", v3)
	}
	if v3.AllowOnceCode == "" || v3.AllowOnceCode == v.AllowOnceCode {
		t.Errorf("expected a fresh code, got %q then %q", v.AllowOnceCode, v3.AllowOnceCode)
	}
}

func TestAllowlistRuleBypass(t *testing.T) {
	e := testEngine(t, nil, withAllowlist(t, `
[[allow]]
rule = "core.git:reset-hard"
reason = "trusted workflow"
`))
	v := e.Evaluate("git reset --hard HEAD~5", Options{})
	if !v.Allowed() {
		t.Fatalf("allowlisted rule still denies: %+v", v)
	}
	if v.Source != SourceAllowlist {
		t.Errorf("source = %q", v.Source)
	}

	// Only the matched rule is bypassed, never the whole pack.
	v2 := e.Evaluate("git stash clear", Options{})
	if !v2.Denied() || v2.RuleID != "core.git:stash-clear" {
		t.Errorf("other rules must still deny: %+v", v2)
	}
}

func TestHeredocRuleAllowlistBypass(t *testing.T) {
	e := testEngine(t, nil, withAllowlist(t, `
[[allow]]
rule = "heredoc.python.shutil_rmtree"
reason = "cleanup script is reviewed"
`))
	cmd := "python3 << 'EOF'\nimport shutil\nshutil.rmtree(\"/var/data\")\nEOF"
	v := e.Evaluate(cmd, Options{})
	if !v.Allowed() {
		t.Fatalf("allowlisted heredoc rule still denies: %+v", v)
	}
}

func TestAllowlistExactCommand(t *testing.T) {
	e := testEngine(t, nil, withAllowlist(t, `
[[allow]]
exact_command = "git reset --hard HEAD~1"
`))
	if v := e.Evaluate("git reset --hard HEAD~1", Options{}); !v.Allowed() {
		t.Errorf("exact allowlisted command denied: %+v", v)
	}
	if v := e.Evaluate("git reset --hard HEAD~2", Options{}); !v.Denied() {
		t.Errorf("different command must still deny: %+v", v)
	}
}

func TestFirstDenyWinsAcrossSegments(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("git stash clear && git reset --hard", Options{})
	if !v.Denied() {
		t.Fatalf("verdict = %+v", v)
	}
	if v.RuleID != "core.git:stash-clear" {
		t.Errorf("first segment's deny must win, got %q", v.RuleID)
	}
}

func TestCompoundSafeDoesNotWhitelistOtherSegments(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("git checkout -b ok && git reset --hard", Options{})
	if !v.Denied() {
		t.Fatalf("a safe segment whitelisted a destructive one: %+v", v)
	}
	if v.RuleID != "core.git:reset-hard" {
		t.Errorf("rule id = %q", v.RuleID)
	}
}

func TestWrapperStripping(t *testing.T) {
	e := testEngine(t, nil)
	for _, cmd := range []string{
		"sudo git reset --hard",
		"/usr/bin/git reset --hard",
		"env FOO=1 git reset --hard",
	} {
		v := e.Evaluate(cmd, Options{})
		if !v.Denied() || v.RuleID != "core.git:reset-hard" {
			t.Errorf("%q: verdict = %+v", cmd, v)
		}
	}
}

func TestDeterminism(t *testing.T) {
	e := testEngine(t, nil)
	cmds := []string{
		"git reset --hard HEAD~5",
		"git checkout -b x",
		"ls",
		"docker system prune -a",
	}
	for _, cmd := range cmds {
		first := e.Evaluate(cmd, Options{})
		for i := 0; i < 3; i++ {
			again := e.Evaluate(cmd, Options{})
			if again.Decision != first.Decision || again.RuleID != first.RuleID {
				t.Errorf("%q: nondeterministic verdict: %+v vs %+v", cmd, first, again)
			}
		}
	}
}

func TestDenyAlwaysHasRuleID(t *testing.T) {
	e := testEngine(t, []string{"database", "containers", "kubernetes", "cloud", "infrastructure", "system", "package_managers"})
	cmds := []string{
		"git reset --hard",
		"rm -rf /tmp/x",
		"dropdb production",
		"docker system prune -a --volumes",
		"kubectl delete namespace prod",
		"terraform destroy",
		"aws s3 rb s3://bucket --force",
	}
	for _, cmd := range cmds {
		v := e.Evaluate(cmd, Options{})
		if !v.Denied() {
			t.Errorf("%q: expected deny, got %+v", cmd, v)
			continue
		}
		if v.RuleID == "" || v.PackID == "" {
			t.Errorf("%q: deny without rule identity: %+v", cmd, v)
		}
	}
}

func TestAllowNeverHasRuleID(t *testing.T) {
	e := testEngine(t, nil)
	for _, cmd := range []string{"ls", "git status", "git checkout -b x"} {
		v := e.Evaluate(cmd, Options{})
		if !v.Allowed() {
			t.Errorf("%q: expected allow", cmd)
			continue
		}
		if v.RuleID != "" {
			t.Errorf("%q: allow verdict carries rule id %q", cmd, v.RuleID)
		}
	}
}

func TestExplainTrace(t *testing.T) {
	e := testEngine(t, nil)
	v := e.Evaluate("git reset --hard", Options{Explain: true})
	if v.Trace == nil {
		t.Fatal("explain mode must attach a trace")
	}
	if v.Trace.Normalized != "git reset --hard" {
		t.Errorf("trace normalized = %q", v.Trace.Normalized)
	}
	if len(v.Trace.Steps) == 0 {
		t.Error("trace has no steps")
	}

	plain := e.Evaluate("git reset --hard", Options{})
	if plain.Trace != nil {
		t.Error("trace must be absent without explain")
	}
}

func TestMatchSpanPointsAtOriginal(t *testing.T) {
	e := testEngine(t, nil)
	raw := "sudo git reset --hard HEAD~5"
	v := e.Evaluate(raw, Options{})
	if !v.Denied() || v.Match == nil {
		t.Fatalf("verdict = %+v", v)
	}
	matched := raw[v.Match.Start:v.Match.End]
	if matched == "" || v.Match.Preview == "" {
		t.Errorf("match = %+v", v.Match)
	}
}

func TestEmptyCommandAllowed(t *testing.T) {
	e := testEngine(t, nil)
	if v := e.Evaluate("", Options{}); !v.Allowed() {
		t.Errorf("empty command must allow: %+v", v)
	}
	if v := e.Evaluate("   ", Options{}); !v.Allowed() {
		t.Errorf("blank command must allow: %+v", v)
	}
}
