// SPDX-License-Identifier: MPL-2.0

package normalize

import "testing"

func TestNormalizeStripsWrappers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "git status", "git status"},
		{"sudo", "sudo git reset --hard", "git reset --hard"},
		{"sudo with options", "sudo -u postgres dropdb prod", "dropdb prod"},
		{"env assignments", "env FOO=1 BAR=2 rm -rf /tmp/x", "rm -rf /tmp/x"},
		{"bare assignment prefix", "FOO=1 rm -rf /tmp/x", "rm -rf /tmp/x"},
		{"command builtin", "command git push --force", "git push --force"},
		{"alias backslash", `\rm -rf /tmp/x`, "rm -rf /tmp/x"},
		{"bin prefix", "/usr/bin/git reset --hard", "git reset --hard"},
		{"usr local bin prefix", "/usr/local/bin/terraform destroy", "terraform destroy"},
		{"nested wrappers", "sudo env FOO=1 command git reset --hard", "git reset --hard"},
		{"prefix not stripped from args", "cp /usr/bin/git /tmp", "cp /usr/bin/git /tmp"},
		{"whitespace collapse", "git   reset    --hard", "git reset --hard"},
		{"second segment head", "echo ok && sudo git reset --hard", "echo ok && git reset --hard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in).Normalized
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"sudo git reset --hard HEAD~5",
		"env A=1 /usr/bin/rm   -rf /",
		`git commit -m "some   spaced   message"`,
		"echo 'a  b' && ls",
		"python3 << 'EOF'\nimport shutil\nEOF",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in).Normalized
		twice := Normalize(once).Normalized
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizePreservesQuotedWhitespace(t *testing.T) {
	in := `git commit -m "two   spaces"`
	got := Normalize(in).Normalized
	if got != in {
		t.Errorf("quoted whitespace was altered: %q", got)
	}
}

func TestNormalizeKeepsMultiLineBody(t *testing.T) {
	in := "python3 << 'EOF'\nimport   shutil\nshutil.rmtree(\"/x\")\nEOF"
	got := Normalize(in).Normalized
	if got != in {
		t.Errorf("heredoc body was altered:\n%q\nwant\n%q", got, in)
	}
}

func TestOriginMapping(t *testing.T) {
	in := "sudo git reset --hard"
	res := Normalize(in)
	if res.Normalized != "git reset --hard" {
		t.Fatalf("unexpected normalization: %q", res.Normalized)
	}
	// "git" in the normalized string maps back to "git" in the input.
	start, end := res.MapSpan(0, 3)
	if in[start:end] != "git" {
		t.Errorf("mapped span = %q, want %q", in[start:end], "git")
	}
	// "--hard" maps back too.
	start, end = res.MapSpan(10, 16)
	if in[start:end] != "--hard" {
		t.Errorf("mapped span = %q, want %q", in[start:end], "--hard")
	}
}

func TestNormalizeNeverPanics(t *testing.T) {
	inputs := []string{
		"'unterminated",
		`"half quoted`,
		"\\",
		"sudo",
		"env",
		";;;&&&|||",
	}
	for _, in := range inputs {
		// Normalization must return something for any input.
		_ = Normalize(in).Normalized
	}
}
