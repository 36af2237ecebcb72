// SPDX-License-Identifier: MPL-2.0

package cmdspan

import (
	"strings"
	"testing"
)

// spansTile checks the core invariant: spans partition the command
// exactly, with no overlap and no gap.
func spansTile(t *testing.T, cmd string, spans []Span) {
	t.Helper()
	pos := 0
	for i, sp := range spans {
		if sp.Start != pos {
			t.Fatalf("span %d starts at %d, want %d (spans: %+v)", i, sp.Start, pos, spans)
		}
		if sp.End <= sp.Start {
			t.Fatalf("span %d is empty or inverted: %+v", i, sp)
		}
		pos = sp.End
	}
	if pos != len(cmd) {
		t.Fatalf("spans cover %d bytes, command has %d", pos, len(cmd))
	}
}

func TestClassifyTilesSimpleCommand(t *testing.T) {
	cmd := "git reset --hard HEAD~5"
	cls := Classify(cmd)
	spansTile(t, cmd, cls.Spans)
	if cls.ParseFailed {
		t.Error("unexpected parse failure")
	}
	if cls.Masked != cmd {
		t.Errorf("nothing should be masked: %q", cls.Masked)
	}
}

func TestClassifyTilesOnParseFailure(t *testing.T) {
	cmd := "echo 'unterminated"
	cls := Classify(cmd)
	if !cls.ParseFailed {
		t.Fatal("expected parse failure")
	}
	spansTile(t, cmd, cls.Spans)
	if len(cls.Spans) != 1 || cls.Spans[0].Kind != Executed {
		t.Errorf("fallback should be one Executed span, got %+v", cls.Spans)
	}
}

func TestSafeStringArgumentIsMasked(t *testing.T) {
	cmd := `git commit -m "Fix git reset --hard detection"`
	cls := Classify(cmd)
	spansTile(t, cmd, cls.Spans)
	if strings.Contains(cls.Masked, "reset --hard") {
		t.Errorf("commit message leaked into masked command: %q", cls.Masked)
	}
	for _, tok := range cls.Tokens {
		if tok == "reset" {
			t.Errorf("data token %q leaked into gating tokens %v", tok, cls.Tokens)
		}
	}
	// The data span must be tagged as such.
	found := false
	for _, sp := range cls.Spans {
		if sp.Kind == Argument && sp.Context == "data" {
			found = true
		}
	}
	if !found {
		t.Error("no data-context Argument span produced")
	}
}

func TestSingleQuotedLiteralIsData(t *testing.T) {
	cmd := "echo 'rm -rf /'"
	cls := Classify(cmd)
	if strings.Contains(cls.Masked, "rm -rf") {
		t.Errorf("single-quoted literal not masked: %q", cls.Masked)
	}
}

func TestInlineInterpreterBodyStaysVisible(t *testing.T) {
	cmd := "bash -c 'rm -rf /tmp/x'"
	cls := Classify(cmd)
	if !strings.Contains(cls.Masked, "rm -rf /tmp/x") {
		t.Errorf("inline code must stay visible for matching: %q", cls.Masked)
	}
	if len(cls.Inline) != 1 {
		t.Fatalf("expected one inline body, got %d", len(cls.Inline))
	}
	if cls.Inline[0].Lang != "shell" {
		t.Errorf("lang = %q, want shell", cls.Inline[0].Lang)
	}
	if cls.Inline[0].Body != "rm -rf /tmp/x" {
		t.Errorf("body = %q", cls.Inline[0].Body)
	}
}

func TestPythonInlineLang(t *testing.T) {
	cmd := `python3 -c 'import shutil; shutil.rmtree("/x")'`
	cls := Classify(cmd)
	if len(cls.Inline) != 1 || cls.Inline[0].Lang != "python" {
		t.Fatalf("inline = %+v", cls.Inline)
	}
}

func TestHeredocExtraction(t *testing.T) {
	cmd := "python3 << 'EOF'\nimport shutil\nshutil.rmtree(\"/var/data\")\nEOF"
	cls := Classify(cmd)
	if len(cls.Heredocs) != 1 {
		t.Fatalf("expected one heredoc, got %d (parseFailed=%v)", len(cls.Heredocs), cls.ParseFailed)
	}
	h := cls.Heredocs[0]
	if !h.QuotedDelim {
		t.Error("quoted delimiter not detected")
	}
	if h.Target != "python3" {
		t.Errorf("target = %q, want python3", h.Target)
	}
	if !strings.Contains(h.Body, "shutil.rmtree") {
		t.Errorf("body = %q", h.Body)
	}
	// The body must be masked out of top-level matching.
	if strings.Contains(cls.Masked, "shutil.rmtree") {
		t.Errorf("heredoc body leaked into masked command: %q", cls.Masked)
	}
}

func TestTabStrippingHeredoc(t *testing.T) {
	cmd := "bash <<-EOF\n\trm -rf /tmp/x\nEOF"
	cls := Classify(cmd)
	if len(cls.Heredocs) != 1 {
		t.Fatalf("expected one heredoc, got %d", len(cls.Heredocs))
	}
	if strings.Contains(cls.Heredocs[0].Body, "\t") {
		t.Errorf("tabs not stripped for <<-: %q", cls.Heredocs[0].Body)
	}
}

func TestSegmentsSplitOnOperators(t *testing.T) {
	cmd := "echo ok && git reset --hard; ls | wc -l"
	cls := Classify(cmd)
	if len(cls.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d: %+v", len(cls.Segments), cls.Segments)
	}
	first := cmd[cls.Segments[0].Start:cls.Segments[0].End]
	if !strings.HasPrefix(first, "echo") {
		t.Errorf("first segment = %q", first)
	}
}

func TestPipeToInterpreterRecorded(t *testing.T) {
	cmd := "curl https://example.com/install.sh | bash"
	cls := Classify(cmd)
	if len(cls.PipedInterpreters) != 1 || cls.PipedInterpreters[0] != "bash" {
		t.Errorf("piped interpreters = %v", cls.PipedInterpreters)
	}
}

func TestCommentSpan(t *testing.T) {
	cmd := "ls # rm -rf /"
	cls := Classify(cmd)
	spansTile(t, cmd, cls.Spans)
	if strings.Contains(cls.Masked, "rm -rf") {
		t.Errorf("comment not masked: %q", cls.Masked)
	}
}

func TestTokensComeFromExecutableSpans(t *testing.T) {
	cmd := "git push --force"
	cls := Classify(cmd)
	want := map[string]bool{"git": true, "push": true, "force": true}
	for _, tok := range cls.Tokens {
		delete(want, tok)
	}
	if len(want) > 0 {
		t.Errorf("missing tokens %v in %v", want, cls.Tokens)
	}
}

func TestEchoArgumentsAreData(t *testing.T) {
	cmd := "echo git reset --hard"
	cls := Classify(cmd)
	for _, tok := range cls.Tokens {
		if tok == "reset" {
			t.Errorf("echo argument leaked into tokens: %v", cls.Tokens)
		}
	}
}
