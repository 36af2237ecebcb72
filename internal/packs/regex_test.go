// SPDX-License-Identifier: MPL-2.0

package packs

import "testing"

func TestCompiledRegexLinear(t *testing.T) {
	re := NewCompiledRegex(`git\s+reset\s+--hard`)
	if !re.Usable() {
		t.Fatal("pattern should compile")
	}
	if !re.IsLinear() {
		t.Error("plain pattern should use the linear engine")
	}
	if !re.Match("git reset --hard HEAD~5") {
		t.Error("expected match")
	}
	if re.Match("git reset --soft HEAD~1") {
		t.Error("unexpected match")
	}
}

func TestCompiledRegexBacktrackingFallback(t *testing.T) {
	// Lookahead is not supported by the linear engine.
	re := NewCompiledRegex(`push\s+--force(?!-with-lease)`)
	if !re.Usable() {
		t.Fatal("lookahead pattern should compile under the backtracking engine")
	}
	if re.IsLinear() {
		t.Error("lookahead pattern cannot be linear")
	}
	if !re.Match("git push --force") {
		t.Error("expected match on --force")
	}
	if re.Match("git push --force-with-lease") {
		t.Error("lookahead should exclude --force-with-lease")
	}
}

func TestCompiledRegexUnusable(t *testing.T) {
	re := NewCompiledRegex(`[unclosed`)
	if re.Usable() {
		t.Fatal("invalid pattern must be unusable")
	}
	if re.CompileErr() == nil {
		t.Error("unusable pattern should carry its compile error")
	}
	// Unusable patterns are a non-match, never a panic.
	if re.Match("anything") {
		t.Error("unusable pattern must not match")
	}
	if _, ok := re.FindSpan("anything"); ok {
		t.Error("unusable pattern must not find spans")
	}
}

func TestFindSpanOffsets(t *testing.T) {
	re := NewCompiledRegex(`reset\s+--hard`)
	span, ok := re.FindSpan("git reset --hard HEAD")
	if !ok {
		t.Fatal("expected a span")
	}
	if got := "git reset --hard HEAD"[span.Start:span.End]; got != "reset --hard" {
		t.Errorf("span text = %q", got)
	}
}

func TestFindSpanBacktrackingByteOffsets(t *testing.T) {
	re := NewCompiledRegex(`--force(?!-with-lease)`)
	s := "püsh --force now" // multi-byte rune before the match
	span, ok := re.FindSpan(s)
	if !ok {
		t.Fatal("expected a span")
	}
	if got := s[span.Start:span.End]; got != "--force" {
		t.Errorf("span text = %q", got)
	}
}
