// SPDX-License-Identifier: MPL-2.0

package packs

import (
	"regexp"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// regexp2MatchTimeout bounds backtracking evaluation. The linear engine
// needs no timeout; regexp2 patterns can blow up on pathological input.
const regexp2MatchTimeout = 100 * time.Millisecond

type (
	// CompiledRegex is a two-variant compiled pattern. The linear variant
	// (stdlib regexp, RE2) guarantees O(n) matching but supports no
	// lookaround; the backtracking variant (regexp2) supports
	// lookahead/lookbehind at the cost of bounded backtracking.
	//
	// Compilation is lazy: the first call to Match or FindSpan compiles
	// the source, preferring linear and falling back to backtracking.
	// A source that compiles under neither engine marks the pattern
	// unusable, which is reported once and then treated as a non-match.
	CompiledRegex struct {
		source string

		once     sync.Once
		linear   *regexp.Regexp
		back     *regexp2.Regexp
		unusable bool
		compErr  error
	}

	// Span is a half-open byte range [Start, End) over the matched string.
	Span struct {
		Start int
		End   int
	}
)

// NewCompiledRegex wraps a regex source without compiling it.
func NewCompiledRegex(source string) *CompiledRegex {
	return &CompiledRegex{source: source}
}

// Source returns the uncompiled pattern source.
func (c *CompiledRegex) Source() string {
	return c.source
}

func (c *CompiledRegex) compile() {
	c.once.Do(func() {
		if re, err := regexp.Compile(c.source); err == nil {
			c.linear = re
			return
		}
		re2, err := regexp2.Compile(c.source, regexp2.None)
		if err != nil {
			c.unusable = true
			c.compErr = err
			return
		}
		re2.MatchTimeout = regexp2MatchTimeout
		c.back = re2
	})
}

// Usable reports whether the pattern compiled under either engine.
// Forces compilation.
func (c *CompiledRegex) Usable() bool {
	c.compile()
	return !c.unusable
}

// CompileErr returns the compilation error for unusable patterns.
func (c *CompiledRegex) CompileErr() error {
	c.compile()
	return c.compErr
}

// IsLinear reports whether the linear engine accepted the source.
// Forces compilation.
func (c *CompiledRegex) IsLinear() bool {
	c.compile()
	return c.linear != nil
}

// Match reports whether the pattern matches s. Execution errors
// (backtracking timeout) and unusable patterns report false: pattern
// failure is never allowed to block or crash an evaluation.
func (c *CompiledRegex) Match(s string) bool {
	c.compile()
	switch {
	case c.linear != nil:
		return c.linear.MatchString(s)
	case c.back != nil:
		ok, err := c.back.MatchString(s)
		return err == nil && ok
	default:
		return false
	}
}

// FindSpan returns the byte span of the leftmost match, or ok=false when
// the pattern does not match (or is unusable / timed out).
func (c *CompiledRegex) FindSpan(s string) (Span, bool) {
	c.compile()
	switch {
	case c.linear != nil:
		loc := c.linear.FindStringIndex(s)
		if loc == nil {
			return Span{}, false
		}
		return Span{Start: loc[0], End: loc[1]}, true
	case c.back != nil:
		m, err := c.back.FindStringMatch(s)
		if err != nil || m == nil {
			return Span{}, false
		}
		// regexp2 reports rune indices; convert back to byte offsets.
		runes := []rune(s)
		start := len(string(runes[:m.Index]))
		end := start + len(string(runes[m.Index:m.Index+m.Length]))
		return Span{Start: start, End: end}, true
	default:
		return Span{}, false
	}
}
