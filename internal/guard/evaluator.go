// SPDX-License-Identifier: MPL-2.0

// Package guard is the decision engine: it turns a command string plus
// its environment (enabled packs, allowlists, allow-once ledger) into
// an allow/deny verdict with a stable rule identity and a trace.
//
// The pipeline is strictly ordered: normalize → classify → quick-reject
// via keyword gating → safe pass → destructive pass → allowlist bypass
// → allow-once consumption → heredoc escalation → final verdict.
// Multi-segment commands are evaluated first-segment-first and the
// first deny wins. Every stage is bounded by a wall-clock budget;
// exceeding it fails open.
package guard

import (
	"strings"
	"time"

	"dcg-cli/internal/allowlist"
	"dcg-cli/internal/cmdspan"
	"dcg-cli/internal/heredoc"
	"dcg-cli/internal/ledger"
	"dcg-cli/internal/normalize"
	"dcg-cli/internal/packs"
)

// defaultBudget bounds one whole evaluation in hook mode.
const defaultBudget = 50 * time.Millisecond

type (
	// Engine evaluates commands against a fixed registry and policy.
	// It is immutable after construction and safe for concurrent use
	// except for the ledger, which serializes through file locking.
	Engine struct {
		registry   *packs.Registry
		enabledIDs []string
		index      *packs.KeywordIndex

		allow  *allowlist.Layered
		ledger *ledger.Ledger

		heredocOn bool
		scanner   *heredoc.Scanner

		budget time.Duration
		cwd    string
		scope  string
	}

	// Config assembles an Engine.
	Config struct {
		Registry  *packs.Registry
		Enabled   []string
		Disabled  []string
		Allowlist *allowlist.Layered
		// Ledger may be nil; then no allow-once codes are issued or
		// consumed.
		Ledger *ledger.Ledger

		HeredocEnabled bool
		HeredocLimits  heredoc.Limits

		// Budget caps one evaluation; zero takes the default.
		Budget time.Duration

		// Cwd is the evaluation directory (allowlist context scoping
		// and allow-once scope resolution).
		Cwd string
	}

	// Options modify one evaluation.
	Options struct {
		// Explain attaches a trace to the verdict.
		Explain bool
		// IssueCode appends an allow-once entry on deny (hook and test
		// modes; scan mode leaves the ledger untouched).
		IssueCode bool
	}
)

// New builds an engine. Enable resolution and keyword indexing happen
// here; pattern compilation does not.
func New(cfg Config) *Engine {
	reg := cfg.Registry
	enabled := reg.ResolveEnabled(cfg.Enabled, cfg.Disabled)
	e := &Engine{
		registry:   reg,
		enabledIDs: enabled,
		index:      reg.BuildKeywordIndex(enabled),
		allow:      cfg.Allowlist,
		ledger:     cfg.Ledger,
		heredocOn:  cfg.HeredocEnabled,
		budget:     cfg.Budget,
		cwd:        cfg.Cwd,
	}
	if e.budget <= 0 {
		e.budget = defaultBudget
	}
	if e.cwd != "" {
		e.scope = ledger.ResolveScope(e.cwd)
	}
	e.scanner = heredoc.NewScanner(cfg.HeredocLimits, e.evalShellBody)
	return e
}

// EnabledPacks returns the resolved enable order.
func (e *Engine) EnabledPacks() []string {
	return e.enabledIDs
}

// GatingKeywords returns every keyword of the enabled packs
// (lowercased), for scan mode's per-file pre-filter.
func (e *Engine) GatingKeywords() []string {
	return e.index.Keywords()
}

// HasUngatedPacks reports whether any enabled pack declared no
// keywords, which disables file-level keyword filtering.
func (e *Engine) HasUngatedPacks() bool {
	return e.index.HasUngated()
}

// Evaluate runs the pipeline for one command.
func (e *Engine) Evaluate(raw string, opts Options) Verdict {
	deadline := time.Now().Add(e.budget)

	var trace *Trace
	if opts.Explain {
		trace = &Trace{}
	}

	if strings.TrimSpace(raw) == "" {
		v := allowed(SourceDefault)
		v.Trace = trace
		return v
	}

	norm := normalize.Normalize(raw)
	for _, note := range norm.Notes {
		trace.step("normalize", "%s", note)
	}
	cls := cmdspan.Classify(norm.Normalized)
	if cls.ParseFailed {
		trace.step("classify", "shell parse failed; whole command treated as executed")
	}
	if trace != nil {
		trace.Normalized = norm.Normalized
		trace.Tokens = cls.Tokens
	}

	// Quick reject: with every enabled pack keyword-gated and none of
	// the gating tokens present, zero regex operations run. A heredoc
	// or inline-interpreter trigger still escalates: the embedded body
	// may be destructive without any pack keyword on the command line.
	candidates := e.index.Candidates(e.enabledIDs, cls.Tokens)
	if trace != nil {
		trace.CandidatePacks = candidates
	}
	heredocTriggered := e.heredocOn && heredoc.Triggered(cls, norm.Normalized)
	if len(candidates) == 0 && !heredocTriggered {
		trace.step("quick_reject", "no pack keywords present")
		v := allowed(SourceQuickReject)
		v.Trace = trace
		return v
	}

	if time.Now().After(deadline) {
		return e.budgetExceeded(trace)
	}

	// Allowlist exact/prefix/pattern entries match the whole normalized
	// command before any pattern work.
	if e.allow != nil {
		if hit := e.allow.MatchCommand(norm.Normalized); hit != nil {
			trace.step("allowlist", "command allowlisted at %s layer", hit.Layer)
			v := allowed(SourceAllowlist)
			v.Trace = trace
			return v
		}
	}

	// Segment loop: first-segment-first, first-deny-wins.
	var allowSource Source
	for _, seg := range cls.Segments {
		if time.Now().After(deadline) {
			return e.budgetExceeded(trace)
		}
		segText := sliceMasked(cls.Masked, seg)
		verdict, src := e.evaluateSegment(segText, seg.Start, norm, raw, candidates, trace, deadline)
		if verdict != nil {
			return e.finalizeDeny(*verdict, norm.Normalized, raw, opts, trace, cls.ParseFailed)
		}
		if src != "" && allowSource == "" {
			allowSource = src
		}
	}

	// Heredoc / inline escalation.
	if heredocTriggered {
		if v := e.escalate(cls, norm, raw, opts, trace, deadline); v != nil {
			return *v
		}
	}

	if allowSource == "" {
		allowSource = SourceDefault
	}
	v := allowed(allowSource)
	v.Trace = trace
	return v
}

// evaluateSegment runs the safe and destructive passes for one command
// segment. It returns a deny verdict, or the allow source when a safe
// pattern or allowlist rule decided the segment.
func (e *Engine) evaluateSegment(segText string, segStart int, norm normalize.Result, raw string, candidates []string, trace *Trace, deadline time.Time) (*Verdict, Source) {
	var allowSource Source
	for _, packID := range candidates {
		p, ok := e.registry.Get(packID)
		if !ok {
			continue
		}
		if time.Now().After(deadline) {
			return nil, allowSource
		}

		// Safe pass: a match skips only this pack's destructive
		// patterns, so one pack's safe rule cannot whitelist another
		// pack's destructive command in a compound line.
		safeHit := false
		for i := range p.SafePatterns {
			sp := &p.SafePatterns[i]
			if !sp.Regex().Usable() {
				continue
			}
			if sp.Regex().Match(segText) {
				trace.step("safe_pass", "%s matched", packs.RuleID(packID, sp.Name))
				safeHit = true
				break
			}
		}
		if safeHit {
			if allowSource == "" {
				allowSource = SourceSafePattern
			}
			continue
		}

		// Destructive pass, declaration order; first match is the
		// candidate verdict.
		for i := range p.DestructivePatterns {
			dp := &p.DestructivePatterns[i]
			if !dp.Regex().Usable() {
				continue
			}
			span, matched := dp.Regex().FindSpan(segText)
			if !matched {
				continue
			}
			if e.allow != nil {
				if hit := e.allow.MatchRule(packID, dp.Name); hit != nil {
					trace.step("allowlist", "rule %s bypassed at %s layer", packs.RuleID(packID, dp.Name), hit.Layer)
					if allowSource == "" {
						allowSource = SourceAllowlist
					}
					// Only this rule is bypassed; keep checking the
					// remaining rules and packs.
					continue
				}
			}
			trace.step("destructive_pass", "%s matched", packs.RuleID(packID, dp.Name))
			v := Verdict{
				Decision:    Deny,
				RuleID:      packs.RuleID(packID, dp.Name),
				PackID:      packID,
				Severity:    dp.Severity,
				Reason:      dp.Reason,
				Explanation: dp.Explanation,
				Suggestion:  dp.Suggestion,
			}
			if start, end := norm.MapSpan(segStart+span.Start, segStart+span.End); end > start {
				v.Match = &MatchSpan{Start: start, End: end, Preview: preview(raw, start, end)}
			}
			return &v, allowSource
		}
	}
	return nil, allowSource
}

// finalizeDeny applies allow-once consumption, confidence, and code
// issuance to a candidate deny.
func (e *Engine) finalizeDeny(v Verdict, normalized, raw string, opts Options, trace *Trace, parseFailed bool) Verdict {
	hash := ledger.HashCommand(normalized)
	if e.ledger != nil {
		consumed, err := e.ledger.Consume(hash, e.cwd, time.Now())
		if err != nil {
			trace.step("allow_once", "ledger error: %v", err)
		}
		if consumed {
			trace.step("allow_once", "primed entry consumed")
			av := allowed(SourceAllowOnce)
			av.Trace = trace
			return av
		}
	}

	v.Confidence = confidenceFor(v.Severity, strings.HasPrefix(v.PackID, "heredoc."), parseFailed)
	if opts.IssueCode && e.ledger != nil {
		scope := e.scope
		if scope == "" {
			scope = e.cwd
		}
		code, err := e.ledger.Issue(hash, scope, time.Now())
		if err != nil {
			trace.step("allow_once", "issue failed: %v", err)
		} else {
			v.AllowOnceCode = code
			v.AllowOnceFullHash = hash
		}
	}
	v.Trace = trace
	return v
}

// escalate runs the tiered heredoc scanner and merges its findings as
// deny candidates, subject to the same allowlist and allow-once passes.
func (e *Engine) escalate(cls *cmdspan.Classification, norm normalize.Result, raw string, opts Options, trace *Trace, deadline time.Time) *Verdict {
	if time.Now().After(deadline) {
		v := e.budgetExceeded(trace)
		return &v
	}
	res := e.scanner.Scan(cls, norm.Normalized)
	for _, skip := range res.Skipped {
		trace.step("heredoc", "skipped: %s", skip)
	}
	for _, f := range res.Findings {
		// Shell findings carry pack:pattern ids; the construct matcher
		// emits dotted heredoc.<lang>.<pattern> ids.
		packID, _, ok := packs.SplitRuleID(f.RuleID)
		if !ok {
			i := strings.LastIndexByte(f.RuleID, '.')
			if i <= 0 {
				continue
			}
			packID = f.RuleID[:i]
		}
		if e.allow != nil {
			if hit := e.allow.MatchRuleID(f.RuleID); hit != nil {
				trace.step("allowlist", "heredoc rule %s bypassed at %s layer", f.RuleID, hit.Layer)
				continue
			}
		}
		trace.step("heredoc", "%s matched in %s body", f.RuleID, f.Lang)
		v := e.finalizeDeny(Verdict{
			Decision:   Deny,
			RuleID:     f.RuleID,
			PackID:     packID,
			Severity:   f.Severity,
			Reason:     f.Reason,
			Suggestion: f.Suggestion,
		}, norm.Normalized, raw, opts, trace, cls.ParseFailed)
		return &v
	}
	return nil
}

// evalShellBody routes a shell heredoc body back through the pack
// passes. Escalation does not recurse: heredocs inside the body are
// not scanned again.
func (e *Engine) evalShellBody(body string) []heredoc.Finding {
	var findings []heredoc.Finding
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		norm := normalize.Normalize(line)
		cls := cmdspan.Classify(norm.Normalized)
		candidates := e.index.Candidates(e.enabledIDs, cls.Tokens)
		for _, seg := range cls.Segments {
			segText := sliceMasked(cls.Masked, seg)
			verdict, _ := e.evaluateSegment(segText, seg.Start, norm, line, candidates, nil, time.Now().Add(e.budget))
			if verdict != nil {
				findings = append(findings, heredoc.Finding{
					RuleID:     verdict.RuleID,
					Lang:       "shell",
					Severity:   verdict.Severity,
					Reason:     verdict.Reason,
					Suggestion: verdict.Suggestion,
				})
				return findings
			}
		}
	}
	return findings
}

func (e *Engine) budgetExceeded(trace *Trace) Verdict {
	trace.step("budget", "pipeline budget exceeded; failing open")
	v := allowed(SourceBudget)
	v.Trace = trace
	return v
}

func sliceMasked(masked string, seg cmdspan.Span) string {
	start, end := seg.Start, seg.End
	if start < 0 {
		start = 0
	}
	if end > len(masked) {
		end = len(masked)
	}
	if start >= end {
		return ""
	}
	return masked[start:end]
}
