// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"dcg-cli/internal/packs"
)

type (
	// Decision is the binary outcome of an evaluation.
	Decision string

	// Source records which stage produced an allow.
	Source string

	// MatchSpan is a byte range over the original command, with a
	// short UTF-8-safe preview of the matched text.
	MatchSpan struct {
		Start   int    `json:"start"`
		End     int    `json:"end"`
		Preview string `json:"preview,omitempty"`
	}

	// Verdict is the evaluation result for one command.
	Verdict struct {
		Decision   Decision       `json:"decision"`
		Source     Source         `json:"source,omitempty"`
		RuleID     string         `json:"rule_id,omitempty"`
		PackID     string         `json:"pack_id,omitempty"`
		Severity   packs.Severity `json:"severity,omitempty"`
		Confidence float64        `json:"confidence"`
		Reason     string         `json:"reason,omitempty"`
		// Explanation is the long-form text for explain mode.
		Explanation string `json:"explanation,omitempty"`
		// Suggestion is a safe alternative command, when known.
		Suggestion string `json:"suggestion,omitempty"`

		// AllowOnceCode is issued on deny when a ledger is attached.
		AllowOnceCode     string `json:"allow_once_code,omitempty"`
		AllowOnceFullHash string `json:"allow_once_full_hash,omitempty"`

		Match *MatchSpan `json:"match,omitempty"`

		// Trace is populated only in explain/verbose mode.
		Trace *Trace `json:"trace,omitempty"`
	}
)

// Decisions.
const (
	Allow Decision = "allow"
	Deny  Decision = "deny"
)

// Allow sources.
const (
	SourceDefault     Source = "default"
	SourceQuickReject Source = "quick_reject"
	SourceSafePattern Source = "safe_pattern"
	SourceAllowlist   Source = "allowlist"
	SourceAllowOnce   Source = "allow_once"
	SourceBudget      Source = "budget"
	SourceBypass      Source = "bypass"
)

// Allowed reports an allow decision.
func (v *Verdict) Allowed() bool {
	return v.Decision == Allow
}

// Denied reports a deny decision.
func (v *Verdict) Denied() bool {
	return v.Decision == Deny
}

func allowed(source Source) Verdict {
	return Verdict{Decision: Allow, Source: source, Confidence: 1}
}

// maxPreviewChars bounds the matched-text preview.
const maxPreviewChars = 80

// preview extracts a rune-safe window of the matched text.
func preview(command string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(command) {
		end = len(command)
	}
	if start >= end {
		return ""
	}
	// Snap to rune boundaries.
	for start > 0 && start < len(command) && command[start]&0xC0 == 0x80 {
		start--
	}
	for end < len(command) && command[end]&0xC0 == 0x80 {
		end++
	}
	text := command[start:end]
	runes := []rune(text)
	if len(runes) > maxPreviewChars {
		return string(runes[:maxPreviewChars-1]) + "…"
	}
	return text
}
