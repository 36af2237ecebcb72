// SPDX-License-Identifier: MPL-2.0

package guard

import "fmt"

type (
	// Trace records the evaluation steps for explain mode.
	Trace struct {
		Steps []TraceStep `json:"steps"`
		// Normalized is the canonical command that patterns ran against.
		Normalized string `json:"normalized"`
		// CandidatePacks are the packs selected by keyword gating.
		CandidatePacks []string `json:"candidate_packs,omitempty"`
		// Tokens are the gating tokens found in executable spans.
		Tokens []string `json:"tokens,omitempty"`
	}

	// TraceStep is one pipeline stage note.
	TraceStep struct {
		Stage  string `json:"stage"`
		Detail string `json:"detail,omitempty"`
	}
)

func (t *Trace) step(stage, format string, args ...any) {
	if t == nil {
		return
	}
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	t.Steps = append(t.Steps, TraceStep{Stage: stage, Detail: detail})
}
