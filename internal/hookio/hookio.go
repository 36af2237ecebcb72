// SPDX-License-Identifier: MPL-2.0

// Package hookio implements the PreToolUse hook protocol: JSON input on
// stdin, a deny object on stdout (or no bytes at all on allow), and an
// optional styled block on stderr for humans.
package hookio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dcg-cli/internal/guard"
	"dcg-cli/internal/issue"
)

type (
	// Input is the hook request.
	Input struct {
		ToolName  string    `json:"tool_name"`
		ToolInput ToolInput `json:"tool_input"`
	}

	// ToolInput carries the command for Bash tool calls.
	ToolInput struct {
		Command string `json:"command"`
	}

	// Output is the deny response envelope.
	Output struct {
		HookSpecificOutput SpecificOutput `json:"hookSpecificOutput"`
	}

	// SpecificOutput is the PreToolUse decision payload.
	SpecificOutput struct {
		HookEventName            string       `json:"hookEventName"`
		PermissionDecision       string       `json:"permissionDecision"`
		PermissionDecisionReason string       `json:"permissionDecisionReason"`
		RuleID                   string       `json:"ruleId,omitempty"`
		PackID                   string       `json:"packId,omitempty"`
		Severity                 string       `json:"severity,omitempty"`
		Confidence               float64      `json:"confidence,omitempty"`
		AllowOnceCode            string       `json:"allowOnceCode,omitempty"`
		AllowOnceFullHash        string       `json:"allowOnceFullHash,omitempty"`
		Remediation              *Remediation `json:"remediation,omitempty"`
	}

	// Remediation suggests how to proceed after a deny.
	Remediation struct {
		SafeAlternative  string `json:"safeAlternative,omitempty"`
		Explanation      string `json:"explanation,omitempty"`
		AllowOnceCommand string `json:"allowOnceCommand"`
	}
)

// ReadInput parses the hook request from r. Malformed input is a
// runtime error (exit code 1 in the CLI).
func ReadInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, 10<<20))
	if err != nil {
		return nil, issue.New(issue.CodeIOFailure, issue.CategoryRuntime, "read hook input").Wrap(err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, issue.New(issue.CodeMalformedInput, issue.CategoryRuntime, "parse hook input").
			WithSuggestion("The hook expects {\"tool_name\": ..., \"tool_input\": {\"command\": ...}}").
			Wrap(err)
	}
	return &in, nil
}

// Evaluated reports whether this tool call is subject to evaluation.
// Anything but Bash is silently allowed.
func (in *Input) Evaluated() bool {
	return in.ToolName == "Bash" && in.ToolInput.Command != ""
}

// WriteDeny emits the deny JSON for a verdict. Allow emits nothing, so
// there is no WriteAllow.
func WriteDeny(w io.Writer, v *guard.Verdict) error {
	out := Output{
		HookSpecificOutput: SpecificOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       "deny",
			PermissionDecisionReason: denyReason(v),
			RuleID:                   v.RuleID,
			PackID:                   v.PackID,
			Severity:                 string(v.Severity),
			Confidence:               v.Confidence,
			AllowOnceCode:            v.AllowOnceCode,
			AllowOnceFullHash:        v.AllowOnceFullHash,
		},
	}
	if v.Suggestion != "" || v.Explanation != "" || v.AllowOnceCode != "" {
		out.HookSpecificOutput.Remediation = &Remediation{
			SafeAlternative:  v.Suggestion,
			Explanation:      v.Explanation,
			AllowOnceCommand: allowOnceCommand(v),
		}
	}
	return json.NewEncoder(w).Encode(out)
}

func denyReason(v *guard.Verdict) string {
	var b strings.Builder
	b.WriteString(v.Reason)
	if v.Suggestion != "" {
		fmt.Fprintf(&b, " Safe alternative: %s.", v.Suggestion)
	}
	if v.AllowOnceCode != "" {
		fmt.Fprintf(&b, " To allow once: dcg allow-once %s", v.AllowOnceCode)
	}
	return b.String()
}

func allowOnceCommand(v *guard.Verdict) string {
	if v.AllowOnceCode == "" {
		return ""
	}
	return "dcg allow-once " + v.AllowOnceCode
}

var (
	denyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 1)
	denyTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	denyDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderDenial writes the human-facing block to stderr-like writers.
// Robot mode skips this entirely.
func RenderDenial(w io.Writer, v *guard.Verdict, command string) {
	var b strings.Builder
	b.WriteString(denyTitleStyle.Render("✗ command blocked"))
	b.WriteString("\n\n")
	b.WriteString(command)
	b.WriteString("\n\n")
	b.WriteString(v.Reason)
	if v.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(denyDimStyle.Render("try: " + v.Suggestion))
	}
	b.WriteString("\n")
	b.WriteString(denyDimStyle.Render(fmt.Sprintf("rule %s · severity %s · confidence %.2f", v.RuleID, v.Severity, v.Confidence)))
	if v.AllowOnceCode != "" {
		b.WriteString("\n")
		b.WriteString(denyDimStyle.Render("allow once: dcg allow-once " + v.AllowOnceCode))
	}
	fmt.Fprintln(w, denyBoxStyle.Render(b.String()))
}
