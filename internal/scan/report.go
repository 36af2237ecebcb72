// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dcg-cli/internal/logging"
	"dcg-cli/internal/packs"
)

// Report formats and exit policy.
const (
	FormatPretty   = "pretty"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSARIF    = "sarif"

	FailOnError   = "error"
	FailOnWarning = "warning"
	FailOnNone    = "none"
)

// ReportOptions control rendering.
type ReportOptions struct {
	Format   string
	Redact   string
	Truncate int
	NoColor  bool
}

// ExitCode derives the scan exit code from the highest severity seen
// versus the fail_on threshold. error counts critical and high;
// warning additionally counts medium and low.
func ExitCode(res *Result, failOn string) int {
	if failOn == FailOnNone || len(res.Findings) == 0 {
		return 0
	}
	worst := -1
	for _, f := range res.Findings {
		if r := f.Verdict.Severity.Rank(); r > worst {
			worst = r
		}
	}
	switch failOn {
	case FailOnWarning:
		return 1
	default: // error
		if worst >= packs.SeverityHigh.Rank() {
			return 1
		}
		return 0
	}
}

// Render writes the scan result in the requested format.
func Render(w io.Writer, res *Result, opts ReportOptions) error {
	switch opts.Format {
	case FormatJSON:
		return renderJSON(w, res, opts)
	case FormatMarkdown:
		return renderMarkdown(w, res, opts)
	case FormatSARIF:
		return renderSARIF(w, res, opts)
	default:
		return renderPretty(w, res, opts)
	}
}

func (o ReportOptions) command(f Finding) string {
	cmd := logging.RedactCommand(f.ExtractedCommand, o.Redact)
	return logging.Truncate(cmd, o.Truncate)
}

func renderJSON(w io.Writer, res *Result, opts ReportOptions) error {
	type jsonFinding struct {
		Finding
		ExtractedCommand string `json:"extracted_command"`
	}
	out := struct {
		Findings  []jsonFinding `json:"findings"`
		Files     int           `json:"files_scanned"`
		Truncated bool          `json:"truncated,omitempty"`
	}{Files: res.Files, Truncated: res.Truncated, Findings: []jsonFinding{}}
	for _, f := range res.Findings {
		out.Findings = append(out.Findings, jsonFinding{Finding: f, ExtractedCommand: opts.command(f)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderMarkdown(w io.Writer, res *Result, opts ReportOptions) error {
	fmt.Fprintf(w, "## dcg scan: %d finding(s) across %d file(s)\n\n", len(res.Findings), res.Files)
	if len(res.Findings) == 0 {
		fmt.Fprintln(w, "No destructive commands found.")
		return nil
	}
	fmt.Fprintln(w, "| Location | Rule | Severity | Command |")
	fmt.Fprintln(w, "|---|---|---|---|")
	for _, f := range res.Findings {
		fmt.Fprintf(w, "| %s:%d:%d | `%s` | %s | `%s` |\n",
			f.File, f.Line, f.Column, f.Verdict.RuleID, f.Verdict.Severity,
			strings.ReplaceAll(opts.command(f), "|", "\\|"))
	}
	if res.Truncated {
		fmt.Fprintln(w, "\n_Finding list truncated._")
	}
	return nil
}

var (
	scanFileStyle = lipgloss.NewStyle().Bold(true)
	scanRuleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	scanSevStyles = map[packs.Severity]lipgloss.Style{
		packs.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		packs.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		packs.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		packs.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
)

func renderPretty(w io.Writer, res *Result, opts ReportOptions) error {
	if len(res.Findings) == 0 {
		fmt.Fprintf(w, "Scanned %d file(s); no destructive commands found.\n", res.Files)
		return nil
	}
	for _, f := range res.Findings {
		loc := fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)
		sev := string(f.Verdict.Severity)
		rule := f.Verdict.RuleID
		if !opts.NoColor {
			loc = scanFileStyle.Render(loc)
			rule = scanRuleStyle.Render(rule)
			if style, ok := scanSevStyles[f.Verdict.Severity]; ok {
				sev = style.Render(sev)
			}
		}
		fmt.Fprintf(w, "%s  [%s] %s\n", loc, sev, rule)
		fmt.Fprintf(w, "    %s\n", opts.command(f))
		if f.Verdict.Reason != "" {
			fmt.Fprintf(w, "    %s\n", f.Verdict.Reason)
		}
	}
	fmt.Fprintf(w, "\n%d finding(s) across %d file(s).\n", len(res.Findings), res.Files)
	if res.Truncated {
		fmt.Fprintln(w, "Finding list truncated.")
	}
	return nil
}

// SARIF 2.1.0 output, one run with one result per finding.
func renderSARIF(w io.Writer, res *Result, opts ReportOptions) error {
	type sarifMessage struct {
		Text string `json:"text"`
	}
	type sarifRegion struct {
		StartLine   int `json:"startLine"`
		StartColumn int `json:"startColumn"`
	}
	type sarifLocation struct {
		PhysicalLocation struct {
			ArtifactLocation struct {
				URI string `json:"uri"`
			} `json:"artifactLocation"`
			Region sarifRegion `json:"region"`
		} `json:"physicalLocation"`
	}
	type sarifResult struct {
		RuleID    string          `json:"ruleId"`
		Level     string          `json:"level"`
		Message   sarifMessage    `json:"message"`
		Locations []sarifLocation `json:"locations"`
	}
	type sarifRule struct {
		ID               string       `json:"id"`
		ShortDescription sarifMessage `json:"shortDescription"`
	}

	level := func(sev packs.Severity) string {
		switch sev {
		case packs.SeverityCritical, packs.SeverityHigh:
			return "error"
		case packs.SeverityMedium:
			return "warning"
		default:
			return "note"
		}
	}

	rules := make(map[string]sarifRule)
	results := []sarifResult{}
	for _, f := range res.Findings {
		if _, ok := rules[f.Verdict.RuleID]; !ok {
			rules[f.Verdict.RuleID] = sarifRule{
				ID:               f.Verdict.RuleID,
				ShortDescription: sarifMessage{Text: f.Verdict.Reason},
			}
		}
		r := sarifResult{
			RuleID: f.Verdict.RuleID,
			Level:  level(f.Verdict.Severity),
			Message: sarifMessage{
				Text: f.Verdict.Reason + " (" + opts.command(f) + ")",
			},
		}
		var loc sarifLocation
		loc.PhysicalLocation.ArtifactLocation.URI = strings.ReplaceAll(f.File, "\\", "/")
		loc.PhysicalLocation.Region = sarifRegion{StartLine: f.Line, StartColumn: f.Column}
		r.Locations = []sarifLocation{loc}
		results = append(results, r)
	}

	ruleList := make([]sarifRule, 0, len(rules))
	for _, f := range res.Findings {
		if rule, ok := rules[f.Verdict.RuleID]; ok {
			ruleList = append(ruleList, rule)
			delete(rules, f.Verdict.RuleID)
		}
	}

	doc := map[string]any{
		"$schema": "https://json.schemastore.org/sarif-2.1.0.json",
		"version": "2.1.0",
		"runs": []map[string]any{{
			"tool": map[string]any{
				"driver": map[string]any{
					"name":  "dcg",
					"rules": ruleList,
				},
			},
			"results": results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
