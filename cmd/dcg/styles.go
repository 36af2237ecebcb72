// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI output.
// These colors are designed for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for titles, headers, and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles, secondary text, and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for allow verdicts and positive outcomes.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for deny verdicts and failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for medium-severity findings and warnings.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for rule ids, commands, and interactive elements.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles - reusable lipgloss styles built from the color palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// AllowStyle is for allow verdicts.
	AllowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	// DenyStyle is for deny verdicts.
	DenyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// RuleStyle is for rule ids.
	RuleStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// DimStyle is for supplementary details.
	DimStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)
