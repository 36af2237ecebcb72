// SPDX-License-Identifier: MPL-2.0

package guard

import "dcg-cli/internal/packs"

// confidenceFor scores how likely a destructive match is a true
// positive. Severity sets the base; matches found inside embedded
// bodies (heredoc findings) and matches on commands the shell parser
// rejected are discounted because extraction is less precise there.
func confidenceFor(sev packs.Severity, fromHeredoc, parseFailed bool) float64 {
	var c float64
	switch sev {
	case packs.SeverityCritical:
		c = 0.95
	case packs.SeverityHigh:
		c = 0.85
	case packs.SeverityMedium:
		c = 0.70
	case packs.SeverityLow:
		c = 0.55
	default:
		c = 0.50
	}
	if fromHeredoc {
		c -= 0.10
	}
	if parseFailed {
		c -= 0.05
	}
	if c < 0.1 {
		c = 0.1
	}
	return c
}
