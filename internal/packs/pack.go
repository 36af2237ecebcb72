// SPDX-License-Identifier: MPL-2.0

package packs

import (
	"fmt"
	"regexp"
	"strings"
)

type (
	// Severity grades how dangerous a destructive pattern is. Safe
	// patterns carry no severity.
	Severity string

	// SafePattern is a whitelist rule: a match allows the command and
	// skips the owning pack's destructive patterns.
	SafePattern struct {
		// Name is unique within the pack and forms the rule id
		// "pack.id:name".
		Name    string
		Pattern string

		regex *CompiledRegex
	}

	// DestructivePattern is a blacklist rule: the first match across the
	// ordered candidate packs produces the deny verdict.
	DestructivePattern struct {
		Name     string
		Pattern  string
		Severity Severity
		// Reason is the short, single-line block message.
		Reason string
		// Explanation is the long-form markdown shown by `dcg explain`.
		Explanation string
		// Suggestion is a safe alternative command, when one exists.
		Suggestion string

		regex *CompiledRegex
	}

	// Pack is the unit of enable/disable.
	Pack struct {
		// ID is "namespace.name" (e.g. "database.postgresql"); the two
		// single-segment built-ins "package_managers" and "strict_git"
		// are grandfathered.
		ID          string
		Name        string
		Version     string
		Description string
		// Keywords gate evaluation: a command whose executed spans
		// contain none of them skips this pack entirely. An empty list
		// disables gating for the pack.
		Keywords []string

		SafePatterns        []SafePattern
		DestructivePatterns []DestructivePattern

		// External marks packs loaded from YAML files.
		External bool
	}
)

// Severity levels, ordered from most to least dangerous.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities: critical=3 … low=0. Unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 0
	default:
		return -1
	}
}

// Valid reports whether s is one of the four known levels.
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// idPattern validates external pack ids: namespace.name, lowercase.
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// versionPattern validates semantic versions.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// reservedNamespaces are the built-in pack namespaces. External packs
// cannot register ids under any of them.
var reservedNamespaces = map[string]bool{
	"core": true, "database": true, "containers": true,
	"kubernetes": true, "cloud": true, "storage": true,
	"secrets": true, "messaging": true, "search": true,
	"backup": true, "platform": true, "cicd": true,
	"monitoring": true, "infrastructure": true, "cdn": true,
	"apigateway": true, "system": true, "heredoc": true,
	"package_managers": true, "strict_git": true,
}

// ReservedNamespace reports whether the category segment of id belongs
// to a built-in namespace.
func ReservedNamespace(id string) bool {
	return reservedNamespaces[Category(id)]
}

// Category returns the namespace segment of a pack id ("database" for
// "database.postgresql"; the id itself for single-segment ids).
func Category(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// ValidateID checks an external pack id for shape and reservation.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("pack id %q does not match %s", id, idPattern.String())
	}
	if ReservedNamespace(id) {
		return fmt.Errorf("pack id %q uses reserved namespace %q", id, Category(id))
	}
	return nil
}

// Regex returns the lazily compiled handle for a safe pattern.
func (p *SafePattern) Regex() *CompiledRegex {
	if p.regex == nil {
		p.regex = NewCompiledRegex(p.Pattern)
	}
	return p.regex
}

// Regex returns the lazily compiled handle for a destructive pattern.
func (p *DestructivePattern) Regex() *CompiledRegex {
	if p.regex == nil {
		p.regex = NewCompiledRegex(p.Pattern)
	}
	return p.regex
}

// RuleID is the stable identity "pack.id:pattern_name" reported on deny
// and referenced by allowlist entries.
func RuleID(packID, patternName string) string {
	return packID + ":" + patternName
}

// SplitRuleID splits "pack.id:pattern_name" into its parts.
func SplitRuleID(ruleID string) (packID, patternName string, ok bool) {
	i := strings.LastIndexByte(ruleID, ':')
	if i <= 0 || i == len(ruleID)-1 {
		return "", "", false
	}
	return ruleID[:i], ruleID[i+1:], true
}
