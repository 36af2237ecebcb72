// SPDX-License-Identifier: MPL-2.0

// Package allowlist loads and matches the layered allowlist.
//
// Three layers are consulted in precedence order: project
// (.dcg/allowlist.toml at the repository root), user
// (~/.config/dcg/allowlist.toml), and system (/etc/dcg/allowlist.toml).
// A match at any layer bypasses only the matched rule, never an entire
// pack. Invalid or expired entries are dropped with a warning; the
// loader never fails an evaluation.
package allowlist

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"dcg-cli/internal/issue"
	"dcg-cli/internal/packs"
)

type (
	// Layer identifies which allowlist file an entry came from.
	Layer string

	// Entry is one allowlist record. Exactly one of Rule, ExactCommand,
	// CommandPrefix, or Pattern must be set.
	Entry struct {
		// Rule references "pack.id:pattern_name" (preferred, narrowest).
		Rule string `toml:"rule,omitempty"`
		// ExactCommand matches the whole normalized command.
		ExactCommand string `toml:"exact_command,omitempty"`
		// CommandPrefix matches a normalized-command prefix; requires
		// Context.
		CommandPrefix string `toml:"command_prefix,omitempty"`
		// Pattern is a regex entry; requires RiskAcknowledged.
		Pattern string `toml:"pattern,omitempty"`

		// Context scopes a CommandPrefix entry. A path (starting with
		// "/" or ".") restricts the entry to evaluations under that
		// subtree; any other value is a descriptive tag that always
		// applies.
		Context          string `toml:"context,omitempty"`
		RiskAcknowledged bool   `toml:"risk_acknowledged,omitempty"`

		Reason    string     `toml:"reason,omitempty"`
		AddedBy   string     `toml:"added_by,omitempty"`
		AddedAt   *time.Time `toml:"added_at,omitempty"`
		ExpiresAt *time.Time `toml:"expires_at,omitempty"`

		compiled *packs.CompiledRegex
	}

	// File is the TOML shape of one allowlist layer.
	File struct {
		Entries []Entry `toml:"allow"`
	}

	// Hit reports which entry and layer matched.
	Hit struct {
		Layer Layer
		Entry *Entry
	}

	// Layered is the merged three-layer allowlist.
	Layered struct {
		layers []loadedLayer
		// cwd is the evaluation directory, used for Context scoping.
		cwd string
	}

	loadedLayer struct {
		layer   Layer
		entries []Entry
	}
)

// Allowlist layers, highest precedence first.
const (
	LayerProject Layer = "project"
	LayerUser    Layer = "user"
	LayerSystem  Layer = "system"
)

// Paths returns the allowlist file path for a layer. projectRoot may be
// empty, in which case the project layer resolves to "".
func Paths(layer Layer, projectRoot string) string {
	switch layer {
	case LayerProject:
		if projectRoot == "" {
			return ""
		}
		return filepath.Join(projectRoot, ".dcg", "allowlist.toml")
	case LayerUser:
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, ".config", "dcg", "allowlist.toml")
	case LayerSystem:
		return filepath.Join("/etc", "dcg", "allowlist.toml")
	}
	return ""
}

// Load reads the three layers for the given project root and working
// directory. Missing files are fine; malformed files are skipped with a
// warning.
func Load(projectRoot, cwd string) *Layered {
	l := &Layered{cwd: cwd}
	for _, layer := range []Layer{LayerProject, LayerUser, LayerSystem} {
		path := Paths(layer, projectRoot)
		if path == "" {
			continue
		}
		entries, err := loadFile(path)
		if err != nil {
			log.Warn("skipping allowlist layer", "layer", layer, "path", path, "err", err)
			continue
		}
		if entries != nil {
			l.layers = append(l.layers, loadedLayer{layer: layer, entries: entries})
		}
	}
	return l
}

// LoadFiles builds a Layered from explicit files, for tests and the
// `allowlist validate` command.
func LoadFiles(cwd string, files map[Layer]string) (*Layered, []error) {
	l := &Layered{cwd: cwd}
	var errs []error
	for _, layer := range []Layer{LayerProject, LayerUser, LayerSystem} {
		path, ok := files[layer]
		if !ok {
			continue
		}
		entries, err := loadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if entries != nil {
			l.layers = append(l.layers, loadedLayer{layer: layer, entries: entries})
		}
	}
	return l, errs
}

func loadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, issue.New(issue.CodeIOFailure, issue.CategoryRuntime, "read allowlist").
			WithResource(path).Wrap(err)
	}
	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "parse allowlist").
			WithResource(path).
			WithSuggestion("Run 'dcg allowlist validate' for details").Wrap(err)
	}

	now := time.Now()
	valid := file.Entries[:0]
	for i := range file.Entries {
		e := file.Entries[i]
		if err := e.Validate(); err != nil {
			log.Warn("dropping invalid allowlist entry", "path", path, "err", err)
			continue
		}
		if e.ExpiresAt != nil && now.After(*e.ExpiresAt) {
			log.Warn("dropping expired allowlist entry", "path", path, "entry", e.describe())
			continue
		}
		valid = append(valid, e)
	}
	return valid, nil
}

// Validate checks that the entry is well-shaped: exactly one selector,
// Context on prefixes, RiskAcknowledged on patterns.
func (e *Entry) Validate() error {
	selectors := 0
	for _, s := range []string{e.Rule, e.ExactCommand, e.CommandPrefix, e.Pattern} {
		if s != "" {
			selectors++
		}
	}
	if selectors != 1 {
		return issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "validate allowlist entry").
			WithSuggestion("Set exactly one of rule, exact_command, command_prefix, pattern")
	}
	if e.Rule != "" {
		_, _, ok := packs.SplitRuleID(e.Rule)
		if !ok && !strings.HasPrefix(e.Rule, "heredoc.") {
			return issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "validate allowlist entry").
				WithResource(e.Rule).
				WithSuggestion("rule must be \"pack.id:pattern_name\" (or a heredoc.<lang>.<pattern> id)")
		}
	}
	if e.CommandPrefix != "" && e.Context == "" {
		return issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "validate allowlist entry").
			WithResource(e.CommandPrefix).
			WithSuggestion("command_prefix entries require a context tag")
	}
	if e.Pattern != "" && !e.RiskAcknowledged {
		return issue.New(issue.CodeAllowlistInvalid, issue.CategoryConfig, "validate allowlist entry").
			WithResource(e.Pattern).
			WithSuggestion("pattern entries require risk_acknowledged = true")
	}
	return nil
}

func (e *Entry) describe() string {
	switch {
	case e.Rule != "":
		return "rule " + e.Rule
	case e.ExactCommand != "":
		return "exact_command " + e.ExactCommand
	case e.CommandPrefix != "":
		return "command_prefix " + e.CommandPrefix
	default:
		return "pattern " + e.Pattern
	}
}

// contextApplies checks the Context scoping of a prefix/pattern entry.
func (e *Entry) contextApplies(cwd string) bool {
	if e.Context == "" {
		return true
	}
	if strings.HasPrefix(e.Context, "/") || strings.HasPrefix(e.Context, ".") {
		abs, err := filepath.Abs(e.Context)
		if err != nil {
			return false
		}
		rel, err := filepath.Rel(abs, cwd)
		return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}
	return true
}

// MatchRule finds the highest-precedence entry naming packID:patternName.
func (l *Layered) MatchRule(packID, patternName string) *Hit {
	return l.MatchRuleID(packs.RuleID(packID, patternName))
}

// MatchRuleID matches a literal rule id. Heredoc findings use the
// dotted heredoc.<lang>.<pattern> form instead of pack:pattern.
func (l *Layered) MatchRuleID(ruleID string) *Hit {
	for i := range l.layers {
		for j := range l.layers[i].entries {
			e := &l.layers[i].entries[j]
			if e.Rule == ruleID {
				return &Hit{Layer: l.layers[i].layer, Entry: e}
			}
		}
	}
	return nil
}

// MatchCommand finds an exact_command, command_prefix, or pattern entry
// matching the normalized command.
func (l *Layered) MatchCommand(normalized string) *Hit {
	for i := range l.layers {
		for j := range l.layers[i].entries {
			e := &l.layers[i].entries[j]
			switch {
			case e.ExactCommand != "":
				if e.ExactCommand == normalized {
					return &Hit{Layer: l.layers[i].layer, Entry: e}
				}
			case e.CommandPrefix != "":
				if strings.HasPrefix(normalized, e.CommandPrefix) && e.contextApplies(l.cwd) {
					return &Hit{Layer: l.layers[i].layer, Entry: e}
				}
			case e.Pattern != "":
				if e.compiled == nil {
					e.compiled = packs.NewCompiledRegex(e.Pattern)
				}
				if e.compiled.Match(normalized) && e.contextApplies(l.cwd) {
					return &Hit{Layer: l.layers[i].layer, Entry: e}
				}
			}
		}
	}
	return nil
}
