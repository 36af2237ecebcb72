// SPDX-License-Identifier: MPL-2.0

package packs

import (
	"fmt"
	"sort"
	"strings"
)

// alwaysEnabled are the core packs that cannot be disabled.
var alwaysEnabled = []string{"core.git", "core.filesystem"}

// categoryTier fixes the evaluation order between categories. Lower
// tiers are evaluated first so the most fundamental protections win
// attribution when several packs could match the same command.
func categoryTier(category string) int {
	switch category {
	case "core":
		return 0
	case "strict_git":
		return 1
	default:
		return 2
	}
}

type (
	// Registry holds every available pack. It is constructed once per
	// process from metadata only (no regex compilation) and is immutable
	// afterwards; configuration changes rebuild a fresh registry.
	Registry struct {
		packs map[string]*Pack
		// order preserves registration order for deterministic listing.
		order []string
	}

	// KeywordIndex maps each keyword of the enabled packs to the packs
	// that declared it. Lookup is by whole token.
	KeywordIndex struct {
		byKeyword map[string][]string
		// ungated holds enabled packs with no keywords at all; they can
		// never be quick-rejected.
		ungated []string
	}
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{packs: make(map[string]*Pack)}
}

// Register adds a pack. Duplicate ids are rejected; external packs
// cannot use reserved namespaces.
func (r *Registry) Register(p *Pack) error {
	if _, dup := r.packs[p.ID]; dup {
		return fmt.Errorf("pack id %q already registered", p.ID)
	}
	if p.External {
		if err := ValidateID(p.ID); err != nil {
			return err
		}
	}
	// Hand each pattern its lazy handle up front so concurrent
	// evaluation races only on the sync.Once inside CompiledRegex.
	for i := range p.SafePatterns {
		p.SafePatterns[i].regex = NewCompiledRegex(p.SafePatterns[i].Pattern)
	}
	for i := range p.DestructivePatterns {
		p.DestructivePatterns[i].regex = NewCompiledRegex(p.DestructivePatterns[i].Pattern)
	}
	r.packs[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Get returns a pack by id.
func (r *Registry) Get(id string) (*Pack, bool) {
	p, ok := r.packs[id]
	return p, ok
}

// AllIDs returns every registered pack id in registration order.
func (r *Registry) AllIDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// expand resolves an enable/disable item to concrete pack ids. A full
// id resolves to itself; a bare category resolves to every pack whose
// id starts with "<category>." plus the category itself when a
// single-segment pack carries that exact id.
func (r *Registry) expand(item string) []string {
	var out []string
	if _, ok := r.packs[item]; ok {
		out = append(out, item)
	}
	prefix := item + "."
	for _, id := range r.order {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out
}

// ResolveEnabled produces the ordered list of enabled pack ids from the
// configured enabled/disabled items. Core packs are always enabled.
// Ordering: tier (core → strict_git → everything else), then category
// lexicographically, then pack id lexicographically; external packs
// follow built-ins within their tier.
func (r *Registry) ResolveEnabled(enabled, disabled []string) []string {
	set := make(map[string]bool)
	for _, item := range enabled {
		for _, id := range r.expand(item) {
			set[id] = true
		}
	}
	for _, item := range disabled {
		for _, id := range r.expand(item) {
			delete(set, id)
		}
	}
	for _, id := range alwaysEnabled {
		if _, ok := r.packs[id]; ok {
			set[id] = true
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		ta, tb := categoryTier(Category(a)), categoryTier(Category(b))
		if ta != tb {
			return ta < tb
		}
		ea, eb := r.packs[a].External, r.packs[b].External
		if ea != eb {
			return !ea // built-ins before external packs within a tier
		}
		return a < b
	})
	return ids
}

// BuildKeywordIndex indexes the keywords of the given (enabled) packs.
func (r *Registry) BuildKeywordIndex(enabledIDs []string) *KeywordIndex {
	idx := &KeywordIndex{byKeyword: make(map[string][]string)}
	for _, id := range enabledIDs {
		p, ok := r.packs[id]
		if !ok {
			continue
		}
		if len(p.Keywords) == 0 {
			idx.ungated = append(idx.ungated, id)
			continue
		}
		for _, kw := range p.Keywords {
			// Case-insensitive: gating may only ever widen the
			// candidate set.
			idx.byKeyword[strings.ToLower(kw)] = append(idx.byKeyword[strings.ToLower(kw)], id)
		}
	}
	return idx
}

// Candidates returns the enabled packs triggered by the given tokens,
// preserving enable order. Packs without keywords are always candidates.
// The result may be a superset of the packs that would actually match,
// never a subset.
func (idx *KeywordIndex) Candidates(enabledIDs []string, tokens []string) []string {
	hit := make(map[string]bool, len(idx.ungated))
	for _, id := range idx.ungated {
		hit[id] = true
	}
	for _, tok := range tokens {
		for _, id := range idx.byKeyword[strings.ToLower(tok)] {
			hit[id] = true
		}
	}
	out := make([]string, 0, len(hit))
	for _, id := range enabledIDs {
		if hit[id] {
			out = append(out, id)
		}
	}
	return out
}

// Keywords returns every distinct indexed keyword.
func (idx *KeywordIndex) Keywords() []string {
	out := make([]string, 0, len(idx.byKeyword))
	for kw := range idx.byKeyword {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// HasUngated reports whether any enabled pack opted out of keyword
// gating (which disables quick-reject globally).
func (idx *KeywordIndex) HasUngated() bool {
	return len(idx.ungated) > 0
}
