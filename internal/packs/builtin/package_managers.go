// SPDX-License-Identifier: MPL-2.0

package builtin

import "dcg-cli/internal/packs"

func packageManagersPack() *packs.Pack {
	return &packs.Pack{
		ID:          "package_managers",
		Name:        "Package Managers",
		Version:     "1.0.0",
		Description: "Protects against destructive package manager operations",
		Keywords:    []string{"npm", "yarn", "pnpm", "pip", "pip3", "cargo", "gem", "brew"},
		SafePatterns: []packs.SafePattern{
			{Name: "list-outdated-info", Pattern: `\b(?:npm|yarn|pnpm|pip3?|cargo|gem|brew)\s+(?:list|ls|outdated|info|show|search|view)\b`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "npm-unpublish",
				Pattern:     `\bnpm\s+unpublish\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "npm unpublish removes a published package version for everyone.",
				Explanation: "Unpublishing breaks every downstream consumer pinned to the version, and republishing the same version is not allowed.",
				Suggestion:  "npm deprecate",
			},
			{
				Name:        "npm-cache-clean-force",
				Pattern:     `\bnpm\s+cache\s+clean\s+(?:\S+\s+)*--force`,
				Severity:    packs.SeverityLow,
				Reason:      "npm cache clean --force deletes the local package cache.",
				Explanation: "Every later install re-downloads from the registry; on slow links this is costly, and offline work breaks.",
			},
			{
				Name:        "pip-uninstall-yes",
				Pattern:     `\bpip3?\s+uninstall\s+(?:\S+\s+)*(?:-y|--yes)`,
				Severity:    packs.SeverityMedium,
				Reason:      "pip uninstall -y removes packages without confirmation.",
				Explanation: "Removing a package another tool depends on silently breaks that tool; -y hides the prompt that would have said so.",
			},
			{
				Name:        "gem-uninstall-all",
				Pattern:     `\bgem\s+uninstall\s+(?:\S+\s+)*(?:-a|--all)`,
				Severity:    packs.SeverityMedium,
				Reason:      "gem uninstall --all removes every version of a gem.",
				Explanation: "Projects pinned to the removed versions stop working until reinstalled.",
			},
			{
				Name:        "brew-uninstall-force",
				Pattern:     `\bbrew\s+uninstall\s+(?:\S+\s+)*(?:-f|--force)`,
				Severity:    packs.SeverityMedium,
				Reason:      "brew uninstall --force removes all versions including dependencies of other formulae.",
				Explanation: "Forced removal ignores dependents; formulae linking against the removed keg break.",
			},
		},
	}
}
