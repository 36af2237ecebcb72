// SPDX-License-Identifier: MPL-2.0

package builtin

import "dcg-cli/internal/packs"

// gitPack protects against git commands that lose uncommitted work,
// rewrite shared history, or destroy stashes.
func gitPack() *packs.Pack {
	return &packs.Pack{
		ID:          "core.git",
		Name:        "Core Git",
		Version:     "1.0.0",
		Description: "Protects against destructive git commands that can lose uncommitted work, rewrite history, or destroy stashes",
		Keywords:    []string{"git"},
		SafePatterns: []packs.SafePattern{
			{Name: "checkout-new-branch", Pattern: `git\s+(?:\S+\s+)*checkout\s+-b\s+`},
			{Name: "checkout-orphan", Pattern: `git\s+(?:\S+\s+)*checkout\s+--orphan\s+`},
			{Name: "switch-create", Pattern: `git\s+(?:\S+\s+)*switch\s+(?:-c|--create)\s+`},
			{Name: "restore-staged-long", Pattern: `git\s+(?:\S+\s+)*restore\s+--staged\s+(?!.*--worktree)(?!.*-W\b)`},
			{Name: "restore-staged-short", Pattern: `git\s+(?:\S+\s+)*restore\s+-S\s+(?!.*--worktree)(?!.*-W\b)`},
			{Name: "clean-dry-run-short", Pattern: `git\s+(?:\S+\s+)*clean\s+-[a-z]*n[a-z]*`},
			{Name: "clean-dry-run-long", Pattern: `git\s+(?:\S+\s+)*clean\s+--dry-run`},
			{Name: "push-force-with-lease", Pattern: `git\s+(?:\S+\s+)*push\s+.*--force-with-lease`},
			{Name: "stash-list-show", Pattern: `git\s+(?:\S+\s+)*stash\s+(?:list|show)`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "reset-hard",
				Pattern:     `git\s+(?:\S+\s+)*reset\s+--hard`,
				Severity:    packs.SeverityCritical,
				Reason:      "git reset --hard destroys uncommitted changes. Use 'git stash' first.",
				Explanation: "git reset --hard discards ALL uncommitted changes in your working directory and staging area. Changes that were never committed cannot be recovered by any means.",
				Suggestion:  "git stash",
			},
			{
				Name:        "checkout-discard",
				Pattern:     `git\s+(?:\S+\s+)*checkout\s+--\s+`,
				Severity:    packs.SeverityHigh,
				Reason:      "git checkout -- discards uncommitted changes permanently. Use 'git stash' first.",
				Explanation: "git checkout -- <path> discards all uncommitted changes to the specified files. They were never committed, so they cannot be recovered.",
				Suggestion:  "git stash",
			},
			{
				Name:        "checkout-ref-discard",
				Pattern:     `git\s+(?:\S+\s+)*checkout\s+(?!-b\b)(?!--orphan\b)[^\s]+\s+--\s+`,
				Severity:    packs.SeverityHigh,
				Reason:      "git checkout <ref> -- <path> overwrites working tree files. Use 'git stash' first.",
				Explanation: "git checkout <ref> -- <path> replaces working tree files with versions from another commit. Uncommitted changes to those files are permanently lost.",
				Suggestion:  "git stash",
			},
			{
				Name:        "restore-worktree",
				Pattern:     `git\s+(?:\S+\s+)*restore\s+(?!--staged\b)(?!-S\b)`,
				Severity:    packs.SeverityHigh,
				Reason:      "git restore discards uncommitted changes. Use 'git stash' or 'git diff' first.",
				Explanation: "git restore <path> reverts files to their last committed state, discarding uncommitted edits.",
				Suggestion:  "git restore --staged",
			},
			{
				Name:        "restore-worktree-explicit",
				Pattern:     `git\s+(?:\S+\s+)*restore\s+.*(?:--worktree|-W\b)`,
				Severity:    packs.SeverityHigh,
				Reason:      "git restore --worktree/-W discards uncommitted changes permanently.",
				Explanation: "git restore --worktree explicitly targets your working directory; the discarded edits cannot be recovered.",
				Suggestion:  "git stash",
			},
			{
				Name:        "reset-merge",
				Pattern:     `git\s+(?:\S+\s+)*reset\s+--merge`,
				Severity:    packs.SeverityHigh,
				Reason:      "git reset --merge can lose uncommitted changes.",
				Explanation: "git reset --merge updates working tree files that differ between the target and HEAD; uncommitted changes in those files are lost.",
				Suggestion:  "git merge --abort",
			},
			{
				Name:        "push-force",
				Pattern:     `git\s+(?:\S+\s+)*push\s+(?:\S+\s+)*--force(?!-with-lease)`,
				Severity:    packs.SeverityCritical,
				Reason:      "git push --force rewrites remote history. Use --force-with-lease instead.",
				Explanation: "git push --force overwrites the remote branch unconditionally, destroying commits other people may have based work on. --force-with-lease refuses to overwrite refs you haven't seen.",
				Suggestion:  "git push --force-with-lease",
			},
			{
				Name:        "push-force-short",
				Pattern:     `git\s+(?:\S+\s+)*push\s+(?:\S+\s+)*-f\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "git push -f rewrites remote history. Use --force-with-lease instead.",
				Explanation: "git push -f overwrites the remote branch unconditionally. Commits that exist only on the remote are lost.",
				Suggestion:  "git push --force-with-lease",
			},
			{
				Name:        "branch-delete-force",
				Pattern:     `git\s+(?:\S+\s+)*branch\s+(?:\S+\s+)*-D\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "git branch -D deletes a branch even if unmerged.",
				Explanation: "git branch -D discards the branch pointer without checking that its commits are merged anywhere. Unmerged commits become unreachable.",
				Suggestion:  "git branch -d",
			},
			{
				Name:        "stash-drop",
				Pattern:     `git\s+(?:\S+\s+)*stash\s+drop`,
				Severity:    packs.SeverityHigh,
				Reason:      "git stash drop permanently deletes stashed changes.",
				Explanation: "Dropped stashes are only recoverable while their objects survive gc, and finding them requires low-level plumbing.",
				Suggestion:  "git stash show -p",
			},
			{
				Name:        "stash-clear",
				Pattern:     `git\s+(?:\S+\s+)*stash\s+clear`,
				Severity:    packs.SeverityCritical,
				Reason:      "git stash clear deletes ALL stashed changes at once.",
				Explanation: "git stash clear removes every stash entry. There is no prompt and no built-in undo.",
				Suggestion:  "git stash list",
			},
			{
				Name:        "clean-force",
				Pattern:     `git\s+(?:\S+\s+)*clean\s+(?:\S+\s+)*-[a-z]*f`,
				Severity:    packs.SeverityHigh,
				Reason:      "git clean -f deletes untracked files permanently. Preview with -n first.",
				Explanation: "git clean -f removes untracked files from the working tree. They were never committed, so nothing in git can restore them.",
				Suggestion:  "git clean -n",
			},
			{
				Name:        "reflog-expire",
				Pattern:     `git\s+(?:\S+\s+)*reflog\s+expire\s+.*--expire(?:=|\s)`,
				Severity:    packs.SeverityHigh,
				Reason:      "git reflog expire removes the safety net for recovering lost commits.",
				Explanation: "The reflog is how dangling commits are found after resets and rebases; expiring it makes them unrecoverable once gc runs.",
			},
			{
				Name:        "push-delete",
				Pattern:     `git\s+(?:\S+\s+)*push\s+(?:\S+\s+)*(?:--delete|:)\S*`,
				Severity:    packs.SeverityHigh,
				Reason:      "git push --delete removes a remote branch.",
				Explanation: "Deleting a remote branch discards the remote ref; if nobody has the commits locally they are gone.",
			},
			{
				Name:        "filter-branch",
				Pattern:     `git\s+(?:\S+\s+)*filter-branch`,
				Severity:    packs.SeverityCritical,
				Reason:      "git filter-branch rewrites history destructively.",
				Explanation: "filter-branch rewrites every commit it touches and invalidates all downstream clones. Even git's own documentation steers users away from it.",
				Suggestion:  "git filter-repo",
			},
			{
				Name:        "update-ref-delete",
				Pattern:     `git\s+(?:\S+\s+)*update-ref\s+-d\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "git update-ref -d deletes a ref directly.",
				Explanation: "update-ref -d bypasses branch deletion safety checks entirely.",
			},
			{
				Name:        "gc-prune-now",
				Pattern:     `git\s+(?:\S+\s+)*gc\s+.*--prune=now`,
				Severity:    packs.SeverityHigh,
				Reason:      "git gc --prune=now immediately deletes unreachable objects.",
				Explanation: "Pruning with no grace period deletes dangling commits that reset/rebase recovery depends on.",
			},
		},
	}
}

// strictGitPack adds opt-in paranoia on top of core.git for teams that
// treat any history edit as destructive.
func strictGitPack() *packs.Pack {
	return &packs.Pack{
		ID:          "strict_git",
		Name:        "Strict Git",
		Version:     "1.0.0",
		Description: "Extra git protections: blocks force pushes with lease, rebases, and amends",
		Keywords:    []string{"git"},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "push-force-with-lease",
				Pattern:     `git\s+(?:\S+\s+)*push\s+.*--force-with-lease`,
				Severity:    packs.SeverityMedium,
				Reason:      "strict mode: --force-with-lease still rewrites remote history.",
				Explanation: "With strict git enabled, any push that can rewrite the remote branch is blocked, lease or not.",
			},
			{
				Name:        "rebase",
				Pattern:     `git\s+(?:\S+\s+)*rebase\b(?!\s+--(?:continue|abort|skip))`,
				Severity:    packs.SeverityMedium,
				Reason:      "strict mode: rebase rewrites local history.",
				Explanation: "Rebasing replaces commits with new ones; in strict mode that requires an explicit exception.",
				Suggestion:  "git merge",
			},
			{
				Name:        "commit-amend",
				Pattern:     `git\s+(?:\S+\s+)*commit\s+(?:\S+\s+)*--amend`,
				Severity:    packs.SeverityLow,
				Reason:      "strict mode: --amend replaces the previous commit.",
				Explanation: "Amending rewrites the tip commit. Harmless locally, destructive once pushed.",
			},
		},
	}
}
