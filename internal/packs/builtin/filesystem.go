// SPDX-License-Identifier: MPL-2.0

package builtin

import "dcg-cli/internal/packs"

// filesystemPack protects against irreversible file deletion and
// overwrites.
func filesystemPack() *packs.Pack {
	return &packs.Pack{
		ID:          "core.filesystem",
		Name:        "Core Filesystem",
		Version:     "1.0.0",
		Description: "Protects against recursive deletion, device overwrites, and secure-erase of files",
		Keywords:    []string{"rm", "shred", "find", "dd", "rsync", "truncate", "unlink"},
		SafePatterns: []packs.SafePattern{
			{Name: "rm-interactive", Pattern: `\brm\s+(?:\S+\s+)*-[a-zA-Z]*i`},
			{Name: "rm-single-file", Pattern: `^rm\s+[^-\s]\S*$`},
			{Name: "find-print", Pattern: `\bfind\s+(?!.*-delete)(?!.*-exec\s+rm)`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "rm-rf-root",
				Pattern:     `\brm\s+(?:\S+\s+)*-[a-zA-Z]*[rR][a-zA-Z]*f[a-zA-Z]*\s+(?:--\s+)?(?:/|/\*)(?:\s|$)`,
				Severity:    packs.SeverityCritical,
				Reason:      "rm -rf / destroys the entire filesystem.",
				Explanation: "Recursive forced deletion rooted at / removes every file the invoking user can write. On most systems this is unrecoverable without backups.",
			},
			{
				Name:        "rm-rf-home",
				Pattern:     `\brm\s+(?:\S+\s+)*-[a-zA-Z]*[rR][a-zA-Z]*f[a-zA-Z]*\s+(?:--\s+)?(?:~|\$HOME)(?:/\*?)?(?:\s|$)`,
				Severity:    packs.SeverityCritical,
				Reason:      "rm -rf on the home directory deletes all personal data.",
				Explanation: "Deleting $HOME removes configuration, keys, and every checked-out repository in one stroke.",
			},
			{
				Name:        "rm-recursive-force",
				Pattern:     `\brm\s+(?:\S+\s+)*(?:-[a-zA-Z]*[rR][a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*[rR])[a-zA-Z]*\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "rm -rf deletes recursively without prompting. Review the target first.",
				Explanation: "Recursive forced deletion skips every confirmation. A mistyped path or an unquoted variable that expands empty can take out far more than intended.",
				Suggestion:  "ls <target> && rm -ri <target>",
			},
			{
				Name:        "rm-wildcard",
				Pattern:     `\brm\s+(?:\S+\s+)*-[a-zA-Z]*[rR][a-zA-Z]*\s+(?:\S+\s+)*\*`,
				Severity:    packs.SeverityHigh,
				Reason:      "Recursive rm with a wildcard can match more than intended.",
				Explanation: "Globs expand in the current directory at run time; combined with -r the blast radius is whatever happens to match.",
				Suggestion:  "echo <glob> first to preview the expansion",
			},
			{
				Name:        "find-delete",
				Pattern:     `\bfind\s+(?:\S+\s+)*-delete\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "find -delete removes every matching file with no preview.",
				Explanation: "-delete applies to everything the expression matches, and expression ordering mistakes (e.g. -delete before -name) delete everything under the start point.",
				Suggestion:  "run the find without -delete first",
			},
			{
				Name:        "find-exec-rm",
				Pattern:     `\bfind\s+(?:\S+\s+)*-exec\s+rm\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "find -exec rm deletes every matching file.",
				Explanation: "Each match is passed to rm; there is no aggregate confirmation.",
				Suggestion:  "run the find without -exec first",
			},
			{
				Name:        "shred",
				Pattern:     `\bshred\s+`,
				Severity:    packs.SeverityCritical,
				Reason:      "shred overwrites file contents beyond recovery.",
				Explanation: "shred exists precisely to make data unrecoverable; there is no undo by definition.",
			},
			{
				Name:        "dd-to-device",
				Pattern:     `\bdd\s+(?:\S+\s+)*of=/dev/(?:sd|hd|nvme|vd|xvd|disk)`,
				Severity:    packs.SeverityCritical,
				Reason:      "dd writing to a block device destroys its contents.",
				Explanation: "Writing directly to a disk device bypasses the filesystem entirely; partition tables and data are overwritten in place.",
			},
			{
				Name:        "truncate-zero",
				Pattern:     `\btruncate\s+(?:\S+\s+)*(?:-s\s*0|--size[=\s]*0)\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "truncate -s 0 empties files in place.",
				Explanation: "Truncation to zero length discards the file contents while keeping the name, which often defeats backup tooling that keys on mtimes.",
			},
			{
				Name:        "rsync-delete",
				Pattern:     `\brsync\s+(?:\S+\s+)*--delete\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "rsync --delete removes destination files missing from the source.",
				Explanation: "With --delete, a wrong or empty source directory mirrors that emptiness onto the destination.",
				Suggestion:  "rsync --delete --dry-run",
			},
		},
	}
}
