// SPDX-License-Identifier: MPL-2.0

package heredoc

import (
	"dcg-cli/internal/packs"
)

type (
	// construct is one destructive construct query for a language.
	// Most queries are anchored to call sites (receiver.method followed
	// by an opening paren) so mentions in strings or comments of other
	// shapes do not fire; the Ruby FileUtils and backtick queries and the
	// Perl unlink/rmdir queries match without a paren. A match emits rule
	// id "heredoc.<lang>.<name>".
	construct struct {
		name       string
		pattern    string
		severity   packs.Severity
		reason     string
		suggestion string

		regex *packs.CompiledRegex
	}
)

// constructTables holds the curated destructive constructs per language.
// Shell is absent: shell bodies get a real parse and are routed back
// through the evaluator.
var constructTables = map[string][]*construct{
	"python": {
		{name: "shutil_rmtree", pattern: `\bshutil\.rmtree\s*\(`, severity: packs.SeverityHigh,
			reason:     "shutil.rmtree() recursively deletes directories",
			suggestion: "Use shutil.rmtree with explicit path validation"},
		{name: "os_remove", pattern: `\bos\.remove\s*\(`, severity: packs.SeverityHigh,
			reason: "os.remove() deletes files"},
		{name: "os_rmdir", pattern: `\bos\.rmdir\s*\(`, severity: packs.SeverityHigh,
			reason: "os.rmdir() deletes directories"},
		{name: "os_unlink", pattern: `\bos\.unlink\s*\(`, severity: packs.SeverityHigh,
			reason: "os.unlink() deletes files"},
		{name: "pathlib_unlink", pattern: `\bPath\s*\([^)]*\)\s*\.unlink\s*\(`, severity: packs.SeverityHigh,
			reason: "Path.unlink() deletes files"},
		{name: "pathlib_rmdir", pattern: `\bPath\s*\([^)]*\)\s*\.rmdir\s*\(`, severity: packs.SeverityHigh,
			reason: "Path.rmdir() deletes directories"},
		{name: "subprocess_run", pattern: `\bsubprocess\.run\s*\(`, severity: packs.SeverityMedium,
			reason:     "subprocess.run() executes shell commands",
			suggestion: "Validate command arguments carefully"},
		{name: "subprocess_call", pattern: `\bsubprocess\.call\s*\(`, severity: packs.SeverityMedium,
			reason: "subprocess.call() executes shell commands"},
		{name: "subprocess_popen", pattern: `\bsubprocess\.Popen\s*\(`, severity: packs.SeverityMedium,
			reason: "subprocess.Popen() spawns shell processes"},
		{name: "os_system", pattern: `\bos\.system\s*\(`, severity: packs.SeverityMedium,
			reason:     "os.system() executes shell commands",
			suggestion: "Use subprocess with explicit arguments instead"},
		{name: "os_popen", pattern: `\bos\.popen\s*\(`, severity: packs.SeverityMedium,
			reason: "os.popen() executes shell commands"},
	},
	"javascript": {
		{name: "fs_rmsync", pattern: `\bfs\.rmSync\s*\(`, severity: packs.SeverityCritical,
			reason: "fs.rmSync() deletes files/directories"},
		{name: "fs_rmdirsync", pattern: `\bfs\.rmdirSync\s*\(`, severity: packs.SeverityHigh,
			reason: "fs.rmdirSync() deletes directories"},
		{name: "fs_unlinksync", pattern: `\bfs\.unlinkSync\s*\(`, severity: packs.SeverityHigh,
			reason: "fs.unlinkSync() deletes files"},
		{name: "fs_rm", pattern: `\bfs\.rm\s*\(`, severity: packs.SeverityHigh,
			reason: "fs.rm() deletes files/directories"},
		{name: "fs_rmdir", pattern: `\bfs\.rmdir\s*\(`, severity: packs.SeverityHigh,
			reason: "fs.rmdir() deletes directories"},
		{name: "fs_unlink", pattern: `\bfs\.unlink\s*\(`, severity: packs.SeverityHigh,
			reason: "fs.unlink() deletes files"},
		{name: "fspromises_rm", pattern: `\bfsPromises\.rm(?:dir)?\s*\(`, severity: packs.SeverityHigh,
			reason: "fsPromises.rm() deletes files/directories"},
		{name: "execsync", pattern: `\bchild_process\.execSync\s*\(`, severity: packs.SeverityHigh,
			reason:     "execSync() executes shell commands",
			suggestion: "Validate command arguments carefully"},
		{name: "require_execsync", pattern: `require\s*\(\s*['"]child_process['"]\s*\)\s*\.execSync\s*\(`, severity: packs.SeverityHigh,
			reason: "execSync() executes shell commands"},
		{name: "spawnsync", pattern: `\bchild_process\.spawnSync\s*\(`, severity: packs.SeverityMedium,
			reason: "spawnSync() executes shell commands"},
	},
	"ruby": {
		{name: "fileutils_rm_rf", pattern: `\bFileUtils\.rm_rf?\b`, severity: packs.SeverityCritical,
			reason: "FileUtils.rm_rf recursively deletes directories"},
		{name: "fileutils_remove_dir", pattern: `\bFileUtils\.remove_(?:dir|entry(?:_secure)?)\b`, severity: packs.SeverityHigh,
			reason: "FileUtils.remove_dir deletes directories"},
		{name: "file_delete", pattern: `\bFile\.(?:delete|unlink)\s*\(`, severity: packs.SeverityHigh,
			reason: "File.delete removes files"},
		{name: "dir_rmdir", pattern: `\bDir\.(?:rmdir|delete|unlink)\s*\(`, severity: packs.SeverityHigh,
			reason: "Dir.rmdir deletes directories"},
		{name: "kernel_system", pattern: `\bsystem\s*\(`, severity: packs.SeverityMedium,
			reason: "system() executes shell commands"},
		{name: "backtick_exec", pattern: "`[^`]+`", severity: packs.SeverityMedium,
			reason: "backticks execute shell commands"},
	},
	"perl": {
		{name: "unlink", pattern: `\bunlink\b`, severity: packs.SeverityHigh,
			reason: "unlink deletes files"},
		{name: "rmtree", pattern: `\b(?:rmtree|remove_tree)\s*\(`, severity: packs.SeverityCritical,
			reason: "File::Path rmtree recursively deletes directories"},
		{name: "rmdir", pattern: `\brmdir\b`, severity: packs.SeverityHigh,
			reason: "rmdir deletes directories"},
		{name: "system", pattern: `\bsystem\s*\(`, severity: packs.SeverityMedium,
			reason: "system() executes shell commands"},
	},
}

func init() {
	for _, table := range constructTables {
		for _, c := range table {
			c.regex = packs.NewCompiledRegex(c.pattern)
		}
	}
}

// matchConstructs runs the language's construct table over a body.
func matchConstructs(lang, body string) []Finding {
	table, ok := constructTables[lang]
	if !ok {
		return nil
	}
	var findings []Finding
	for _, c := range table {
		if span, ok := c.regex.FindSpan(body); ok {
			findings = append(findings, Finding{
				RuleID:     "heredoc." + lang + "." + c.name,
				Lang:       lang,
				Severity:   c.severity,
				Reason:     c.reason,
				Suggestion: c.suggestion,
				BodySpan:   packs.Span{Start: span.Start, End: span.End},
			})
		}
	}
	return findings
}

// SupportedLanguages lists the languages with construct tables, plus
// shell (handled via the evaluator route).
func SupportedLanguages() []string {
	return []string{"python", "javascript", "ruby", "perl", "shell"}
}
