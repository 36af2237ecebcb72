// SPDX-License-Identifier: MPL-2.0

package scan

import "strings"

// makefileExtractor yields TAB-prefixed recipe lines. Variable
// assignments and rule headers are never examined; the leading @, -,
// and + recipe modifiers are stripped.
type makefileExtractor struct{}

func (makefileExtractor) ID() string { return "makefile.recipe" }

func (makefileExtractor) Matches(path string, _ []byte) bool {
	return isMakefile(path)
}

func (makefileExtractor) Extract(content []byte) []Extracted {
	var out []Extracted
	lines := strings.Split(string(content), "\n")
	i := 0
	for i < len(lines) {
		lineNo := i + 1
		line := lines[i]
		i++

		if !strings.HasPrefix(line, "\t") {
			continue
		}
		body := line[1:]
		for strings.HasSuffix(strings.TrimRight(body, " \t"), "\\") && i < len(lines) {
			next := lines[i]
			next = strings.TrimPrefix(next, "\t")
			body = strings.TrimRight(strings.TrimSuffix(strings.TrimRight(body, " \t"), "\\"), " \t") + " " + strings.TrimSpace(next)
			i++
		}

		cmd := strings.TrimSpace(body)
		col := len(line) - len(strings.TrimLeft(line, "\t ")) + 1
		for len(cmd) > 0 && (cmd[0] == '@' || cmd[0] == '-' || cmd[0] == '+') {
			cmd = strings.TrimSpace(cmd[1:])
			col++
		}
		if cmd == "" || strings.HasPrefix(cmd, "#") {
			continue
		}
		out = append(out, Extracted{Command: cmd, Line: lineNo, Col: col})
	}
	return out
}
