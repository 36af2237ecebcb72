// SPDX-License-Identifier: MPL-2.0

package heredoc

import "strings"

// interpreterLang maps interpreter binary names to scan languages.
var interpreterLang = map[string]string{
	"bash": "shell", "sh": "shell", "zsh": "shell", "dash": "shell", "ksh": "shell",
	"python": "python", "python2": "python", "python3": "python",
	"node": "javascript", "nodejs": "javascript",
	"perl": "perl", "ruby": "ruby",
}

// InferLanguage picks the scan language for a body. Priority: the
// interpreter binary on the command head, then the shebang on the first
// non-empty line, then content heuristics.
func InferLanguage(interpreter, body string) string {
	if lang, ok := interpreterLang[baseName(interpreter)]; ok {
		return lang
	}
	if lang := shebangLang(body); lang != "" {
		return lang
	}
	return contentLang(body)
}

func baseName(cmd string) string {
	if i := strings.LastIndexByte(cmd, '/'); i >= 0 {
		cmd = cmd[i+1:]
	}
	return cmd
}

func shebangLang(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#!") {
			return ""
		}
		shebang := line[2:]
		for name, lang := range interpreterLang {
			if strings.Contains(shebang, name) {
				return lang
			}
		}
		return ""
	}
	return ""
}

// contentLang applies cheap heuristics: import statements, require
// calls, use strict pragmas.
func contentLang(body string) string {
	switch {
	case strings.Contains(body, "import ") && (strings.Contains(body, "shutil") ||
		strings.Contains(body, "os.") || strings.Contains(body, "subprocess") ||
		strings.Contains(body, "pathlib")):
		return "python"
	case strings.Contains(body, "require(") || strings.Contains(body, "require ('") ||
		strings.Contains(body, "'use strict'") || strings.Contains(body, `"use strict"`):
		return "javascript"
	case strings.Contains(body, "use strict;") || strings.Contains(body, "use warnings;"):
		return "perl"
	case strings.Contains(body, "FileUtils.") || strings.Contains(body, "require '"):
		return "ruby"
	case strings.Contains(body, "#!/bin/") || strings.HasPrefix(strings.TrimSpace(body), "set -"):
		return "shell"
	default:
		return ""
	}
}
