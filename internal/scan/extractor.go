// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"path/filepath"
	"strings"
)

type (
	// Extracted is one command pulled out of a file.
	Extracted struct {
		Command string
		// Line and Col locate the command's initial token, 1-based.
		// Multi-line continuations report the first line.
		Line int
		Col  int
	}

	// Extractor pulls executable commands out of one kind of file.
	// Extractors never execute, interpolate, or expand anything:
	// $(VAR), ${VAR}, and ${{ expr }} pass through literally.
	Extractor interface {
		// ID is the stable extractor identity reported on findings.
		ID() string
		// Matches decides by path (and optionally content, for
		// shebangs) whether this extractor applies.
		Matches(path string, content []byte) bool
		// Extract yields the commands in the file.
		Extract(content []byte) []Extracted
	}
)

// Extractors returns the built-in extractor set in a fixed order.
func Extractors() []Extractor {
	return []Extractor{
		shellExtractor{},
		dockerfileRunExtractor{},
		dockerfileRunExecExtractor{},
		makefileExtractor{},
		githubActionsExtractor{},
	}
}

func isDockerfile(path string) bool {
	base := filepath.Base(path)
	return base == "Dockerfile" ||
		strings.HasPrefix(base, "Dockerfile.") ||
		strings.HasSuffix(base, ".dockerfile")
}

func isMakefile(path string) bool {
	switch filepath.Base(path) {
	case "Makefile", "makefile", "MAKEFILE", "GNUmakefile":
		return true
	}
	return false
}

func isWorkflow(path string) bool {
	dir := filepath.ToSlash(filepath.Dir(path))
	if !strings.HasSuffix(dir, ".github/workflows") {
		return false
	}
	ext := filepath.Ext(path)
	return ext == ".yml" || ext == ".yaml"
}
