// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// githubActionsExtractor yields the run: value of each workflow step,
// in both scalar block forms (| and >). env, with, and name values are
// never examined; ${{ expr }} passes through literally.
type githubActionsExtractor struct{}

func (githubActionsExtractor) ID() string { return "github_actions.steps.run" }

func (githubActionsExtractor) Matches(path string, _ []byte) bool {
	return isWorkflow(path)
}

func (githubActionsExtractor) Extract(content []byte) []Extracted {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil
	}
	var out []Extracted
	walkSteps(&root, &out)
	return out
}

// walkSteps descends the YAML tree looking for "steps" sequences and
// collects each step's "run" scalar.
func walkSteps(node *yaml.Node, out *[]Extracted) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			walkSteps(child, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Value == "steps" && val.Kind == yaml.SequenceNode {
				for _, step := range val.Content {
					collectRun(step, out)
				}
				continue
			}
			walkSteps(val, out)
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			walkSteps(child, out)
		}
	}
}

func collectRun(step *yaml.Node, out *[]Extracted) {
	if step.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(step.Content); i += 2 {
		key, val := step.Content[i], step.Content[i+1]
		if key.Value != "run" || val.Kind != yaml.ScalarNode {
			continue
		}
		// Multi-line run blocks yield one extracted command per line so
		// findings point at the offending line, not the block.
		lines := strings.Split(val.Value, "\n")
		if len(lines) == 1 {
			cmd := strings.TrimSpace(val.Value)
			if cmd != "" {
				*out = append(*out, Extracted{Command: cmd, Line: val.Line, Col: val.Column})
			}
			continue
		}
		// Block scalars (|, >) start on the line after the indicator.
		base := val.Line
		if val.Style == yaml.LiteralStyle || val.Style == yaml.FoldedStyle {
			base = val.Line + 1
		}
		for n, ln := range lines {
			cmd := strings.TrimSpace(ln)
			if cmd == "" || strings.HasPrefix(cmd, "#") {
				continue
			}
			*out = append(*out, Extracted{Command: cmd, Line: base + n, Col: val.Column})
		}
	}
}
