// SPDX-License-Identifier: MPL-2.0

package packs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dcg-cli/internal/issue"
)

// CurrentSchemaVersion is the external pack schema this build accepts.
const CurrentSchemaVersion = 1

type (
	// externalPackFile mirrors the YAML schema (v1) for external packs.
	externalPackFile struct {
		SchemaVersion       int                   `yaml:"schema_version"`
		ID                  string                `yaml:"id"`
		Name                string                `yaml:"name"`
		Version             string                `yaml:"version"`
		Description         string                `yaml:"description"`
		Keywords            []string              `yaml:"keywords"`
		DestructivePatterns []externalDestructive `yaml:"destructive_patterns"`
		SafePatterns        []externalSafe        `yaml:"safe_patterns"`
	}

	externalDestructive struct {
		Name        string `yaml:"name"`
		Pattern     string `yaml:"pattern"`
		Severity    string `yaml:"severity"`
		Description string `yaml:"description"`
		Explanation string `yaml:"explanation"`
		Suggestion  string `yaml:"suggestion"`
	}

	externalSafe struct {
		Name        string `yaml:"name"`
		Pattern     string `yaml:"pattern"`
		Description string `yaml:"description"`
	}
)

// LoadExternalPack parses and validates a single external pack file.
// Unknown schema versions are rejected with a versioned error; shape
// problems inside a known version are returned as validation errors.
// No pattern is compiled here.
func LoadExternalPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.New(issue.CodeExternalPackRejected, issue.CategoryExternal, "read external pack").
			WithResource(path).Wrap(err)
	}
	return ParseExternalPack(data, path)
}

// ParseExternalPack validates external pack YAML content.
func ParseExternalPack(data []byte, path string) (*Pack, error) {
	var file externalPackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, issue.New(issue.CodeExternalPackRejected, issue.CategoryExternal, "parse external pack").
			WithResource(path).Wrap(err)
	}
	if file.SchemaVersion == 0 {
		file.SchemaVersion = CurrentSchemaVersion
	}
	if file.SchemaVersion != CurrentSchemaVersion {
		return nil, issue.New(issue.CodeUnknownSchemaVersion, issue.CategoryExternal, "load external pack").
			WithResource(path).
			Wrap(fmt.Errorf("unsupported schema_version %d (this build supports %d)", file.SchemaVersion, CurrentSchemaVersion))
	}
	if err := validateExternal(&file); err != nil {
		return nil, issue.New(issue.CodeExternalPackRejected, issue.CategoryExternal, "validate external pack").
			WithResource(path).Wrap(err)
	}

	p := &Pack{
		ID:          file.ID,
		Name:        file.Name,
		Version:     file.Version,
		Description: file.Description,
		Keywords:    file.Keywords,
		External:    true,
	}
	for _, sp := range file.SafePatterns {
		p.SafePatterns = append(p.SafePatterns, SafePattern{Name: sp.Name, Pattern: sp.Pattern})
	}
	for _, dp := range file.DestructivePatterns {
		sev := Severity(dp.Severity)
		if dp.Severity == "" {
			sev = SeverityHigh
		}
		p.DestructivePatterns = append(p.DestructivePatterns, DestructivePattern{
			Name:        dp.Name,
			Pattern:     dp.Pattern,
			Severity:    sev,
			Reason:      dp.Description,
			Explanation: dp.Explanation,
			Suggestion:  dp.Suggestion,
		})
	}
	return p, nil
}

func validateExternal(file *externalPackFile) error {
	if file.ID == "" || file.Name == "" || file.Version == "" {
		return fmt.Errorf("id, name, and version are required")
	}
	if err := ValidateID(file.ID); err != nil {
		return err
	}
	if !versionPattern.MatchString(file.Version) {
		return fmt.Errorf("version %q is not a semantic version", file.Version)
	}
	seen := make(map[string]bool)
	for _, dp := range file.DestructivePatterns {
		if dp.Name == "" || dp.Pattern == "" {
			return fmt.Errorf("destructive pattern entries require name and pattern")
		}
		if seen[dp.Name] {
			return fmt.Errorf("duplicate pattern name %q", dp.Name)
		}
		seen[dp.Name] = true
		if dp.Severity != "" && !Severity(dp.Severity).Valid() {
			return fmt.Errorf("pattern %q: unknown severity %q", dp.Name, dp.Severity)
		}
	}
	for _, sp := range file.SafePatterns {
		if sp.Name == "" || sp.Pattern == "" {
			return fmt.Errorf("safe pattern entries require name and pattern")
		}
		if seen[sp.Name] {
			return fmt.Errorf("duplicate pattern name %q", sp.Name)
		}
		seen[sp.Name] = true
	}
	return nil
}
