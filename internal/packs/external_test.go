// SPDX-License-Identifier: MPL-2.0

package packs

import (
	"errors"
	"strings"
	"testing"

	"dcg-cli/internal/issue"
)

const validPackYAML = `
schema_version: 1
id: mycompany.deploy
name: MyCompany Deployment Policies
version: 1.0.0
description: Prevents accidental production deployments

keywords:
  - deploy

destructive_patterns:
  - name: prod-direct
    pattern: deploy\s+--env\s*=?\s*prod
    severity: critical
    description: Direct production deployment

safe_patterns:
  - name: staging-deploy
    pattern: deploy\s+--env\s*=?\s*(staging|dev)
`

func TestParseExternalPack(t *testing.T) {
	p, err := ParseExternalPack([]byte(validPackYAML), "pack.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "mycompany.deploy" || !p.External {
		t.Errorf("pack = %+v", p)
	}
	if len(p.DestructivePatterns) != 1 || len(p.SafePatterns) != 1 {
		t.Errorf("patterns not loaded: %+v", p)
	}
	if p.DestructivePatterns[0].Severity != SeverityCritical {
		t.Errorf("severity = %q", p.DestructivePatterns[0].Severity)
	}
}

func TestParseExternalPackUnknownSchemaVersion(t *testing.T) {
	yaml := strings.Replace(validPackYAML, "schema_version: 1", "schema_version: 99", 1)
	_, err := ParseExternalPack([]byte(yaml), "pack.yaml")
	if err == nil {
		t.Fatal("unknown schema version must be rejected")
	}
	if issue.CodeOf(err) != issue.CodeUnknownSchemaVersion {
		t.Errorf("error code = %q", issue.CodeOf(err))
	}
}

func TestParseExternalPackValidation(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(string) string
	}{
		{"missing id", func(s string) string { return strings.Replace(s, "id: mycompany.deploy", "", 1) }},
		{"reserved namespace", func(s string) string {
			return strings.Replace(s, "id: mycompany.deploy", "id: core.extra", 1)
		}},
		{"bad version", func(s string) string { return strings.Replace(s, "version: 1.0.0", "version: one", 1) }},
		{"bad severity", func(s string) string { return strings.Replace(s, "severity: critical", "severity: fatal", 1) }},
		{"duplicate names", func(s string) string {
			return strings.Replace(s, "name: staging-deploy", "name: prod-direct", 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExternalPack([]byte(tt.mangle(validPackYAML)), "pack.yaml")
			if err == nil {
				t.Error("expected a validation error")
			}
			var ie *issue.Error
			if !errors.As(err, &ie) {
				t.Errorf("error is not an issue.Error: %v", err)
			}
		})
	}
}

func TestParseExternalPackDefaultSeverity(t *testing.T) {
	yaml := strings.Replace(validPackYAML, "    severity: critical\n", "", 1)
	p, err := ParseExternalPack([]byte(yaml), "pack.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if p.DestructivePatterns[0].Severity != SeverityHigh {
		t.Errorf("default severity = %q, want high", p.DestructivePatterns[0].Severity)
	}
}
