// SPDX-License-Identifier: MPL-2.0

package config

import "time"

type (
	// Config is the effective merged policy.
	Config struct {
		Packs   PacksConfig   `mapstructure:"packs"`
		Heredoc HeredocConfig `mapstructure:"heredoc"`
		Scan    ScanConfig    `mapstructure:"scan"`
		UI      UIConfig      `mapstructure:"ui"`

		// Bypass short-circuits the hook protocol only; scan mode
		// ignores it. Settable via DCG_BYPASS.
		Bypass bool `mapstructure:"bypass"`
	}

	// PacksConfig selects detection packs.
	PacksConfig struct {
		// Enabled and Disabled hold pack ids or category prefixes.
		Enabled  []string `mapstructure:"enabled"`
		Disabled []string `mapstructure:"disabled"`
		// CustomPaths are globs resolving to external pack YAML files.
		CustomPaths []string `mapstructure:"custom_paths"`
	}

	// HeredocConfig tunes the tiered scanner.
	HeredocConfig struct {
		Enabled              bool     `mapstructure:"enabled"`
		TimeoutMs            int      `mapstructure:"timeout_ms"`
		MaxBodyBytes         int      `mapstructure:"max_body_bytes"`
		MaxBodyLines         int      `mapstructure:"max_body_lines"`
		MaxHeredocs          int      `mapstructure:"max_heredocs"`
		Languages            []string `mapstructure:"languages"`
		FallbackOnParseError bool     `mapstructure:"fallback_on_parse_error"`
		FallbackOnTimeout    bool     `mapstructure:"fallback_on_timeout"`
	}

	// ScanConfig tunes scan mode.
	ScanConfig struct {
		// FailOn is the exit-code threshold: error, warning, or none.
		FailOn string `mapstructure:"fail_on"`
		// Format is pretty, json, markdown, or sarif.
		Format string `mapstructure:"format"`
		// Redact is none, quoted, or aggressive.
		Redact string `mapstructure:"redact"`
		// Truncate caps reported command length (0 = no cap).
		Truncate    int       `mapstructure:"truncate"`
		MaxFileSize int64     `mapstructure:"max_file_size"`
		MaxFindings int       `mapstructure:"max_findings"`
		Paths       ScanPaths `mapstructure:"paths"`
	}

	// ScanPaths are doublestar include/exclude globs.
	ScanPaths struct {
		Include []string `mapstructure:"include"`
		Exclude []string `mapstructure:"exclude"`
	}

	// UIConfig controls presentation.
	UIConfig struct {
		// Color is auto, always, or never.
		Color   string `mapstructure:"color"`
		Verbose bool   `mapstructure:"verbose"`
		// Robot forces machine output and a silent stderr.
		Robot bool `mapstructure:"robot"`
	}
)

// DefaultConfig returns the built-in policy.
func DefaultConfig() *Config {
	return &Config{
		Packs: PacksConfig{
			Enabled: []string{"core"},
		},
		Heredoc: HeredocConfig{
			Enabled:              true,
			TimeoutMs:            50,
			MaxBodyBytes:         1 << 20,
			MaxBodyLines:         10000,
			MaxHeredocs:          10,
			FallbackOnParseError: true,
			FallbackOnTimeout:    true,
		},
		Scan: ScanConfig{
			FailOn:      "error",
			Format:      "pretty",
			Redact:      "quoted",
			MaxFileSize: 4 << 20,
			MaxFindings: 1000,
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// HeredocTimeout returns the configured extraction budget.
func (c *HeredocConfig) HeredocTimeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
