// SPDX-License-Identifier: MPL-2.0

// Package config merges the layered dcg configuration using Viper.
//
// Precedence, lowest to highest: system file (/etc/dcg/config.toml) →
// user file (~/.config/dcg/config.toml) → project file (.dcg.toml at
// the repository root) → environment variables → CLI flags. Flags are
// applied by the CLI layer on top of the Config this package returns.
//
// Unknown keys are accepted with a warning so configs written for newer
// builds keep loading.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"dcg-cli/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "dcg"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ProjectFileName is the per-project config file.
	ProjectFileName = ".dcg.toml"
	// EnvPrefix prefixes environment overrides (DCG_*).
	EnvPrefix = "DCG"
)

// EnvConfigPath points at an explicit config file, used exclusively
// when set.
const EnvConfigPath = "DCG_CONFIG"

// knownKeys is the accepted schema; anything else warns.
var knownKeys = map[string]bool{
	"packs.enabled": true, "packs.disabled": true, "packs.custom_paths": true,
	"heredoc.enabled": true, "heredoc.timeout_ms": true,
	"heredoc.max_body_bytes": true, "heredoc.max_body_lines": true,
	"heredoc.max_heredocs": true, "heredoc.languages": true,
	"heredoc.fallback_on_parse_error": true, "heredoc.fallback_on_timeout": true,
	"scan.fail_on": true, "scan.format": true, "scan.redact": true,
	"scan.truncate": true, "scan.max_file_size": true, "scan.max_findings": true,
	"scan.paths.include": true, "scan.paths.exclude": true,
	"ui.color": true, "ui.verbose": true, "ui.robot": true,
	"bypass": true,
}

// ConfigDir returns the dcg configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, Linux and others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// SystemConfigPath is the system layer file.
func SystemConfigPath() string {
	return filepath.Join("/etc", AppName, ConfigFileName+".toml")
}

// ProjectRoot walks upward from dir looking for a .git entry or a
// .dcg.toml file; "" when neither is found.
func ProjectRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, ProjectFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load resolves the effective configuration for an invocation rooted at
// cwd. A missing file at any layer is fine; a malformed file is a
// configuration error (exit code 2 in the CLI).
func Load(cwd string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	// Explicit config path wins over the layer files.
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return nil, issue.New(issue.CodeConfigMissing, issue.CategoryConfig, "load configuration").
				WithResource(explicit).
				WithSuggestion("Verify the DCG_CONFIG path").Wrap(err)
		}
	} else {
		for _, path := range layerPaths(cwd) {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return nil, issue.New(issue.CodeConfigParse, issue.CategoryConfig, "parse configuration").
					WithResource(path).
					WithSuggestion("Check the TOML syntax").Wrap(err)
			}
			warnUnknownKeys(v, path)
		}
	}

	bindEnv(v)

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.New(issue.CodeConfigParse, issue.CategoryConfig, "decode configuration").Wrap(err)
	}
	applyEnvLists(cfg)
	return cfg, nil
}

// layerPaths returns the layer files lowest-precedence first.
func layerPaths(cwd string) []string {
	paths := []string{SystemConfigPath()}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ConfigFileName+".toml"))
	}
	if root := ProjectRoot(cwd); root != "" {
		paths = append(paths, filepath.Join(root, ProjectFileName))
	}
	return paths
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("packs.enabled", d.Packs.Enabled)
	v.SetDefault("packs.disabled", d.Packs.Disabled)
	v.SetDefault("packs.custom_paths", d.Packs.CustomPaths)
	v.SetDefault("heredoc.enabled", d.Heredoc.Enabled)
	v.SetDefault("heredoc.timeout_ms", d.Heredoc.TimeoutMs)
	v.SetDefault("heredoc.max_body_bytes", d.Heredoc.MaxBodyBytes)
	v.SetDefault("heredoc.max_body_lines", d.Heredoc.MaxBodyLines)
	v.SetDefault("heredoc.max_heredocs", d.Heredoc.MaxHeredocs)
	v.SetDefault("heredoc.languages", d.Heredoc.Languages)
	v.SetDefault("heredoc.fallback_on_parse_error", d.Heredoc.FallbackOnParseError)
	v.SetDefault("heredoc.fallback_on_timeout", d.Heredoc.FallbackOnTimeout)
	v.SetDefault("scan.fail_on", d.Scan.FailOn)
	v.SetDefault("scan.format", d.Scan.Format)
	v.SetDefault("scan.redact", d.Scan.Redact)
	v.SetDefault("scan.truncate", d.Scan.Truncate)
	v.SetDefault("scan.max_file_size", d.Scan.MaxFileSize)
	v.SetDefault("scan.max_findings", d.Scan.MaxFindings)
	v.SetDefault("scan.paths.include", d.Scan.Paths.Include)
	v.SetDefault("scan.paths.exclude", d.Scan.Paths.Exclude)
	v.SetDefault("ui.color", d.UI.Color)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.robot", d.UI.Robot)
	v.SetDefault("bypass", d.Bypass)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("ui.verbose", "DCG_VERBOSE")
	_ = v.BindEnv("ui.color", "DCG_COLOR")
	_ = v.BindEnv("ui.robot", "DCG_ROBOT")
	_ = v.BindEnv("bypass", "DCG_BYPASS")
}

// applyEnvLists merges the comma-separated DCG_PACKS / DCG_DISABLE
// overrides.
func applyEnvLists(cfg *Config) {
	if packs := os.Getenv("DCG_PACKS"); packs != "" {
		cfg.Packs.Enabled = splitList(packs)
	}
	if disable := os.Getenv("DCG_DISABLE"); disable != "" {
		cfg.Packs.Disabled = splitList(disable)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func warnUnknownKeys(v *viper.Viper, path string) {
	for _, key := range v.AllKeys() {
		if !knownKeys[key] {
			log.Warn("unknown configuration key", "key", key, "file", path)
		}
	}
}
