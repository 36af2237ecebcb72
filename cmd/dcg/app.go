// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"dcg-cli/internal/allowlist"
	"dcg-cli/internal/config"
	"dcg-cli/internal/guard"
	"dcg-cli/internal/heredoc"
	"dcg-cli/internal/ledger"
	"dcg-cli/internal/packs"
	"dcg-cli/internal/packs/builtin"
)

// app is the composition root for the CLI layer: it resolves the
// configuration, builds the pack registry, and wires the evaluation
// engine that command handlers delegate to.
type app struct {
	Config   *config.Config
	Engine   *guard.Engine
	Registry *packs.Registry
	Ledger   *ledger.Ledger
	Cwd      string
	Root     string
}

// newApp resolves everything for one invocation.
func newApp() (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.UI.Verbose = true
	}
	if robot {
		cfg.UI.Robot = true
	}

	registry := builtin.NewRegistry()
	loadExternalPacks(registry, cfg, cwd)

	root := config.ProjectRoot(cwd)
	led := ledger.Open("")

	engine := guard.New(guard.Config{
		Registry:       registry,
		Enabled:        cfg.Packs.Enabled,
		Disabled:       cfg.Packs.Disabled,
		Allowlist:      allowlist.Load(root, cwd),
		Ledger:         led,
		HeredocEnabled: cfg.Heredoc.Enabled,
		HeredocLimits: heredoc.Limits{
			MaxHeredocs:          cfg.Heredoc.MaxHeredocs,
			MaxBodyBytes:         cfg.Heredoc.MaxBodyBytes,
			MaxBodyLines:         cfg.Heredoc.MaxBodyLines,
			Timeout:              cfg.Heredoc.HeredocTimeout(),
			Languages:            cfg.Heredoc.Languages,
			FallbackOnParseError: cfg.Heredoc.FallbackOnParseError,
			FallbackOnTimeout:    cfg.Heredoc.FallbackOnTimeout,
		},
		Cwd: cwd,
	})

	return &app{Config: cfg, Engine: engine, Registry: registry, Ledger: led, Cwd: cwd, Root: root}, nil
}

// loadExternalPacks registers packs from the well-known directories and
// the configured custom path globs. A bad pack file is warned about and
// skipped; it can never break evaluation.
func loadExternalPacks(registry *packs.Registry, cfg *config.Config, cwd string) {
	var paths []string
	if dir, err := config.ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "packs", "*.yaml"))
	}
	if root := config.ProjectRoot(cwd); root != "" {
		paths = append(paths, filepath.Join(root, ".dcg", "packs", "*.yaml"))
	}
	paths = append(paths, "/etc/dcg/packs/*.yaml")
	paths = append(paths, cfg.Packs.CustomPaths...)

	for _, glob := range paths {
		matches, err := doublestar.FilepathGlob(glob)
		if err != nil {
			log.Warn("bad pack glob", "glob", glob, "err", err)
			continue
		}
		for _, path := range matches {
			pack, err := packs.LoadExternalPack(path)
			if err != nil {
				log.Warn("skipping external pack", "path", path, "err", err)
				continue
			}
			if err := registry.Register(pack); err != nil {
				log.Warn("skipping external pack", "path", path, "err", err)
			}
		}
	}
}
