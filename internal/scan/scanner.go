// SPDX-License-Identifier: MPL-2.0

// Package scan applies the evaluator to commands embedded in committed
// files: shell scripts, Dockerfiles, Makefiles, and GitHub Actions
// workflows.
//
// Extraction may run on a worker pool, but findings are always sorted
// into the stable (file, line, column, rule id) order after collection,
// so two consecutive runs over the same tree produce byte-identical
// output.
package scan

import (
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"dcg-cli/internal/guard"
)

type (
	// Finding is a deny verdict with its source location.
	Finding struct {
		File             string        `json:"file"`
		Line             int           `json:"line"`
		Column           int           `json:"column"`
		ExtractorID      string        `json:"extractor_id"`
		ExtractedCommand string        `json:"extracted_command"`
		Verdict          guard.Verdict `json:"verdict"`
	}

	// Options configure one scan.
	Options struct {
		// Paths are the roots (files or directories) to walk.
		Paths []string
		// Include and Exclude are doublestar globs over slash paths.
		Include []string
		Exclude []string
		// MaxFileSize skips larger files (0 = no limit).
		MaxFileSize int64
		// MaxFindings truncates the result (0 = no limit); truncation
		// is reported via Result.Truncated.
		MaxFindings int
		// Workers sets extraction parallelism; <= 1 scans serially.
		Workers int
	}

	// Result is a completed scan.
	Result struct {
		Findings  []Finding
		Files     int
		Truncated bool
	}

	// Scanner wires the extractors to an evaluation engine.
	Scanner struct {
		engine *guard.Engine
		fs     afero.Fs
		opts   Options

		keywords []string
		ungated  bool
	}
)

// New builds a scanner over the given filesystem (afero.NewOsFs in
// production, an in-memory fs in tests).
func New(engine *guard.Engine, fsys afero.Fs, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Scanner{
		engine:   engine,
		fs:       fsys,
		opts:     opts,
		keywords: engine.GatingKeywords(),
		ungated:  engine.HasUngatedPacks(),
	}
}

// Run walks the roots and evaluates every extracted command.
func (s *Scanner) Run() (*Result, error) {
	files, err := s.collectFiles()
	if err != nil {
		return nil, err
	}

	res := &Result{Files: len(files)}
	findings := make([][]Finding, len(files))

	if s.opts.Workers <= 1 {
		for i, path := range files {
			findings[i] = s.scanFile(path)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, s.opts.Workers)
		for i, path := range files {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, path string) {
				defer wg.Done()
				defer func() { <-sem }()
				findings[i] = s.scanFile(path)
			}(i, path)
		}
		wg.Wait()
	}

	for _, perFile := range findings {
		res.Findings = append(res.Findings, perFile...)
	}
	sortFindings(res.Findings)

	if s.opts.MaxFindings > 0 && len(res.Findings) > s.opts.MaxFindings {
		res.Findings = res.Findings[:s.opts.MaxFindings]
		res.Truncated = true
	}
	return res, nil
}

// sortFindings fixes the stable output order: file path ascending, then
// line, then column, then rule id.
func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Verdict.RuleID < b.Verdict.RuleID
	})
}

func (s *Scanner) collectFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] && s.pathIncluded(path) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range s.opts.Paths {
		info, err := s.fs.Stat(root)
		if err != nil {
			log.Warn("skipping unreadable path", "path", root, "err", err)
			continue
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = afero.Walk(s.fs, root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				log.Warn("skipping unreadable entry", "path", path, "err", err)
				return nil
			}
			if info.IsDir() {
				if info.Name() == ".git" {
					return fs.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) pathIncluded(path string) bool {
	slash := strings.ReplaceAll(path, "\\", "/")
	for _, glob := range s.opts.Exclude {
		if ok, _ := doublestar.Match(glob, slash); ok {
			return false
		}
	}
	if len(s.opts.Include) == 0 {
		return true
	}
	for _, glob := range s.opts.Include {
		if ok, _ := doublestar.Match(glob, slash); ok {
			return true
		}
	}
	return false
}

// scanFile extracts and evaluates one file. Extractor failures on a
// single file never abort the scan.
func (s *Scanner) scanFile(path string) []Finding {
	info, err := s.fs.Stat(path)
	if err != nil {
		return nil
	}
	if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
		log.Debug("skipping oversized file", "path", path, "size", info.Size())
		return nil
	}
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		log.Warn("skipping unreadable file", "path", path, "err", err)
		return nil
	}

	// Keyword pre-filter: without any enabled pack keyword in the file,
	// no extracted command can produce a finding.
	if !s.ungated && !s.containsKeyword(content) {
		return nil
	}

	var findings []Finding
	for _, ex := range Extractors() {
		if !ex.Matches(path, content) {
			continue
		}
		for _, cmd := range ex.Extract(content) {
			verdict := s.engine.Evaluate(cmd.Command, guard.Options{})
			if !verdict.Denied() {
				continue
			}
			findings = append(findings, Finding{
				File:             path,
				Line:             cmd.Line,
				Column:           cmd.Col,
				ExtractorID:      ex.ID(),
				ExtractedCommand: cmd.Command,
				Verdict:          verdict,
			})
		}
	}
	return findings
}

func (s *Scanner) containsKeyword(content []byte) bool {
	lower := strings.ToLower(string(content))
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
