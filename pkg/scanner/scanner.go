// Package scanner walks a repository applying ignore semantics and
// collects the manifest inventory and file-extension counts the analysis
// pipeline's Scan phase needs. Adapted from the teacher's
// pkg/autodiscovery (DiscoverGoProjects / DiscoverPythonProjects /
// DiscoverJavaProjects), generalized from "discover projects of N known
// languages" to "walk once, record everything downstream phases need".
package scanner

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultIgnoredDirs mirrors SPEC_FULL §4.3's conventional exclusion list.
var DefaultIgnoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"__pycache__":  true,
	"vendor":       true,
	".gradle":      true,
	".m2":          true,
	".turbo":       true,
	".nx":          true,
	".next":        true,
	"bin":          true,
}

// Options configures a scan.
type Options struct {
	RootDir       string
	MaxFiles      int // 0 means unlimited
	ManifestNames map[string]bool
}

// Result is the Scanner's output (SPEC_FULL §4.3): manifest paths, a
// per-language extension histogram, and an aggregate file list.
type Result struct {
	ManifestPaths  []string
	ExtensionCount map[string]int
	Files          []string
	RootEntries    []string // top-level filenames, for orchestrator manifest detection
	Truncated      bool
}

// Scan walks opts.RootDir once, respecting ignore semantics.
func Scan(opts Options) (*Result, error) {
	res := &Result{ExtensionCount: make(map[string]int)}

	ignore, err := loadGitignore(opts.RootDir)
	if err != nil {
		slog.Warn("scanner: failed to read .gitignore", "error", err)
	}

	rootEntries, _ := os.ReadDir(opts.RootDir)
	for _, e := range rootEntries {
		res.RootEntries = append(res.RootEntries, e.Name())
	}

	count := 0
	err = filepath.WalkDir(opts.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries rather than aborting the whole scan
		}
		rel, relErr := filepath.Rel(opts.RootDir, path)
		if relErr != nil {
			rel = path
		}
		if rel == "." {
			return nil
		}
		base := filepath.Base(path)

		if d.IsDir() {
			if DefaultIgnoredDirs[base] || ignore.matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore.matches(rel, false) {
			return nil
		}

		if opts.ManifestNames[base] {
			res.ManifestPaths = append(res.ManifestPaths, rel)
		}
		if ext := filepath.Ext(base); ext != "" {
			res.ExtensionCount[ext]++
		}
		res.Files = append(res.Files, rel)

		count++
		if opts.MaxFiles > 0 && count >= opts.MaxFiles {
			res.Truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	sort.Strings(res.ManifestPaths)
	sort.Strings(res.Files)
	return res, nil
}

// gitignoreSet is a minimal .gitignore matcher built from the repository
// root's .gitignore only: exact path and glob-on-basename; gitignore
// negation and double-star semantics are not supported.
type gitignoreSet struct {
	patterns []string
}

func loadGitignore(rootDir string) (*gitignoreSet, error) {
	f, err := os.Open(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return &gitignoreSet{}, nil
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimPrefix(strings.TrimSuffix(line, "/"), "/"))
	}
	return &gitignoreSet{patterns: patterns}, sc.Err()
}

func (g *gitignoreSet) matches(relPath string, isDir bool) bool {
	if g == nil {
		return false
	}
	base := filepath.Base(relPath)
	for _, p := range g.patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, relPath); ok {
			return true
		}
	}
	return false
}
