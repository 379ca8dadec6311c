// Package sources turns command-line arguments into input paths and reads them.
package sources

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/cssaudit/internal/collections"
	"bennypowers.dev/cssaudit/internal/log"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude selects the files kept when walking a directory argument
var DefaultInclude = []string{"**/*.css"}

// skipDirs are never descended into when walking a directory argument
var skipDirs = collections.NewSet("node_modules")

// Resolver expands arguments into input paths
type Resolver struct {
	// Include patterns select files inside directory arguments. Empty means DefaultInclude.
	Include []string
	// Exclude patterns drop files found by walking directories or expanding globs
	Exclude []string
}

// Resolve expands each argument in order. A plain file is kept as given,
// even when it doesn't exist, so that reading it reports the failure. A
// directory is walked for files matching Include and not Exclude. Anything
// containing glob syntax is expanded with doublestar and must match at least
// one file. The result has no duplicates and keeps first-seen order.
func (r *Resolver) Resolve(args []string) ([]string, error) {
	seen := collections.NewSet[string]()
	var paths []string
	add := func(path string) {
		path = filepath.Clean(path)
		if seen.Has(path) {
			return
		}
		seen.Add(path)
		paths = append(paths, path)
	}

	for _, arg := range args {
		if isGlob(arg) {
			matches, err := r.glob(arg)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			add(arg)
			continue
		}

		files, err := r.walk(arg)
		if err != nil {
			return nil, err
		}
		log.Debug("%s: found %d file(s)", arg, len(files))
		for _, f := range files {
			add(f)
		}
	}
	return paths, nil
}

func (r *Resolver) include() []string {
	if len(r.Include) == 0 {
		return DefaultInclude
	}
	return r.Include
}

func (r *Resolver) glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(filepath.ToSlash(pattern)) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}

	files := slices.DeleteFunc(matches, func(m string) bool {
		return matchesAnyPattern(m, r.Exclude)
	})
	if len(files) == 0 {
		return nil, NewNoMatchError(pattern)
	}
	return files, nil
}

// walk collects the files under root matching Include and not Exclude,
// in lexical order
func (r *Resolver) walk(root string) ([]string, error) {
	include := r.include()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if matchesAnyPattern(relPath, include) && !matchesAnyPattern(relPath, r.Exclude) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// shouldSkipDirectory reports whether a directory is hidden or a dependency directory
func shouldSkipDirectory(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return skipDirs.Has(name)
}

// matchesAnyPattern checks if a path matches any of the given glob patterns
func matchesAnyPattern(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}
