// Package acquire obtains source trees for analysis: local directories,
// shallow git clones, and uploaded archives. The output is always the same
// shape, a bounded list of SourceFiles with detected languages.
package acquire

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"cortex/internal/types"
)

const (
	// DefaultMaxFileSize skips generated bundles and vendored blobs.
	DefaultMaxFileSize = 1 << 20
	// DefaultMaxFiles bounds memory for very large repositories.
	DefaultMaxFiles = 500
)

// excludedDirs are never descended into regardless of gitignore rules.
var excludedDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"dist":          true,
	"build":         true,
	".next":         true,
	".cache":        true,
	"coverage":      true,
	".pytest_cache": true,
}

// ReadOptions tune a tree read. Zero values mean the defaults.
type ReadOptions struct {
	// ScopeFilters restricts the read to paths matching any glob pattern.
	ScopeFilters []string
	MaxFiles     int
	MaxFileSize  int64
}

// ReadTree walks root and returns every recognized source file, honoring
// the repository's top-level .gitignore. Paths are slash-separated and
// relative to root; walk order makes the result deterministic.
func ReadTree(root string, opts ReadOptions) ([]types.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("acquire: read tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("acquire: %s is not a directory", root)
	}

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var matcher *ignore.GitIgnore
	if m, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = m
	}

	var files []types.SourceFile
	skipped := 0
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return fs.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if len(files) >= maxFiles {
			return fs.SkipAll
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if !matchesScope(rel, opts.ScopeFilters) {
			return nil
		}

		lang := DetectLanguage(rel)
		if lang == "unknown" {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}
		content, err := os.ReadFile(p)
		if err != nil {
			skipped++
			return nil
		}

		files = append(files, types.SourceFile{
			Path:     rel,
			Language: lang,
			Content:  string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("acquire: walk %s: %w", root, err)
	}
	if skipped > 0 {
		log.Printf("acquire: skipped %d unreadable entries under %s", skipped, root)
	}
	return files, nil
}

// matchesScope applies glob patterns against the relative path and its base
// name. No patterns means everything is in scope.
func matchesScope(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pat := range patterns {
		if ok, err := path.Match(pat, rel); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pat, path.Base(rel)); err == nil && ok {
			return true
		}
		// Directory-prefix patterns like "src/" scope by subtree.
		if strings.HasSuffix(pat, "/") && strings.HasPrefix(rel, pat) {
			return true
		}
	}
	return false
}

// Languages reports the distinct language labels in a file list, in first
// appearance order.
func Languages(files []types.SourceFile) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		if !seen[f.Language] {
			seen[f.Language] = true
			langs = append(langs, f.Language)
		}
	}
	return langs
}
