package main

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/cppsym/internal/config"
)

var sourceExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
	".h": true, ".hh": true, ".hpp": true, ".hxx": true,
}

// findSources walks the project root collecting C/C++ files that pass the
// include/exclude globs and the size limit.
func findSources(cfg *config.Config) ([]string, error) {
	var out []string
	root := cfg.Project.Root
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if excluded(cfg.Exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if excluded(cfg.Exclude, rel) || !included(cfg.Include, rel) {
			return nil
		}
		if cfg.Analysis.MaxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > cfg.Analysis.MaxFileSize {
				return nil
			}
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func included(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		// Directory patterns like "**/build/**" also cut the walk at
		// the directory itself.
		if strings.HasSuffix(rel, "/") {
			if ok, err := doublestar.Match(p, rel+"x"); err == nil && ok {
				return true
			}
		}
	}
	return false
}
