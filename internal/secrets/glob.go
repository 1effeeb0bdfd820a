package secrets

import (
	"path/filepath"
	"strings"
)

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" matches at any depth and a trailing "/**" matches everything
// below a directory.
func MatchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matchGlob(pattern, path) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, path string) bool {
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		if strings.HasPrefix(path, dir+"/") {
			return true
		}
		if inner, ok := strings.CutPrefix(dir, "**/"); ok {
			return strings.HasPrefix(path, inner+"/") || strings.Contains(path, "/"+inner+"/")
		}
	}
	if clean, ok := strings.CutPrefix(pattern, "**/"); ok {
		if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(clean, path); err == nil && matched {
			return true
		}
	}
	return false
}
