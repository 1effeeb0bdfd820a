package redact

import (
	"github.com/dshills/gitguard/internal/secrets"
)

// Placeholder replaces redacted text.
const Placeholder = "[REDACTED]"

// Redactor scrubs credentials using the secret scanner's pattern registry, so
// anything the scan can report is also withheld from a provider.
type Redactor struct {
	patterns []secrets.Pattern
	paths    []string
}

// New returns a Redactor over reg's patterns. Files matching any of paths are
// withheld entirely. A nil reg uses the built-in registry.
func New(reg *secrets.Registry, paths []string) *Redactor {
	if reg == nil {
		reg = secrets.Default()
	}
	return &Redactor{patterns: reg.Patterns(), paths: paths}
}

// Secrets replaces detected credentials in text with [REDACTED]. Key names
// in assignments are kept.
func (r *Redactor) Secrets(text string) string {
	for i := range r.patterns {
		text = r.patterns[i].ReplaceSecrets(text, Placeholder)
	}
	return text
}

// Content redacts secrets from content, or all of it when path matches the
// redaction path patterns.
func (r *Redactor) Content(content, path string) string {
	if r.RedactsPath(path) {
		return Placeholder + " (file content redacted by path policy)\n"
	}
	return r.Secrets(content)
}

// RedactsPath reports whether files at path are withheld entirely.
func (r *Redactor) RedactsPath(path string) bool {
	return ShouldRedactPath(path, r.paths)
}

// Secrets redacts text with the built-in registry.
func Secrets(text string) string {
	return New(nil, nil).Secrets(text)
}

// ShouldRedactPath checks if a file path matches any of the redaction path patterns.
func ShouldRedactPath(path string, patterns []string) bool {
	return len(patterns) > 0 && secrets.MatchesAny(path, patterns)
}
