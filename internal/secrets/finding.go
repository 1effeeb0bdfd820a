package secrets

import (
	"cmp"
	"slices"
	"unicode/utf8"
)

// DefaultMaxMatchDisplay is the number of characters of a match kept for
// display before it is truncated.
const DefaultMaxMatchDisplay = 40

// Ellipsis marks a truncated match.
const Ellipsis = "..."

// Finding is a credential detected on an added line.
type Finding struct {
	FilePath   string `json:"file"`
	LineNumber int    `json:"line"`
	SecretType string `json:"type"`
	// MatchedText is the matched substring, truncated for display.
	MatchedText string `json:"match"`
	// ContextLine is the full added line. It is never serialized.
	ContextLine string `json:"-"`
}

// SortFindings orders findings by file path, then line number. The sort is
// stable, so findings on the same line keep pattern order.
func SortFindings(findings []Finding) {
	slices.SortStableFunc(findings, func(a, b Finding) int {
		if c := cmp.Compare(a.FilePath, b.FilePath); c != 0 {
			return c
		}
		return cmp.Compare(a.LineNumber, b.LineNumber)
	})
}

// AffectedFiles returns the sorted, deduplicated paths of findings.
func AffectedFiles(findings []Finding) []string {
	seen := make(map[string]bool)
	var files []string
	for _, f := range findings {
		if !seen[f.FilePath] {
			seen[f.FilePath] = true
			files = append(files, f.FilePath)
		}
	}
	slices.Sort(files)
	return files
}

// Truncate shortens s to limit characters, appending Ellipsis when it cuts.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}
