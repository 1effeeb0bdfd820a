package output

import (
	"io"
	"sort"
	"strings"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	ew.printf("## gitguard secret scan\n\n")

	if report.Clean() {
		ew.println("No secrets detected. :white_check_mark:")
		return ew.err
	}

	ew.printf("**%d** finding(s) in **%d** file(s).\n\n", report.Summary.Findings, report.Summary.Files)

	// Summary by type, most frequent first.
	types := make([]string, 0, len(report.Summary.ByType))
	for t := range report.Summary.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		ci, cj := report.Summary.ByType[types[i]], report.Summary.ByType[types[j]]
		if ci != cj {
			return ci > cj
		}
		return types[i] < types[j]
	})
	ew.println("| Type | Count |")
	ew.println("|------|-------|")
	for _, t := range types {
		ew.printf("| %s | %d |\n", mdEscape(t), report.Summary.ByType[t])
	}
	ew.println("")

	ew.printf("<details>\n<summary>:red_circle: Findings (%d)</summary>\n\n", len(report.Findings))
	ew.println("| File | Line | Type | Match |")
	ew.println("|------|------|------|-------|")
	for _, f := range report.Findings {
		ew.printf("| `%s` | %d | %s | `%s` |\n", f.FilePath, f.LineNumber, mdEscape(f.SecretType), strings.ReplaceAll(f.MatchedText, "`", "'"))
	}
	ew.println("\n</details>")
	return ew.err
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
