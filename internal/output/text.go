package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/gitguard/internal/redact"
	"github.com/dshills/gitguard/internal/secrets"
)

const maxContextDisplay = 120

// TextWriter outputs a human-readable text report.
type TextWriter struct {
	ShowContext bool
}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("gitguard secret scan (%s)\n", report.Source)
	if report.Repo.Root != "" {
		ew.printf("Repository: %s", report.Repo.Root)
		if report.Repo.Branch != "" {
			ew.printf(" (branch: %s)", report.Repo.Branch)
		}
		ew.println("")
	}
	ew.println(strings.Repeat("─", 60))

	if report.Clean() {
		ew.println("No secrets detected.")
		return ew.err
	}

	ew.printf("Secrets detected: %d finding(s) in %d file(s)\n", report.Summary.Findings, report.Summary.Files)
	ew.println(strings.Repeat("─", 60))

	WriteFindings(ew, report.Findings, t.ShowContext)

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.println("Remove the credentials, or unstage the files, before committing.")
	return ew.err
}

// WriteFindings prints findings grouped by file. Findings must be sorted by
// file path.
func WriteFindings(w io.Writer, findings []secrets.Finding, showContext bool) error {
	ew, ok := w.(*errWriter)
	if !ok {
		ew = &errWriter{w: w}
	}
	current := ""
	for _, f := range findings {
		if f.FilePath != current {
			current = f.FilePath
			ew.printf("\n  %s\n", f.FilePath)
		}
		ew.printf("    line %d: %s\n", f.LineNumber, f.SecretType)
		ew.printf("      match: %s\n", f.MatchedText)
		if showContext && f.ContextLine != "" {
			line := strings.TrimSpace(redact.Secrets(f.ContextLine))
			ew.printf("      %s\n", secrets.Truncate(line, maxContextDisplay))
		}
	}
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	var n int
	n, ew.err = ew.w.Write(p)
	return n, ew.err
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
