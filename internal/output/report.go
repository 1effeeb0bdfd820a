package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gitguard/internal/secrets"
)

// RepoInfo contains repository metadata.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Summary counts a report's findings.
type Summary struct {
	Findings int            `json:"findings"`
	Files    int            `json:"files"`
	ByType   map[string]int `json:"byType"`
}

// Report is the result of one secret scan.
type Report struct {
	Tool     string            `json:"tool"`
	Version  string            `json:"version"`
	RunID    string            `json:"runId"`
	Source   string            `json:"source"`
	Repo     RepoInfo          `json:"repo"`
	Findings []secrets.Finding `json:"findings"`
	Files    []string          `json:"files"`
	Summary  Summary           `json:"summary"`
	ScanMs   int64             `json:"scanMs"`
}

// NewReport builds a report for findings. source names what was scanned,
// such as "staged" or "stdin".
func NewReport(version, source string, repo RepoInfo, findings []secrets.Finding, elapsed time.Duration) *Report {
	if findings == nil {
		findings = []secrets.Finding{}
	}
	files := secrets.AffectedFiles(findings)
	if files == nil {
		files = []string{}
	}
	byType := make(map[string]int)
	for _, f := range findings {
		byType[f.SecretType]++
	}
	return &Report{
		Tool:     "gitguard",
		Version:  version,
		RunID:    uuid.NewString(),
		Source:   source,
		Repo:     repo,
		Findings: findings,
		Files:    files,
		Summary: Summary{
			Findings: len(findings),
			Files:    len(files),
			ByType:   byType,
		},
		ScanMs: elapsed.Milliseconds(),
	}
}

// Clean reports whether the scan found nothing.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}
