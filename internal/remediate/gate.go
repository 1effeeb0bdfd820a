package remediate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/gitguard/internal/secrets"
)

// Stage reads the current staged change set.
type Stage interface {
	StagedFiles(ctx context.Context) ([]string, error)
	StagedDiff(ctx context.Context) (string, error)
}

// Scanner produces findings for a unified diff.
type Scanner interface {
	Scan(ctx context.Context, diff string) ([]secrets.Finding, error)
}

// GateResult is the staged state the commit flow continues with.
type GateResult struct {
	// Outcome is the last resolution. After a removal that left nothing
	// staged it is the StateFilesRemoved outcome.
	Outcome Outcome
	// Diff is the staged diff that was last scanned.
	Diff string
	// Files are the paths staged when the last scan ran. Empty when nothing
	// remains to commit.
	Files []string
	// Findings are the findings of the last scan.
	Findings []secrets.Finding
	// Removed accumulates every path unstaged across rounds.
	Removed []string
}

// Gate scans the staged change set and resolves the findings until the set
// is clean, the user overrides, or the attempt is aborted. After a removal
// the staged set is fetched and scanned again, so the caller always receives
// the state that will actually be committed.
func Gate(ctx context.Context, stage Stage, sc Scanner, w *Workflow) (GateResult, error) {
	prev := Outcome{State: StateClean}
	var removed []string
	for {
		if err := ctx.Err(); err != nil {
			return GateResult{Outcome: Outcome{State: StateAborted}, Removed: removed}, err
		}

		files, err := stage.StagedFiles(ctx)
		if err != nil {
			return GateResult{Outcome: prev, Removed: removed}, fmt.Errorf("listing staged files: %w", err)
		}
		if prev.State == StateFilesRemoved {
			if stuck := intersect(prev.Files, files); len(stuck) > 0 {
				prev.State = StateRemoveFailed
				return GateResult{Outcome: prev, Files: files, Removed: removed},
					fmt.Errorf("%w: still staged: %s", ErrUnstageFailed, strings.Join(stuck, ", "))
			}
		}
		if len(files) == 0 {
			return GateResult{Outcome: prev, Removed: removed}, nil
		}

		diff, err := stage.StagedDiff(ctx)
		if err != nil {
			return GateResult{Outcome: prev, Files: files, Removed: removed}, fmt.Errorf("reading staged diff: %w", err)
		}
		findings, err := sc.Scan(ctx, diff)
		if err != nil {
			return GateResult{Outcome: Outcome{State: StateAborted}, Files: files, Removed: removed}, err
		}

		out, err := w.Resolve(ctx, findings)
		res := GateResult{
			Outcome:  out,
			Diff:     diff,
			Files:    files,
			Findings: findings,
			Removed:  removed,
		}
		if err != nil || out.State != StateFilesRemoved {
			return res, err
		}
		removed = append(removed, out.Files...)
		prev = out
	}
}

func intersect(a, b []string) []string {
	var out []string
	for _, s := range a {
		if slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}
