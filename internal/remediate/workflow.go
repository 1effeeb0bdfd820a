package remediate

import (
	"context"
	"fmt"

	"github.com/dshills/gitguard/internal/secrets"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Unstager removes paths from the staged change set without touching the
// working tree.
type Unstager interface {
	Unstage(ctx context.Context, paths []string) error
}

// Workflow resolves scan findings into an Outcome.
type Workflow struct {
	// Source answers the findings prompt. A nil Source aborts with
	// ErrNoDecision whenever findings exist.
	Source DecisionSource
	// Unstager applies DecisionRemove.
	Unstager Unstager
	// Render, when set, displays the findings before any choice is offered.
	Render func(findings []secrets.Finding)
	// Logger receives one audit record per resolution.
	Logger *zap.Logger
}

func (w *Workflow) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

// Resolve walks the state machine for one set of findings. It returns
// StateClean without prompting when findings is empty. The returned error is
// non-nil only for ErrNoDecision and ErrUnstageFailed; Outcome.State is
// always terminal.
func (w *Workflow) Resolve(ctx context.Context, findings []secrets.Finding) (Outcome, error) {
	out := Outcome{
		State:    StateScanning,
		Findings: len(findings),
		AuditID:  uuid.NewString(),
	}
	if len(findings) == 0 {
		out.State = StateClean
		w.audit(out, "secret scan clean")
		return out, nil
	}

	out.Files = secrets.AffectedFiles(findings)
	if w.Render != nil {
		w.Render(findings)
	}

	out.State = StateAwaitingDecision
	if w.Source == nil {
		out.State = StateAborted
		w.audit(out, "no decision source, aborting")
		return out, ErrNoDecision
	}

	decision, err := w.Source.Decide(ctx, out.Files)
	if err != nil || ctx.Err() != nil {
		out.State = StateAborted
		w.logger().Debug("decision channel closed", zap.Error(err))
		w.audit(out, "commit aborted")
		return out, nil
	}

	switch decision {
	case DecisionContinue:
		out.State = StateProceeding
		out.Override = true
		w.audit(out, "secret findings overridden")
		return out, nil
	case DecisionRemove:
		return w.remove(ctx, out)
	default:
		out.State = StateAborted
		w.audit(out, "commit aborted")
		return out, nil
	}
}

func (w *Workflow) remove(ctx context.Context, out Outcome) (Outcome, error) {
	if w.Unstager == nil {
		out.State = StateRemoveFailed
		w.audit(out, "unstage failed")
		return out, fmt.Errorf("%w: no unstager configured", ErrUnstageFailed)
	}
	if err := w.Unstager.Unstage(ctx, out.Files); err != nil {
		out.State = StateRemoveFailed
		w.audit(out, "unstage failed")
		return out, fmt.Errorf("%w: %w", ErrUnstageFailed, err)
	}
	out.State = StateFilesRemoved
	w.audit(out, "affected files unstaged")
	return out, nil
}

func (w *Workflow) audit(out Outcome, msg string) {
	fields := []zap.Field{
		zap.String("audit_id", out.AuditID),
		zap.String("state", out.State.String()),
		zap.Int("findings", out.Findings),
		zap.Strings("files", out.Files),
		zap.Bool("override", out.Override),
	}
	switch out.State {
	case StateClean:
		w.logger().Debug(msg, fields...)
	case StateProceeding, StateRemoveFailed:
		w.logger().Warn(msg, fields...)
	default:
		w.logger().Info(msg, fields...)
	}
}
