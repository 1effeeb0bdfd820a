package remediate

import (
	"errors"
	"strings"
)

// State is a node of the remediation state machine.
type State int

const (
	StateScanning State = iota
	StateClean
	StateAwaitingDecision
	StateAborted
	StateProceeding
	StateFilesRemoved
	StateRemoveFailed
)

var stateNames = map[State]string{
	StateScanning:         "scanning",
	StateClean:            "clean",
	StateAwaitingDecision: "awaiting_decision",
	StateAborted:          "aborted",
	StateProceeding:       "proceeding",
	StateFilesRemoved:     "files_removed",
	StateRemoveFailed:     "remove_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether s ends an interaction.
func (s State) Terminal() bool {
	return s != StateScanning && s != StateAwaitingDecision
}

// Decision is the user's answer to a findings prompt.
type Decision int

const (
	// DecisionAbort stops the commit attempt. It is the default.
	DecisionAbort Decision = iota
	// DecisionContinue commits despite the findings.
	DecisionContinue
	// DecisionRemove unstages every file with a finding.
	DecisionRemove
)

func (d Decision) String() string {
	switch d {
	case DecisionContinue:
		return "continue"
	case DecisionRemove:
		return "remove"
	default:
		return "abort"
	}
}

// ParseDecision maps prompt input to a Decision. Matching is
// case-insensitive and empty input selects DecisionAbort.
func ParseDecision(input string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "a", "abort":
		return DecisionAbort, true
	case "c", "continue":
		return DecisionContinue, true
	case "r", "remove":
		return DecisionRemove, true
	}
	return DecisionAbort, false
}

var (
	// ErrUnstageFailed is returned when the affected files could not be
	// removed from the staged set.
	ErrUnstageFailed = errors.New("unstaging affected files failed")

	// ErrNoDecision is returned when findings exist but no decision source is
	// available to resolve them.
	ErrNoDecision = errors.New("no decision source available")
)

// Outcome is the result of resolving one set of findings.
type Outcome struct {
	State State
	// Files are the deduplicated, sorted paths that carry findings.
	Files []string
	// Findings is the number of findings resolved.
	Findings int
	// Override is set when the user chose to continue past findings.
	Override bool
	// AuditID identifies this resolution in the audit log.
	AuditID string
}

// Proceed reports whether the commit may go ahead.
func (o Outcome) Proceed() bool {
	return o.State == StateClean || o.State == StateProceeding
}
