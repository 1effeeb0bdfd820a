package remediate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxAttempts is how many unrecognised answers Prompt accepts before
// it aborts.
const DefaultMaxAttempts = 3

// DecisionSource supplies one decision for a set of affected files.
// Implementations must return promptly once ctx is done.
type DecisionSource interface {
	Decide(ctx context.Context, files []string) (Decision, error)
}

// DecisionFunc adapts a function to DecisionSource.
type DecisionFunc func(ctx context.Context, files []string) (Decision, error)

// Decide implements DecisionSource.
func (f DecisionFunc) Decide(ctx context.Context, files []string) (Decision, error) {
	return f(ctx, files)
}

// Prompt asks for a decision on a line-oriented terminal.
type Prompt struct {
	in          *bufio.Reader
	out         io.Writer
	maxAttempts int
}

// NewPrompt returns a Prompt reading answers from in and writing questions to
// out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:          bufio.NewReader(in),
		out:         out,
		maxAttempts: DefaultMaxAttempts,
	}
}

type readResult struct {
	line string
	err  error
}

// Decide prints the affected files and the three choices, then blocks until
// an answer arrives or ctx is done. Cancellation, closed input and repeated
// unrecognised answers all yield DecisionAbort.
func (p *Prompt) Decide(ctx context.Context, files []string) (Decision, error) {
	fmt.Fprintf(p.out, "\nSecrets detected in %d file(s):\n", len(files))
	for _, f := range files {
		fmt.Fprintf(p.out, "  %s\n", f)
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		fmt.Fprint(p.out, "[a]bort (default), [c]ontinue anyway, [r]emove affected files from this commit: ")

		line, err := p.readLine(ctx)
		if err != nil {
			fmt.Fprintln(p.out)
			return DecisionAbort, err
		}
		if d, ok := ParseDecision(line); ok {
			return d, nil
		}
		fmt.Fprintf(p.out, "Unrecognised choice %q.\n", strings.TrimSpace(line))
	}
	fmt.Fprintln(p.out, "Too many unrecognised answers, aborting.")
	return DecisionAbort, nil
}

// readLine reads one answer without outliving ctx. A read still pending when
// ctx is done is abandoned.
func (p *Prompt) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			// A partial answer on closed input is not trusted.
			return "", fmt.Errorf("reading decision: %w", r.err)
		}
		return r.line, nil
	}
}
