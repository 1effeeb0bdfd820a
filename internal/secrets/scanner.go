package secrets

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultWorkers limits how many file sections are scanned in parallel.
const defaultWorkers = 4

// LineDetector is an additional matcher consulted for every added line.
type LineDetector interface {
	DetectLine(line string) []Match
}

// Match is a LineDetector result.
type Match struct {
	// Type names the credential family.
	Type string
	// Text is the full matched substring.
	Text string
	// Secret is the credential portion of Text, or empty for all of it.
	Secret string
	// ReportInExamples keeps the match inside example env files.
	ReportInExamples bool
}

// Scanner finds credentials on the added lines of a unified diff.
type Scanner struct {
	registry   *Registry
	patterns   []Pattern
	detectors  []LineDetector
	logger     *zap.Logger
	workers    int
	maxDisplay int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(s *Scanner) { s.registry = r }
}

// WithLineDetector adds a matcher run on every added line after the
// registry's patterns.
func WithLineDetector(d LineDetector) Option {
	return func(s *Scanner) { s.detectors = append(s.detectors, d) }
}

// WithLogger sets the logger used for parse and evaluation anomalies.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithWorkers sets the number of sections scanned concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxMatchDisplay sets the display length of matched text.
func WithMaxMatchDisplay(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxDisplay = n
		}
	}
}

// NewScanner returns a Scanner using the default registry unless overridden.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		registry:   Default(),
		logger:     zap.NewNop(),
		workers:    defaultWorkers,
		maxDisplay: DefaultMaxMatchDisplay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.patterns = s.registry.Patterns()
	return s
}

// Scan returns the findings in diff sorted by file path and line number.
// Malformed sections are skipped; the only error is ctx's.
func (s *Scanner) Scan(ctx context.Context, diff string) ([]Finding, error) {
	sections, skipped := splitSections(diff)
	for _, sk := range skipped {
		s.logger.Debug("skipping malformed diff section",
			zap.String("header", sk.header),
			zap.String("reason", sk.reason),
		)
	}

	results := make([][]Finding, len(sections))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sec := range sections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.scanSection(sec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	findings := make([]Finding, 0)
	for _, r := range results {
		findings = append(findings, r...)
	}
	SortFindings(findings)
	return findings, nil
}

func (s *Scanner) scanSection(sec Section) []Finding {
	if sec.Binary || len(sec.Lines) == 0 {
		return nil
	}
	if s.registry.IsExempt(sec.Path) {
		s.logger.Debug("path exempt from secret scan", zap.String("path", sec.Path))
		return nil
	}
	var findings []Finding
	for line := range Track(sec.Lines) {
		if !line.Added {
			continue
		}
		findings = append(findings, s.scanLine(sec.Path, line)...)
	}
	return findings
}

func (s *Scanner) scanLine(path string, line Line) []Finding {
	var findings []Finding
	for i := range s.patterns {
		if f, ok := s.matchPattern(&s.patterns[i], path, line); ok {
			findings = append(findings, f)
		}
	}
	for _, d := range s.detectors {
		findings = append(findings, s.matchDetector(d, path, line)...)
	}
	return findings
}

// matchPattern returns the first match of p on line that survives the
// exclusion rules. A pattern that fails to evaluate yields no match.
func (s *Scanner) matchPattern(p *Pattern, path string, line Line) (f Finding, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("pattern evaluation failed",
				zap.String("pattern", p.Name),
				zap.String("path", path),
				zap.Int("line", line.Number),
				zap.Any("panic", r),
			)
			f, ok = Finding{}, false
		}
	}()

	for _, loc := range p.Regex.FindAllStringSubmatchIndex(line.Text, -1) {
		value := p.value(line.Text, loc)
		if p.MinLength > 0 && len(value) < p.MinLength {
			continue
		}
		if p.Validate != nil && !p.Validate(value) {
			continue
		}
		if s.registry.IsFalsePositive(value, path, p.ReportInExamples) {
			continue
		}
		return s.newFinding(path, line, p.Name, line.Text[loc[0]:loc[1]]), true
	}
	return Finding{}, false
}

func (s *Scanner) matchDetector(d LineDetector, path string, line Line) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("line detector failed",
				zap.String("path", path),
				zap.Int("line", line.Number),
				zap.Any("panic", r),
			)
			findings = nil
		}
	}()

	seen := make(map[string]bool)
	for _, m := range d.DetectLine(line.Text) {
		if seen[m.Type] {
			continue
		}
		value := m.Secret
		if value == "" {
			value = m.Text
		}
		if s.registry.IsFalsePositive(value, path, m.ReportInExamples) {
			continue
		}
		seen[m.Type] = true
		findings = append(findings, s.newFinding(path, line, m.Type, m.Text))
	}
	return findings
}

func (s *Scanner) newFinding(path string, line Line, secretType, matched string) Finding {
	return Finding{
		FilePath:    path,
		LineNumber:  line.Number,
		SecretType:  secretType,
		MatchedText: Truncate(matched, s.maxDisplay),
		ContextLine: line.Text,
	}
}
