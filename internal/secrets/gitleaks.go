package secrets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// GitleaksDetector runs the gitleaks default rule set against single lines.
type GitleaksDetector struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// NewGitleaksDetector builds a detector from the embedded gitleaks config.
func NewGitleaksDetector() (*GitleaksDetector, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks default config: %w", err)
	}
	return &GitleaksDetector{detector: d}, nil
}

// DetectLine implements LineDetector.
func (g *GitleaksDetector) DetectLine(line string) []Match {
	g.mu.Lock()
	results := g.detector.DetectString(line)
	g.mu.Unlock()

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		name := r.Description
		if name == "" {
			name = r.RuleID
		}
		matches = append(matches, Match{
			Type:             name,
			Text:             r.Match,
			Secret:           r.Secret,
			ReportInExamples: strings.Contains(r.RuleID, "private-key"),
		})
	}
	return matches
}
