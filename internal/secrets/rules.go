package secrets

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules extends the built-in registry. It is loaded from a YAML file:
//
//	patterns:
//	  - name: Internal Service Token
//	    regex: 'itk_[a-z0-9]{32}'
//	allowlist:
//	  - FAKE-KEY-
//	paths:
//	  - testdata/**
type Rules struct {
	Patterns []RulePattern `yaml:"patterns"`
	// Allowlist holds literal substrings treated as placeholders.
	Allowlist []string `yaml:"allowlist"`
	// Paths holds globs of files never scanned.
	Paths []string `yaml:"paths"`
}

// RulePattern is a user-defined secret shape. A capture group named "secret"
// marks the credential within the match.
type RulePattern struct {
	Name             string `yaml:"name"`
	Regex            string `yaml:"regex"`
	MinLength        int    `yaml:"minLength"`
	ReportInExamples bool   `yaml:"reportInExamples"`
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rules document.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	for i, p := range rules.Patterns {
		if p.Name == "" {
			return nil, fmt.Errorf("rules pattern %d: %w", i, errors.New("name is required"))
		}
		if p.Regex == "" {
			return nil, fmt.Errorf("rules pattern %q: %w", p.Name, errors.New("regex is required"))
		}
	}
	return &rules, nil
}
