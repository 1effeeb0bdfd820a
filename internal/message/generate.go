package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/gitguard/internal/providers"
)

// ErrEmptyMessage is returned when a provider reply holds no usable message.
var ErrEmptyMessage = errors.New("provider returned an empty commit message")

// Generate asks gen for a commit message and returns it cleaned.
func Generate(ctx context.Context, gen providers.Generator, p Prompt) (string, error) {
	resp, err := gen.Generate(ctx, providers.Request{
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		MaxTokens:    512,
		Temperature:  0.2,
	})
	if err != nil {
		return "", fmt.Errorf("generating commit message with %s: %w", gen.Name(), err)
	}
	msg := Clean(resp.Content)
	if msg == "" {
		return "", ErrEmptyMessage
	}
	return msg, nil
}

// Clean normalizes a model reply into a commit message: code fences, a
// leading label and wrapping quotes are removed, trailing whitespace is
// trimmed from every line and runs of blank lines collapse to one.
func Clean(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	s = stripFences(s)
	for _, label := range []string{"commit message:", "message:"} {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
		}
	}
	s = stripQuotes(s)

	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an info string such as ```text.
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], " ") {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func stripQuotes(s string) string {
	for _, q := range []string{`"`, "'", "`"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && !strings.Contains(s[1:len(s)-1], q) {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
