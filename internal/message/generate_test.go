package message

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/gitguard/internal/providers"
)

type fakeGenerator struct {
	content string
	err     error
	got     providers.Request
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, req providers.Request) (providers.Response, error) {
	f.got = req
	return providers.Response{Content: f.content}, f.err
}

func TestGenerate(t *testing.T) {
	gen := &fakeGenerator{content: "```\nfeat: add login\n```"}
	p := Build(twoFileDiff, Options{})
	msg, err := Generate(context.Background(), gen, p)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "feat: add login" {
		t.Errorf("msg = %q", msg)
	}
	if gen.got.SystemPrompt != p.System || gen.got.UserPrompt != p.User {
		t.Error("prompt not forwarded to provider")
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(context.Background(), &fakeGenerator{err: errors.New("boom")}, Prompt{})
	if err == nil || err.Error() != "generating commit message with fake: boom" {
		t.Errorf("err = %v", err)
	}
	_, err = Generate(context.Background(), &fakeGenerator{content: "  \n``` \n"}, Prompt{})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "fix: handle nil config", "fix: handle nil config"},
		{"whitespace", "\n\n  fix: x  \n", "fix: x"},
		{"fenced", "```text\nfix: x\n\nbody line\n```", "fix: x\n\nbody line"},
		{"inline fence", "```fix: x```", "fix: x"},
		{"quoted", `"feat: add y"`, "feat: add y"},
		{"label", "Commit message: chore: tidy", "chore: tidy"},
		{"crlf", "feat: a\r\n\r\nbody\r\n", "feat: a\n\nbody"},
		{"blank runs", "feat: a\n\n\n\nbody\n\n\nmore", "feat: a\n\nbody\n\nmore"},
		{"inner quotes kept", `fix: quote "name" field`, `fix: quote "name" field`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
