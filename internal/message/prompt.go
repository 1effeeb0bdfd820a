package message

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/gitguard/internal/redact"
	"github.com/dshills/gitguard/internal/secrets"
)

const systemPrompt = `You write git commit messages. Given a staged diff, reply with a single commit message in the Conventional Commits format.

Rules:
1. The first line is "<type>(<optional scope>): <summary>", at most 72 characters, imperative mood, no trailing period.
2. Types: feat, fix, docs, style, refactor, perf, test, build, ci, chore, revert.
3. If the change needs explanation, add a blank line and a short body wrapped at 72 characters describing what changed and why.
4. Never include credentials, tokens or text marked [REDACTED].
5. Reply with the commit message only. No markdown, no code fences, no preamble.`

// DefaultMaxDiffBytes bounds the diff sent to a provider when no limit is
// configured.
const DefaultMaxDiffBytes = 100_000

const truncationNote = "\n... (diff truncated at max-diff-bytes limit)\n"

// Options shapes the diff sent to a provider.
type Options struct {
	// Exclude lists path globs omitted from the prompt.
	Exclude []string
	// MaxDiffBytes truncates the prompt diff. Zero means DefaultMaxDiffBytes
	// and a negative value disables truncation.
	MaxDiffBytes int
	// Redactor scrubs the prompt diff. Nil uses the built-in registry.
	Redactor *redact.Redactor
}

// Prompt is a ready-to-send commit message request.
type Prompt struct {
	System    string
	User      string
	Files     []string
	Truncated bool
}

// SystemPrompt returns the system prompt for commit message generation.
func SystemPrompt() string {
	return systemPrompt
}

// Build prepares the provider prompt for diff.
func Build(diff string, opts Options) Prompt {
	r := opts.Redactor
	if r == nil {
		r = redact.New(nil, nil)
	}

	var b strings.Builder
	var files []string
	for _, section := range splitDiffSections(diff) {
		path := extractPathFromSection(section)
		if path != "" && len(opts.Exclude) > 0 && secrets.MatchesAny(path, opts.Exclude) {
			continue
		}
		if path != "" && !slices.Contains(files, path) {
			files = append(files, path)
		}
		if path != "" && r.RedactsPath(path) {
			fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
			b.WriteString(r.Content(section, path))
			continue
		}
		b.WriteString(r.Secrets(section))
	}

	body := b.String()
	limit := opts.MaxDiffBytes
	if limit == 0 {
		limit = DefaultMaxDiffBytes
	}
	truncated := false
	if limit > 0 && len(body) > limit {
		body = truncateBytes(body, limit) + truncationNote
		truncated = true
	}

	return Prompt{
		System:    systemPrompt,
		User:      buildUserPrompt(body, files),
		Files:     files,
		Truncated: truncated,
	}
}

func buildUserPrompt(diff string, files []string) string {
	var b strings.Builder
	b.WriteString("Write a commit message for the following staged changes.\n\n")
	if len(files) > 0 {
		fmt.Fprintf(&b, "Files changed: %d\n", len(files))
	}
	if langs := detectLanguages(files); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}
	b.WriteString("\n--- BEGIN DIFF ---\n")
	b.WriteString(diff)
	b.WriteString("\n--- END DIFF ---\n")
	return b.String()
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 rune.
func truncateBytes(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func splitDiffSections(diff string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 && strings.TrimSpace(current.String()) != "" {
		sections = append(sections, current.String())
	}
	return sections
}

// extractPathFromSection returns the destination path of a section, or the
// source path for deletions.
func extractPathFromSection(section string) string {
	var old string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			return strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/") && old == "":
			old = strings.TrimPrefix(line, "--- a/")
		case strings.HasPrefix(line, "@@"):
			return old
		}
	}
	return old
}

var langMap = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript/React",
	".jsx":   "JavaScript/React",
	".rs":    "Rust",
	".java":  "Java",
	".rb":    "Ruby",
	".cpp":   "C++",
	".c":     "C",
	".h":     "C/C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".sql":   "SQL",
	".sh":    "Shell",
	".yaml":  "YAML",
	".yml":   "YAML",
	".json":  "JSON",
	".tf":    "Terraform",
	".md":    "Markdown",
}

func detectLanguages(files []string) []string {
	var langs []string
	for _, f := range files {
		lang, ok := langMap[strings.ToLower(filepath.Ext(f))]
		if ok && !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	return langs
}
