package secrets

import (
	"strconv"
	"strings"
)

// Section is the part of a unified diff describing one destination file.
type Section struct {
	// Path is the destination path from the "+++ b/<path>" header.
	Path string
	// Lines holds the raw diff lines of the section, hunk headers included.
	// Binary sections carry no lines.
	Lines []string
	// Binary is set when git reported the file as binary.
	Binary bool
}

type sectionKind int

const (
	sectionText sectionKind = iota
	sectionBinary
	sectionDeleted
	sectionEmpty
	sectionMalformed
)

// skippedSection describes a section that could not be parsed.
type skippedSection struct {
	header string
	reason string
}

// SplitSections splits a unified diff into one Section per changed file.
// Deletions, metadata-only entries (mode changes, pure renames) and malformed
// sections are skipped.
func SplitSections(diff string) []Section {
	sections, _ := splitSections(diff)
	return sections
}

func splitSections(diff string) ([]Section, []skippedSection) {
	if strings.TrimSpace(diff) == "" {
		return nil, nil
	}
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	gitMode := false
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			gitMode = true
			break
		}
	}

	var chunks [][]string
	start := -1
	var hunk hunkBudget
	for i, line := range lines {
		if hunk.inside() {
			hunk.consume(line)
			continue
		}
		if startsSection(lines, i, gitMode) {
			if start >= 0 {
				chunks = append(chunks, lines[start:i])
			} else if i > 0 {
				chunks = append(chunks, lines[:i])
			}
			start = i
			continue
		}
		if !gitMode {
			hunk.open(line)
		}
	}
	if start >= 0 {
		chunks = append(chunks, lines[start:])
	} else {
		chunks = append(chunks, lines)
	}

	var sections []Section
	var skipped []skippedSection
	for _, chunk := range chunks {
		sec, kind, reason := parseSection(chunk)
		switch kind {
		case sectionText, sectionBinary:
			sections = append(sections, sec)
		case sectionMalformed:
			skipped = append(skipped, skippedSection{header: chunk[0], reason: reason})
		}
	}
	return sections, skipped
}

// hunkBudget counts the lines still owed to the current hunk of a plain
// diff. While lines are owed, "--- "/"+++ " pairs are removed and added
// content, not file headers.
type hunkBudget struct {
	oldLeft int
	newLeft int
}

func (b *hunkBudget) inside() bool {
	return b.oldLeft > 0 || b.newLeft > 0
}

func (b *hunkBudget) open(line string) {
	if h, ok := ParseHunkHeader(line); ok {
		b.oldLeft, b.newLeft = h.OldCount, h.NewCount
	}
}

func (b *hunkBudget) consume(line string) {
	switch {
	case strings.HasPrefix(line, "+"):
		b.newLeft--
	case strings.HasPrefix(line, "-"):
		b.oldLeft--
	case strings.HasPrefix(line, `\`):
		// "\ No newline at end of file" occupies no line.
	case strings.HasPrefix(line, " "), line == "":
		b.oldLeft--
		b.newLeft--
	default:
		// Anything else ends the hunk early.
		*b = hunkBudget{}
		return
	}
	if b.oldLeft < 0 || b.newLeft < 0 {
		*b = hunkBudget{}
	}
}

// startsSection reports whether lines[i] opens a new file section. Git diffs
// are split on "diff --git"; plain unified diffs on a "--- " line directly
// followed by "+++ ".
func startsSection(lines []string, i int, gitMode bool) bool {
	if gitMode {
		return strings.HasPrefix(lines[i], "diff --git ")
	}
	return strings.HasPrefix(lines[i], "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ")
}

func parseSection(chunk []string) (Section, sectionKind, string) {
	var (
		path     string
		havePath bool
		deleted  bool
		binary   bool
		hunks    bool
	)
	for _, line := range chunk {
		if strings.HasPrefix(line, "@@") {
			hunks = true
			break
		}
		switch {
		case strings.HasPrefix(line, "+++ ") && !havePath:
			p, ok := parseHeaderPath(line[len("+++ "):])
			havePath = true
			if !ok {
				deleted = true
			}
			path = p
		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"):
			binary = true
			if !havePath {
				p, ok := parseBinaryPath(line)
				if !ok {
					deleted = true
				}
				path = p
				havePath = true
			}
		case strings.HasPrefix(line, "GIT binary patch"):
			binary = true
		}
	}

	switch {
	case deleted:
		return Section{}, sectionDeleted, ""
	case binary:
		if path == "" {
			path = pathFromGitHeader(chunk[0])
		}
		if path == "" {
			return Section{}, sectionMalformed, "binary section without path"
		}
		return Section{Path: path, Binary: true}, sectionBinary, ""
	case !havePath && !hunks:
		return Section{}, sectionEmpty, ""
	case !havePath:
		return Section{}, sectionMalformed, "missing +++ header"
	case path == "":
		return Section{}, sectionMalformed, "empty destination path"
	}
	return Section{Path: path, Lines: chunk}, sectionText, ""
}

// parseHeaderPath extracts the destination path from the text after "+++ ".
// It returns false for /dev/null.
func parseHeaderPath(s string) (string, bool) {
	// Plain diffs append a tab and a timestamp.
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		if unq, err := strconv.Unquote(s); err == nil {
			s = unq
		}
	}
	if s == "/dev/null" {
		return "", false
	}
	return strings.TrimPrefix(s, "b/"), true
}

// parseBinaryPath handles "Binary files a/x and b/y differ".
func parseBinaryPath(line string) (string, bool) {
	s := strings.TrimSuffix(strings.TrimPrefix(line, "Binary files "), " differ")
	i := strings.LastIndex(s, " and ")
	if i < 0 {
		return "", true
	}
	return parseHeaderPath(s[i+len(" and "):])
}

// pathFromGitHeader handles "diff --git a/x b/x".
func pathFromGitHeader(line string) string {
	rest, ok := strings.CutPrefix(line, "diff --git ")
	if !ok {
		return ""
	}
	i := strings.LastIndex(rest, " b/")
	if i < 0 {
		return ""
	}
	return rest[i+len(" b/"):]
}
