package secrets

import (
	"iter"
	"strconv"
	"strings"

	regexp "github.com/wasilibs/go-re2"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// HunkHeader is a parsed "@@ -oldStart,oldCount +newStart,newCount @@" line.
// Omitted counts default to 1.
type HunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// ParseHunkHeader parses a hunk header line.
func ParseHunkHeader(line string) (HunkHeader, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return HunkHeader{}, false
	}
	var h HunkHeader
	var err error
	if h.OldStart, err = strconv.Atoi(m[1]); err != nil {
		return HunkHeader{}, false
	}
	if h.NewStart, err = strconv.Atoi(m[3]); err != nil {
		return HunkHeader{}, false
	}
	h.OldCount, h.NewCount = 1, 1
	if m[2] != "" {
		if h.OldCount, err = strconv.Atoi(m[2]); err != nil {
			return HunkHeader{}, false
		}
	}
	if m[4] != "" {
		if h.NewCount, err = strconv.Atoi(m[4]); err != nil {
			return HunkHeader{}, false
		}
	}
	return h, true
}

// Line is a line of the resulting file visited by the tracker.
type Line struct {
	Number int
	Text   string
	Added  bool
}

type trackerState int

const (
	stateUninitialized trackerState = iota
	stateTracking
)

// Tracker maps the raw lines of one file section to line numbers in the file
// after the change is applied. Added and context lines occupy a line in the
// new file; removed lines do not.
//
// The zero value is ready to use. A Tracker must not be reused across
// sections.
type Tracker struct {
	state   trackerState
	current int
	// Lines still expected in the current hunk, from the header counts.
	// They only disambiguate "+++ "/"--- " content from file headers.
	oldLeft int
	newLeft int
}

// Next consumes one raw diff line. It returns the line and true when raw
// occupies a line number in the resulting file.
func (t *Tracker) Next(raw string) (Line, bool) {
	if h, ok := ParseHunkHeader(raw); ok {
		t.state = stateTracking
		t.current = h.NewStart
		t.oldLeft = h.OldCount
		t.newLeft = h.NewCount
		return Line{}, false
	}
	if t.state != stateTracking {
		return Line{}, false
	}

	switch {
	case strings.HasPrefix(raw, "+"):
		if t.newLeft <= 0 && strings.HasPrefix(raw, "+++ ") {
			t.reset()
			return Line{}, false
		}
		l := Line{Number: t.current, Text: raw[1:], Added: true}
		t.current++
		t.newLeft--
		return l, true
	case strings.HasPrefix(raw, "-"):
		if t.oldLeft <= 0 && strings.HasPrefix(raw, "--- ") {
			t.reset()
			return Line{}, false
		}
		t.oldLeft--
		return Line{}, false
	case strings.HasPrefix(raw, " "):
		return t.context(raw[1:]), true
	case raw == "" && t.newLeft > 0:
		// Blank context line whose leading space was stripped in transit.
		return t.context(""), true
	case strings.HasPrefix(raw, `\`):
		// "\ No newline at end of file"
		return Line{}, false
	}
	t.reset()
	return Line{}, false
}

func (t *Tracker) context(text string) Line {
	l := Line{Number: t.current, Text: text}
	t.current++
	t.newLeft--
	t.oldLeft--
	return l
}

func (t *Tracker) reset() {
	*t = Tracker{}
}

// Track returns the lines of a file section that exist in the resulting
// file, numbered by their position in it. Each iteration starts a fresh
// Tracker.
func Track(lines []string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		var t Tracker
		for _, raw := range lines {
			if l, ok := t.Next(raw); ok {
				if !yield(l) {
					return
				}
			}
		}
	}
}
