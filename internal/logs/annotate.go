package logs

import (
	"strings"
	"time"
)

// TimestampLayout is the millisecond-precision local time stamped on lines.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Annotator prefixes lines with the time they were annotated. The zero value
// uses time.Now.
type Annotator struct {
	Now func() time.Time
}

func (a Annotator) now() time.Time {
	if a.Now != nil {
		return a.Now().Local()
	}
	return time.Now()
}

// Stamp prefixes a single line.
func (a Annotator) Stamp(line string) string {
	return "[" + a.now().Format(TimestampLayout) + "] " + line
}

// Annotate joins carry with fragment and returns every completed line
// stamped, without its line break. The unterminated remainder is returned as
// the new carry and is not emitted. Feeding consecutive fragments through the
// returned carry yields the same lines as annotating their concatenation.
func (a Annotator) Annotate(fragment, carry string) ([]string, string) {
	text := carry + fragment
	if text == "" {
		return nil, ""
	}
	parts := strings.Split(text, "\n")
	rest := parts[len(parts)-1]
	parts = parts[:len(parts)-1]

	lines := make([]string, len(parts))
	for i, part := range parts {
		lines[i] = a.Stamp(part)
	}
	return lines, rest
}

// AnnotateText stamps every line of a complete text. A final fragment without
// a line break is stamped and left unterminated.
func (a Annotator) AnnotateText(text string) string {
	lines, rest := a.Annotate(text, "")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if rest != "" {
		b.WriteString(a.Stamp(rest))
	}
	return b.String()
}
