package prune

import "strings"

// Text is a source file held as an ordered sequence of lines.
// Line terminators are not part of a line's content; finalNewline records
// whether the last line carried one.
type Text struct {
	lines        []string
	finalNewline bool
}

// ParseText splits raw file content on "\n". A trailing "\n" terminates the
// last line rather than starting an empty one. "\r" is kept as content.
func ParseText(s string) Text {
	if s == "" {
		return Text{}
	}
	final := strings.HasSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	return Text{
		lines:        strings.Split(s, "\n"),
		finalNewline: final,
	}
}

// String rejoins the lines with their terminators.
func (t Text) String() string {
	if len(t.lines) == 0 {
		return ""
	}
	s := strings.Join(t.lines, "\n")
	if t.finalNewline {
		s += "\n"
	}
	return s
}

// Len returns the number of lines.
func (t Text) Len() int {
	return len(t.lines)
}

// Lines returns a copy of the line contents.
func (t Text) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// without returns a new Text with the lines of sp removed.
// Every surviving line keeps its own terminator: when sp covers the last line,
// the new last line was terminated in the input and stays that way.
func (t Text) without(sp Span) Text {
	kept := make([]string, 0, len(t.lines)-sp.Len())
	kept = append(kept, t.lines[:sp.Start]...)
	kept = append(kept, t.lines[sp.End+1:]...)

	final := t.finalNewline
	if sp.End == len(t.lines)-1 {
		final = true
	}
	if len(kept) == 0 {
		final = false
	}
	return Text{lines: kept, finalNewline: final}
}
