package prune

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSignatureNotFound = errors.New("signature not found")
	ErrUnterminatedBlock = errors.New("no closing brace after signature")
	ErrEmptySignature    = errors.New("empty signature")
)

// blockEnd is the marker that ends a method body.
const blockEnd = "}"

// Span is an inclusive range of 0-based line indices.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines covered.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// FindSpan locates the lines to delete for signature in t.
//
// The start line is the first line containing signature as a substring. The
// end line is the first line at or after it containing "}". Brace depth is
// not tracked: a method with an inner block is cut at the inner block's
// closing brace.
//
// If no line matches, FindSpan returns ErrSignatureNotFound. If a line matches
// but no "}" follows, it returns the start line in Span.Start, -1 in Span.End
// and ErrUnterminatedBlock.
func FindSpan(t Text, signature string) (Span, error) {
	if signature == "" {
		return Span{Start: -1, End: -1}, ErrEmptySignature
	}

	start := -1
	for i, line := range t.lines {
		if strings.Contains(line, signature) {
			start = i
			break
		}
	}
	if start < 0 {
		return Span{Start: -1, End: -1}, ErrSignatureNotFound
	}

	for i := start; i < len(t.lines); i++ {
		if strings.Contains(t.lines[i], blockEnd) {
			return Span{Start: start, End: i}, nil
		}
	}
	return Span{Start: start, End: -1}, ErrUnterminatedBlock
}
