// Package prune removes method definitions from source text by line-oriented
// pattern matching. It is a textual heuristic, not a parser: comments, string
// literals and nested blocks are not understood.
package prune

import (
	"errors"
	"fmt"
)

// Status is the terminal state of one signature fragment.
type Status int

const (
	Deleted   Status = iota // span found and removed
	NotFound                // no line contains the fragment
	Unbounded               // fragment found, no closing brace after it
	Invalid                 // empty fragment
)

func (s Status) String() string {
	switch s {
	case Deleted:
		return "deleted"
	case NotFound:
		return "signature_not_found"
	case Unbounded:
		return "unterminated_block"
	case Invalid:
		return "empty_signature"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome reports what happened to one fragment.
// Span is meaningful for Deleted; for Unbounded only Span.Start is set.
type Outcome struct {
	Signature string
	Status    Status
	Span      Span
	Err       error
}

// Resolved reports whether the fragment's method was removed.
func (o Outcome) Resolved() bool {
	return o.Status == Deleted
}

// ToLogString formats the outcome for a log line.
func (o Outcome) ToLogString() string {
	switch o.Status {
	case Deleted:
		return fmt.Sprintf("deleted lines %s (%d lines) signature=%q", o.Span, o.Span.Len(), o.Signature)
	case Unbounded:
		return fmt.Sprintf("%s: start line %d signature=%q", o.Status, o.Span.Start, o.Signature)
	default:
		return fmt.Sprintf("%s: signature=%q", o.Status, o.Signature)
	}
}

// DeleteMethod removes the span for one fragment. On any failure the text is
// returned unchanged and the outcome carries the reason.
func DeleteMethod(t Text, signature string) (Text, Outcome) {
	sp, err := FindSpan(t, signature)
	out := Outcome{Signature: signature, Span: sp, Err: err}
	switch {
	case err == nil:
		out.Status = Deleted
		return t.without(sp), out
	case errors.Is(err, ErrSignatureNotFound):
		out.Status = NotFound
	case errors.Is(err, ErrUnterminatedBlock):
		out.Status = Unbounded
	default:
		out.Status = Invalid
	}
	return t, out
}

// Methods applies signatures in order, each against the text left by the
// previous ones, and returns the final text with one outcome per fragment.
func Methods(t Text, signatures []string) (Text, []Outcome) {
	outcomes := make([]Outcome, 0, len(signatures))
	for _, sig := range signatures {
		var out Outcome
		t, out = DeleteMethod(t, sig)
		outcomes = append(outcomes, out)
	}
	return t, outcomes
}

// PruneMethods is Methods over raw file content.
func PruneMethods(text string, signatures []string) (string, []Outcome) {
	t, outcomes := Methods(ParseText(text), signatures)
	return t.String(), outcomes
}
