package prune

import (
	"errors"
	"strings"
	"testing"
)

func join(lines ...string) string {
	return strings.Join(lines, "\n")
}

var setterGetter = []string{
	"void setX(int x) {",
	"  this.x = x;",
	"}",
	"void getY() {",
	"  return y;",
	"}",
}

// TestDeleteFirstMethod covers the basic setter/getter scenario
func TestDeleteFirstMethod(t *testing.T) {
	got, outcomes := PruneMethods(join(setterGetter...), []string{"setX(int x)"})

	want := join("void getY() {", "  return y;", "}")
	if got != want {
		t.Errorf("PruneMethods result mismatch\n got: %q\nwant: %q", got, want)
	}
	if len(outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Status != Deleted {
		t.Errorf("Expected status %s, got %s", Deleted, outcomes[0].Status)
	}
	if outcomes[0].Span != (Span{Start: 0, End: 2}) {
		t.Errorf("Expected span 0-2, got %s", outcomes[0].Span)
	}
}

// TestAbsentSignatureLeavesTextUnchanged covers SignatureNotFound
func TestAbsentSignatureLeavesTextUnchanged(t *testing.T) {
	in := join(setterGetter...)
	got, outcomes := PruneMethods(in, []string{"setZ"})

	if got != in {
		t.Errorf("Text changed for absent signature\n got: %q\nwant: %q", got, in)
	}
	if outcomes[0].Status != NotFound {
		t.Errorf("Expected status %s, got %s", NotFound, outcomes[0].Status)
	}
	if !errors.Is(outcomes[0].Err, ErrSignatureNotFound) {
		t.Errorf("Expected ErrSignatureNotFound, got %v", outcomes[0].Err)
	}
	if outcomes[0].Resolved() {
		t.Error("Absent signature must not be resolved")
	}
}

// TestNestedBlockTruncatesAtFirstBrace pins the first-closing-brace heuristic
func TestNestedBlockTruncatesAtFirstBrace(t *testing.T) {
	in := join(
		"void f() {",
		"  if (true) {",
		"  }",
		"  doWork();",
		"}",
	)
	got, outcomes := PruneMethods(in, []string{"void f()"})

	want := join("  doWork();", "}")
	if got != want {
		t.Errorf("Nested block result mismatch\n got: %q\nwant: %q", got, want)
	}
	if outcomes[0].Span != (Span{Start: 0, End: 2}) {
		t.Errorf("Expected span 0-2, got %s", outcomes[0].Span)
	}
}

// TestUnterminatedBlockIsSkipped verifies the text is unchanged when no brace follows
func TestUnterminatedBlockIsSkipped(t *testing.T) {
	in := join(
		"}",
		"void open() {",
		"  work();",
	)
	got, outcomes := PruneMethods(in, []string{"void open()"})

	if got != in {
		t.Errorf("Text changed for unterminated block\n got: %q\nwant: %q", got, in)
	}
	if outcomes[0].Status != Unbounded {
		t.Fatalf("Expected status %s, got %s", Unbounded, outcomes[0].Status)
	}
	if !errors.Is(outcomes[0].Err, ErrUnterminatedBlock) {
		t.Errorf("Expected ErrUnterminatedBlock, got %v", outcomes[0].Err)
	}
	if outcomes[0].Span.Start != 1 {
		t.Errorf("Expected start line 1, got %d", outcomes[0].Span.Start)
	}
}

// TestSecondApplicationIsNotFound checks idempotence of a fragment
func TestSecondApplicationIsNotFound(t *testing.T) {
	in := join(setterGetter...)
	once, _ := PruneMethods(in, []string{"setX(int x)"})
	twice, outcomes := PruneMethods(once, []string{"setX(int x)"})

	if twice != once {
		t.Errorf("Second application changed the text\n got: %q\nwant: %q", twice, once)
	}
	if outcomes[0].Status != NotFound {
		t.Errorf("Expected status %s, got %s", NotFound, outcomes[0].Status)
	}
}

// TestSequentialRangesAreRecomputed verifies each fragment sees the edited text
func TestSequentialRangesAreRecomputed(t *testing.T) {
	in := join(
		"class A {",
		"  void a() {",
		"    one();",
		"  }",
		"  void b() {",
		"    two();",
		"  }",
		"}",
	)

	t.Run("disjoint methods", func(t *testing.T) {
		got, outcomes := PruneMethods(in, []string{"void a()", "void b()"})
		want := join("class A {", "}")
		if got != want {
			t.Errorf("Result mismatch\n got: %q\nwant: %q", got, want)
		}
		// b() starts at line 1 once a() is gone
		if outcomes[1].Span != (Span{Start: 1, End: 3}) {
			t.Errorf("Expected second span 1-3, got %s", outcomes[1].Span)
		}
	})

	t.Run("second target swallowed by first", func(t *testing.T) {
		// "one();" lives inside a(); after a() is deleted it no longer exists
		got, outcomes := PruneMethods(in, []string{"void a()", "one();"})
		want := join("class A {", "  void b() {", "    two();", "  }", "}")
		if got != want {
			t.Errorf("Result mismatch\n got: %q\nwant: %q", got, want)
		}
		if outcomes[1].Status != NotFound {
			t.Errorf("Expected second status %s, got %s", NotFound, outcomes[1].Status)
		}
	})

	t.Run("failure keeps earlier deletion", func(t *testing.T) {
		got, outcomes := PruneMethods(in, []string{"void b()", "missing()"})
		want := join("class A {", "  void a() {", "    one();", "  }", "}")
		if got != want {
			t.Errorf("Result mismatch\n got: %q\nwant: %q", got, want)
		}
		if outcomes[0].Status != Deleted || outcomes[1].Status != NotFound {
			t.Errorf("Unexpected statuses: %s, %s", outcomes[0].Status, outcomes[1].Status)
		}
	})
}

// TestFirstMatchOnly verifies only the first occurrence is selected
func TestFirstMatchOnly(t *testing.T) {
	in := join(
		"Texture() {",
		"}",
		"Texture(Image image) {",
		"}",
	)
	got, outcomes := PruneMethods(in, []string{"Texture("})
	want := join("Texture(Image image) {", "}")
	if got != want {
		t.Errorf("Result mismatch\n got: %q\nwant: %q", got, want)
	}
	if outcomes[0].Span != (Span{Start: 0, End: 1}) {
		t.Errorf("Expected span 0-1, got %s", outcomes[0].Span)
	}
}

// TestSingleLineMethod verifies a signature line that also closes the block
func TestSingleLineMethod(t *testing.T) {
	in := join("a();", "int getX() { return x; }", "b();")
	got, outcomes := PruneMethods(in, []string{"getX"})
	if got != join("a();", "b();") {
		t.Errorf("Unexpected result %q", got)
	}
	if outcomes[0].Span.Len() != 1 {
		t.Errorf("Expected 1-line span, got %d", outcomes[0].Span.Len())
	}
}

// TestTerminatorsPreserved covers trailing newlines and CRLF content
func TestTerminatorsPreserved(t *testing.T) {
	tests := []struct {
		name string
		in   string
		sig  string
		want string
	}{
		{
			name: "trailing newline kept",
			in:   "a();\nvoid x() {\n}\nb();\n",
			sig:  "void x()",
			want: "a();\nb();\n",
		},
		{
			name: "no trailing newline kept",
			in:   "a();\nvoid x() {\n}\nb();",
			sig:  "void x()",
			want: "a();\nb();",
		},
		{
			name: "last line deleted keeps previous terminator",
			in:   "a();\nvoid x() {\n}",
			sig:  "void x()",
			want: "a();\n",
		},
		{
			name: "whole file deleted",
			in:   "void x() {\n}\n",
			sig:  "void x()",
			want: "",
		},
		{
			name: "crlf round trip",
			in:   "a();\r\nvoid x() {\r\n}\r\nb();\r\n",
			sig:  "void x()",
			want: "a();\r\nb();\r\n",
		},
		{
			name: "blank lines untouched",
			in:   "\n\nvoid x() {\n}\n\n",
			sig:  "void x()",
			want: "\n\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := PruneMethods(tt.in, []string{tt.sig})
			if got != tt.want {
				t.Errorf("PruneMethods(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestParseTextRoundTrip verifies untouched text is reproduced exactly
func TestParseTextRoundTrip(t *testing.T) {
	inputs := []string{"", "\n", "a", "a\n", "a\nb", "a\n\nb\n", "a\r\nb\r\n"}
	for _, in := range inputs {
		if got := ParseText(in).String(); got != in {
			t.Errorf("ParseText(%q).String() = %q", in, got)
		}
	}

	if n := ParseText("").Len(); n != 0 {
		t.Errorf("Expected 0 lines for empty text, got %d", n)
	}
	if n := ParseText("a\nb\n").Len(); n != 2 {
		t.Errorf("Expected 2 lines, got %d", n)
	}
}

// TestTextLines verifies line contents exclude terminators and are returned as a copy
func TestTextLines(t *testing.T) {
	text := ParseText("a\r\n\nb\n")

	lines := text.Lines()
	want := []string{"a\r", "", "b"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, expected %q", i, lines[i], want[i])
		}
	}

	lines[0] = "changed"
	if got := text.Lines()[0]; got != "a\r" {
		t.Errorf("Mutating the returned slice changed the text: %q", got)
	}
}

// TestEmptySignature verifies an empty fragment never deletes anything
func TestEmptySignature(t *testing.T) {
	in := join(setterGetter...)
	got, outcomes := PruneMethods(in, []string{""})
	if got != in {
		t.Errorf("Empty signature changed the text")
	}
	if outcomes[0].Status != Invalid || !errors.Is(outcomes[0].Err, ErrEmptySignature) {
		t.Errorf("Expected invalid outcome, got %s (%v)", outcomes[0].Status, outcomes[0].Err)
	}
}

// TestEmptyTextNotFound verifies fragments against empty text
func TestEmptyTextNotFound(t *testing.T) {
	got, outcomes := PruneMethods("", []string{"x"})
	if got != "" || outcomes[0].Status != NotFound {
		t.Errorf("Expected unchanged empty text and not found, got %q %s", got, outcomes[0].Status)
	}
}

// TestOutcomeLogString checks the log formatting per status
func TestOutcomeLogString(t *testing.T) {
	tests := []struct {
		out  Outcome
		want string
	}{
		{Outcome{Signature: "f()", Status: Deleted, Span: Span{Start: 2, End: 4}}, `deleted lines 2-4 (3 lines) signature="f()"`},
		{Outcome{Signature: "f()", Status: NotFound, Span: Span{Start: -1, End: -1}}, `signature_not_found: signature="f()"`},
		{Outcome{Signature: "f()", Status: Unbounded, Span: Span{Start: 7, End: -1}}, `unterminated_block: start line 7 signature="f()"`},
	}
	for _, tt := range tests {
		if got := tt.out.ToLogString(); got != tt.want {
			t.Errorf("ToLogString() = %q, expected %q", got, tt.want)
		}
	}
}
