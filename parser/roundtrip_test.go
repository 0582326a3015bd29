package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/posixcore/sh/token"
)

// ignorePos treats every token.Pos as equal to every other: two programs
// parsed from differently-spaced (but otherwise identical) source are
// structurally equal trees per spec.md §8's round-trip property, which is
// explicit that position/whitespace is not part of that equality.
var ignorePos = cmp.Comparer(func(a, b token.Pos) bool { return true })

// assertSameTree parses both sources and fails with a field-level diff if
// the resulting trees aren't structurally equal modulo position.
func assertSameTree(t *testing.T, a, b string) {
	t.Helper()
	progA := parse(t, a)
	progB := parse(t, b)
	if diff := cmp.Diff(progA, progB, ignorePos); diff != "" {
		t.Fatalf("parse(%q) != parse(%q) (-a +b):\n%s", a, b, diff)
	}
}

func TestRoundTripIgnoresExtraWhitespace(t *testing.T) {
	assertSameTree(t, "echo  hello   world\n", "echo hello world\n")
}

func TestRoundTripIgnoresBlankLines(t *testing.T) {
	assertSameTree(t, "\n\necho hi\n\n\n", "echo hi\n")
}

func TestRoundTripIgnoresLineContinuation(t *testing.T) {
	assertSameTree(t, "echo hi \\\nthere\n", "echo hi there\n")
}

func TestRoundTripIgnoresCommentsInScript(t *testing.T) {
	assertSameTree(t, "echo hi # a trailing remark\n", "echo hi\n")
}

func TestRoundTripDiffersOnRealChange(t *testing.T) {
	progA := parse(t, "echo one\n")
	progB := parse(t, "echo two\n")
	if diff := cmp.Diff(progA, progB, ignorePos); diff == "" {
		t.Fatalf("expected parse(%q) and parse(%q) to differ, got none", "echo one", "echo two")
	}
}

func TestRoundTripCompoundCommand(t *testing.T) {
	a := "if  true\nthen\n  echo yes\nfi\n"
	b := "if true; then echo yes; fi\n"
	assertSameTree(t, a, b)
}
