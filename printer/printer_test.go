package printer

import (
	"strings"
	"testing"

	"github.com/frankban/quicktest"
	"github.com/pkg/diff"

	"github.com/posixcore/sh/parser"
)

func render(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseProgram(strings.NewReader(src), "test")
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	var sb strings.Builder
	Fprint(&sb, prog)
	return sb.String()
}

// assertSameTree renders both sources and fails with a unified diff (via
// pkg/diff, the library SPEC_FULL.md assigns to this package's round-trip
// tests) if they don't produce byte-identical trees. Fprint has no node IDs
// or positions in its output, so two structurally equal trees always render
// identically — this makes Fprint's own output the round-trip oracle spec.md
// §8 asks for, in place of re-parsing (the tree dump isn't shell syntax).
func assertSameTree(t *testing.T, a, b string) {
	t.Helper()
	got, want := render(t, a), render(t, b)
	var out strings.Builder
	if err := diff.Text("a", "b", got, want, &out); err != nil {
		t.Fatalf("diff.Text: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("parse(%q) and parse(%q) rendered differently:\n%s", a, b, out.String())
	}
}

func TestFprintDeterministic(t *testing.T) {
	src := "for x in a b c; do if [ \"$x\" = b ]; then echo hit; fi; done\n"
	assertSameTree(t, src, src)
}

func TestFprintRoundTripIgnoresWhitespace(t *testing.T) {
	assertSameTree(t, "echo  hello   world\n", "echo hello world\n")
}

func TestFprintRoundTripIgnoresComments(t *testing.T) {
	assertSameTree(t, "echo hi # trailing remark\n", "echo hi\n")
}

func TestFprintDiffersOnRealChange(t *testing.T) {
	c := quicktest.New(t)
	got := render(t, "echo one\n")
	want := render(t, "echo two\n")
	var out strings.Builder
	err := diff.Text("got", "want", got, want, &out)
	c.Assert(err, quicktest.IsNil)
	c.Assert(out.Len() > 0, quicktest.Equals, true)
	c.Assert(out.String(), quicktest.Contains, "one")
	c.Assert(out.String(), quicktest.Contains, "two")
}

func TestFprintSimpleCommandShape(t *testing.T) {
	c := quicktest.New(t)
	got := render(t, "echo hello\n")
	c.Assert(got, quicktest.Contains, "simple_command")
	c.Assert(got, quicktest.Contains, "word_string hello")
}

func TestFprintPipelineShape(t *testing.T) {
	c := quicktest.New(t)
	got := render(t, "echo hi | cat\n")
	c.Assert(got, quicktest.Contains, "pipeline")
}
