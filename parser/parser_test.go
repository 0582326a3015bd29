package parser

import (
	"strings"
	"testing"

	"github.com/frankban/quicktest"

	"github.com/posixcore/sh/ast"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseProgram(strings.NewReader(src), "test")
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	return prog
}

func simpleName(t *testing.T, cl *ast.CommandList) string {
	t.Helper()
	pipe, ok := cl.List.(*ast.Pipeline)
	if !ok || len(pipe.Commands) != 1 {
		t.Fatalf("not a single-stage pipeline: %#v", cl.List)
	}
	simple, ok := pipe.Commands[0].Cmd.(*ast.Simple)
	if !ok {
		t.Fatalf("not a simple command: %#v", pipe.Commands[0].Cmd)
	}
	str, ok := simple.Name.(*ast.String)
	if !ok {
		t.Fatalf("command name is not a plain string: %#v", simple.Name)
	}
	return str.Value
}

func TestParseSimpleCommand(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "echo hello world\n")
	c.Assert(prog.Stmts, quicktest.HasLen, 1)
	c.Assert(simpleName(t, prog.Stmts[0]), quicktest.Equals, "echo")

	pipe := prog.Stmts[0].List.(*ast.Pipeline)
	simple := pipe.Commands[0].Cmd.(*ast.Simple)
	c.Assert(simple.Args, quicktest.HasLen, 2)
}

func TestParsePipeline(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "echo hi | tr a-z A-Z | wc -l\n")
	c.Assert(prog.Stmts, quicktest.HasLen, 1)
	pipe, ok := prog.Stmts[0].List.(*ast.Pipeline)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(pipe.Commands, quicktest.HasLen, 3)
}

func TestParseAndOr(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "false && echo a || echo b\n")
	c.Assert(prog.Stmts, quicktest.HasLen, 1)
	top, ok := prog.Stmts[0].List.(*ast.Binop)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(top.Op, quicktest.Equals, ast.BinAnd)
	right, ok := top.Right.(*ast.Binop)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(right.Op, quicktest.Equals, ast.BinOr)
}

func TestParseIf(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "if true; then echo yes; else echo no; fi\n")
	c.Assert(prog.Stmts, quicktest.HasLen, 1)
	pipe := prog.Stmts[0].List.(*ast.Pipeline)
	ifc, ok := pipe.Commands[0].Cmd.(*ast.If)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(ifc.Cond, quicktest.HasLen, 1)
	c.Assert(ifc.Body, quicktest.HasLen, 1)
	c.Assert(ifc.ElseStmts, quicktest.HasLen, 1)
}

func TestParseFor(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "for x in a b c; do echo $x; done\n")
	pipe := prog.Stmts[0].List.(*ast.Pipeline)
	f, ok := pipe.Commands[0].Cmd.(*ast.For)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(f.Name, quicktest.Equals, "x")
	c.Assert(f.List, quicktest.HasLen, 3)
}

func TestParseCase(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "case $x in a) echo a ;; b|c) echo bc ;; esac\n")
	pipe := prog.Stmts[0].List.(*ast.Pipeline)
	cs, ok := pipe.Commands[0].Cmd.(*ast.Case)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(cs.Items, quicktest.HasLen, 2)
	c.Assert(cs.Items[1].Patterns, quicktest.HasLen, 2)
}

func TestParseFuncDecl(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "greet() { echo hi; }\n")
	pipe := prog.Stmts[0].List.(*ast.Pipeline)
	fn, ok := pipe.Commands[0].Cmd.(*ast.FuncDecl)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(fn.Name, quicktest.Equals, "greet")
}

func TestParseRedirects(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "echo hi > out.txt 2>> err.txt\n")
	pipe := prog.Stmts[0].List.(*ast.Pipeline)
	stmt := pipe.Commands[0].Cmd.(*ast.Simple)
	c.Assert(stmt.Redirs, quicktest.HasLen, 2)
	c.Assert(stmt.Redirs[0].Op, quicktest.Equals, ast.RedirGreat)
	c.Assert(stmt.Redirs[1].Op, quicktest.Equals, ast.RedirAppend)
	c.Assert(stmt.Redirs[1].Fd, quicktest.Equals, 2)
}

func TestParseBackground(t *testing.T) {
	c := quicktest.New(t)
	prog := parse(t, "sleep 1 &\necho done\n")
	c.Assert(prog.Stmts, quicktest.HasLen, 2)
	c.Assert(prog.Stmts[0].Ampersand, quicktest.Equals, true)
	c.Assert(prog.Stmts[1].Ampersand, quicktest.Equals, false)
}

func TestParseSyntaxError(t *testing.T) {
	c := quicktest.New(t)
	_, err := ParseProgram(strings.NewReader("if true; then\n"), "test")
	c.Assert(err, quicktest.Not(quicktest.IsNil))
}

func TestParseWordSingleQuoted(t *testing.T) {
	c := quicktest.New(t)
	w, err := ParseWord(strings.NewReader(`'hello world'`), WordName)
	c.Assert(err, quicktest.IsNil)
	str, ok := w.(*ast.String)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(str.Value, quicktest.Equals, "hello world")
	c.Assert(str.SingleQuoted, quicktest.Equals, true)
}
