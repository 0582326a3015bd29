package expand

import (
	"fmt"
	"testing"

	"github.com/frankban/quicktest"

	"github.com/posixcore/sh/ast"
)

// fakeEnv is a minimal expand.Env for exercising the pipeline without
// pulling in package state.
type fakeEnv struct {
	vars  map[string]string
	args  []string
	subst func(*ast.Program) (string, error)
}

func (e *fakeEnv) Get(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *fakeEnv) Set(name, value string) {
	if e.vars == nil {
		e.vars = map[string]string{}
	}
	e.vars[name] = value
}

func (e *fakeEnv) Positional(i int) (string, bool) {
	if i < 1 || i > len(e.args) {
		return "", false
	}
	return e.args[i-1], true
}

func (e *fakeEnv) NumPositional() int { return len(e.args) }

func (e *fakeEnv) Special(name string) (string, bool) {
	switch name {
	case "?":
		return "0", true
	case "0":
		return "posh", true
	}
	return "", false
}

func (e *fakeEnv) RunCmdSubst(prog *ast.Program) (string, error) {
	if e.subst != nil {
		return e.subst(prog)
	}
	return "", fmt.Errorf("no command substitution support in this test")
}

func str(s string) ast.Word { return &ast.String{Value: s} }

func sq(s string) ast.Word { return &ast.String{Value: s, SingleQuoted: true} }

func list(dq bool, children ...ast.Word) ast.Word {
	return &ast.List{Children: children, DoubleQuoted: dq}
}

func param(name string) ast.Word { return &ast.Parameter{Name: name} }

func TestFieldsSplitsOnIFS(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"x": "a  b\tc"}}
	got, err := Fields([]ast.Word{param("x")}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"a", "b", "c"})
}

func TestFieldsQuotedPreservesWhitespace(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"x": "a  b"}}
	w := list(true, param("x"))
	got, err := Fields([]ast.Word{w}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"a  b"})
}

func TestFieldsEmptyIFSDisablesSplitting(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"x": "a b c", "IFS": ""}}
	got, err := Fields([]ast.Word{param("x")}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"a b c"})
}

func TestFieldsAtVsStarQuoted(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{args: []string{"a b", "c"}, vars: map[string]string{"IFS": " \t\n"}}

	gotAt, err := Fields([]ast.Word{list(true, param("@"))}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(gotAt, quicktest.DeepEquals, []string{"a b", "c"})

	gotStar, err := Fields([]ast.Word{list(true, param("*"))}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(gotStar, quicktest.DeepEquals, []string{"a b c"})
}

func TestParamDefaultOperator(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"x": ""}}
	p := &ast.Parameter{Name: "x", Op: ast.ParamMinus, Colon: true, Arg: str("fallback")}
	got, err := Fields([]ast.Word{p}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"fallback"})
}

func TestParamAssignOperator(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{}}
	p := &ast.Parameter{Name: "x", Op: ast.ParamEqual, Colon: true, Arg: str("created")}
	got, err := Fields([]ast.Word{p}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"created"})
	v, _ := env.Get("x")
	c.Assert(v, quicktest.Equals, "created")
}

func TestParamErrorOperator(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{}
	p := &ast.Parameter{Name: "x", Op: ast.ParamQuestion, Colon: true, Arg: str("must be set")}
	_, err := Fields([]ast.Word{p}, env, true)
	c.Assert(err, quicktest.ErrorMatches, "must be set")
}

func TestParamTrimOperators(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"x": "foo.bar.baz"}}

	shortest := &ast.Parameter{Name: "x", Op: ast.ParamHash, Arg: str("*.")}
	got, err := Literal(shortest, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, "bar.baz")

	longest := &ast.Parameter{Name: "x", Op: ast.ParamDHash, Arg: str("*.")}
	got, err = Literal(longest, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, "baz")

	suffixShort := &ast.Parameter{Name: "x", Op: ast.ParamPercent, Arg: str(".*")}
	got, err = Literal(suffixShort, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, "foo.bar")

	suffixLong := &ast.Parameter{Name: "x", Op: ast.ParamDPercent, Arg: str(".*")}
	got, err = Literal(suffixLong, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, "foo")
}

func TestParamLength(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"x": "hello"}}
	p := &ast.Parameter{Name: "x", Op: ast.ParamLeadingHash}
	got, err := Literal(p, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, "5")
}

func TestTildeExpansion(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"HOME": "/home/me"}}
	got, err := Fields([]ast.Word{str("~/docs")}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"/home/me/docs"})
}

func TestTildeNotExpandedInsideWord(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{vars: map[string]string{"HOME": "/home/me"}}
	w := list(false, str("a~b"))
	got, err := Fields([]ast.Word{w}, env, true)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.DeepEquals, []string{"a~b"})
}

func TestCommandSubstTrimsTrailingNewlines(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{subst: func(*ast.Program) (string, error) { return "hi\n\n", nil }}
	w := &ast.CmdSubst{Program: &ast.Program{}}
	got, err := Literal(w, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, "hi")
}

func TestPatternEscapesQuotedMeta(t *testing.T) {
	c := quicktest.New(t)
	env := &fakeEnv{}
	w := list(false, sq("*"), str("txt"))
	got, err := Pattern(w, env)
	c.Assert(err, quicktest.IsNil)
	c.Assert(got, quicktest.Equals, `\*txt`)
}
