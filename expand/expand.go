// Package expand implements the Shell Command Language word-expansion
// pipeline from spec.md §4.3: tilde expansion, parameter/command/arithmetic
// expansion, field splitting on $IFS, and pathname expansion. Quote removal
// falls out for free, since the AST's structural quoting (ast.String.
// SingleQuoted, ast.List.DoubleQuoted) never lets a literal quote character
// into a field value to begin with.
//
// Grounded on mrsh's shell/word.c (expand_tilde, split_fields/
// _split_fields, expand_pathnames) for the algorithm shape, and on
// mvdan-sh's expand/param.go and expand/expand.go (wordField/wordFields'
// fieldPart{val, quote} accumulator) for the Go idiom: a word flattens to a
// sequence of string parts each tagged with whether it came from a quoted
// context, and that tag alone decides whether a part is subject to field
// splitting and globbing.
package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/posixcore/sh/arithm"
	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/pattern"
)

// Env is everything the expander needs from the running shell: variable and
// positional-parameter lookup (also satisfying arithm.Env for $((...))),
// access to the handful of named special parameters, and a way to actually
// run a nested program for command substitution. *state.State plus a small
// adapter supplying RunCmdSubst is the production implementation; keeping
// this as an interface (rather than importing package state directly) is
// what lets expand avoid an import cycle with task, which must run the
// nested program to get $(...) 's stdout.
type Env interface {
	arithm.Env

	Positional(i int) (string, bool)
	NumPositional() int

	// Special resolves $$, $!, $?, $-, and $0.
	Special(name string) (string, bool)

	// RunCmdSubst executes prog in a subshell and returns its stdout with
	// any trailing newlines still attached (trimming is this package's job,
	// per POSIX "trailing newlines shall be removed").
	RunCmdSubst(prog *ast.Program) (string, error)
}

// part is one piece of a flattened word: a contiguous run of text plus
// whether it is exempt from field splitting and pathname expansion because
// it came from a quoted (or quote-equivalent, like a de-referenced "$@"
// element) context. brk forces a field boundary right after this part, used
// for the one-field-per-positional-parameter behavior of "$@".
type part struct {
	val    string
	quoted bool
	brk    bool
}

// Fields expands and field-splits a list of words into a flat argv, the
// entry point simple commands and for-loop word lists use. noGlob mirrors
// set -f (state.NoGlob): the caller decides, since the option lives in
// package state and Env deliberately doesn't expose it.
func Fields(words []ast.Word, env Env, noGlob bool) ([]string, error) {
	var out []string
	for _, w := range words {
		w = expandTilde(w, env, false)
		parts, err := flatten(w, false, env)
		if err != nil {
			return nil, err
		}
		fields := splitFields(parts, ifs(env))
		for _, f := range fields {
			out = append(out, globField(f, noGlob)...)
		}
	}
	return out, nil
}

// Assign expands a single word for name=value assignment: tilde expansion
// in assignment mode, but no field splitting and no pathname expansion
// (POSIX 2.6.2).
func Assign(w ast.Word, env Env) (string, error) {
	w = expandTilde(w, env, true)
	parts, err := flatten(w, false, env)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.val)
	}
	return sb.String(), nil
}

// Literal expands a word with no field splitting and no pathname expansion,
// for contexts like a redirection target, a here-document delimiter, or a
// case subject.
func Literal(w ast.Word, env Env) (string, error) {
	parts, err := flatten(w, false, env)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.val)
	}
	return sb.String(), nil
}

// Pattern expands a word for use as a case-item pattern: like Literal, but
// every part that came from a quoted context has its glob metacharacters
// escaped first, so a quoted "*" in a case pattern matches a literal star
// rather than acting as a wildcard. Mirrors mvdan-sh's ExpandPattern +
// escapedGlobField technique.
func Pattern(w ast.Word, env Env) (string, error) {
	parts, err := flatten(w, false, env)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		if p.quoted {
			sb.WriteString(pattern.QuoteMeta(p.val))
		} else {
			sb.WriteString(p.val)
		}
	}
	return sb.String(), nil
}

func ifs(env Env) string {
	if v, ok := env.Get("IFS"); ok {
		return v
	}
	return " \t\n"
}

// flatten resolves every Parameter/CmdSubst/Arithmetic leaf of w into text,
// returning the ordered parts that make it up. quoted is the quoting state
// inherited from an enclosing ast.List.
func flatten(w ast.Word, quoted bool, env Env) ([]part, error) {
	switch x := w.(type) {
	case *ast.String:
		q := quoted || x.SingleQuoted
		return []part{{val: x.Value, quoted: q}}, nil

	case *ast.List:
		q := quoted || x.DoubleQuoted
		var out []part
		for _, c := range x.Children {
			ps, err := flatten(c, q, env)
			if err != nil {
				return nil, err
			}
			out = append(out, ps...)
		}
		return out, nil

	case *ast.Parameter:
		return expandParameter(x, quoted, env)

	case *ast.CmdSubst:
		if env == nil {
			return nil, fmt.Errorf("command substitution not available")
		}
		out, err := env.RunCmdSubst(x.Program)
		if err != nil {
			return nil, err
		}
		out = strings.TrimRight(out, "\n")
		return []part{{val: out, quoted: quoted}}, nil

	case *ast.Arithmetic:
		n, err := arithm.Eval(x.Src, env)
		if err != nil {
			return nil, err
		}
		return []part{{val: strconv.FormatInt(n, 10), quoted: quoted}}, nil

	default:
		return nil, fmt.Errorf("expand: unhandled word type %T", w)
	}
}

// splitFields turns a flattened part list into fields, mirroring mrsh's
// _split_fields/split_fields byte-for-byte: IFS whitespace characters
// collapse runs of separators without generating empty fields, while IFS
// non-whitespace characters each delimit a field on their own (so "a,,b"
// with IFS="," splits into "a", "", "b"). A quoted run never splits and
// always counts as "not a separator" for its neighbors, so "$x"y"z" with y
// empty-but-quoted still joins into one field rather than breaking it.
//
// brk forces an extra field boundary right after a part: "$@" unquoted
// needs this, since each positional parameter is its own field regardless
// of IFS even when a positional is itself empty.
func splitFields(parts []part, ifsStr string) [][]part {
	if ifsStr == "" {
		// An empty $IFS disables splitting entirely: the whole word,
		// even if empty, is exactly one field (mrsh's ifs[0]=='\0' case).
		return [][]part{parts}
	}
	var ifsNonSpace strings.Builder
	for _, r := range ifsStr {
		if r != ' ' && r != '\t' && r != '\n' {
			ifsNonSpace.WriteRune(r)
		}
	}
	nonSpace := ifsNonSpace.String()

	var fields [][]part
	var cur []part
	var text strings.Builder
	inIFS := true
	inIFSNonSpace := false

	flushText := func() {
		if text.Len() > 0 {
			cur = append(cur, part{val: text.String()})
			text.Reset()
		}
	}
	flushField := func() {
		flushText()
		fields = append(fields, cur)
		cur = nil
	}

	for _, p := range parts {
		if p.quoted {
			flushText()
			cur = append(cur, part{val: p.val, quoted: true})
			inIFS, inIFSNonSpace = false, false
			if p.brk {
				flushField()
				inIFS = true
			}
			continue
		}
		for i := 0; i < len(p.val); i++ {
			c := p.val[i]
			if strings.IndexByte(ifsStr, c) < 0 {
				text.WriteByte(c)
				inIFS, inIFSNonSpace = false, false
				continue
			}
			isNonSpace := strings.IndexByte(nonSpace, c) >= 0
			if !inIFS || (isNonSpace && inIFSNonSpace) {
				flushField()
				inIFS, inIFSNonSpace = true, isNonSpace
			} else if isNonSpace {
				inIFSNonSpace = true
			}
		}
		if p.brk {
			flushField()
			inIFS = true
		}
	}
	if !inIFS {
		flushField()
	}
	return fields
}
