// Package printer renders an ast.Program as a box-drawing debug tree, in the
// style of mrsh's ast_print.c: purely informational, used for diagnostics
// and round-trip testing, never for reformatting source.
package printer

import (
	"fmt"
	"io"

	"github.com/posixcore/sh/ast"
)

const (
	lLine = "│ "
	lVal  = "├─"
	lLast = "└─"
	lGap  = "  "
)

// Fprint writes prog to w as a box-drawing tree.
func Fprint(w io.Writer, prog *ast.Program) {
	p := &printer{w: w}
	p.printf("program\n")
	p.commandLists(prog.Stmts, "")
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func subPrefix(prefix string, last bool) string {
	if last {
		return prefix + lGap
	}
	return prefix + lLine
}

func (p *printer) prefix(prefix string, last bool) {
	if last {
		p.printf("%s%s", prefix, lLast)
	} else {
		p.printf("%s%s", prefix, lVal)
	}
}

func (p *printer) commandLists(body []*ast.CommandList, prefix string) {
	for i, l := range body {
		last := i == len(body)-1
		p.prefix(prefix, last)
		p.commandList(l, subPrefix(prefix, last))
	}
}

func (p *printer) commandList(l *ast.CommandList, prefix string) {
	amp := ""
	if l.Ampersand {
		amp = " &"
	}
	p.printf("command_list%s ─ ", amp)
	p.andOr(l.List, prefix)
}

func (p *printer) andOr(n ast.AndOrList, prefix string) {
	switch x := n.(type) {
	case *ast.Pipeline:
		p.pipeline(x, prefix)
	case *ast.Binop:
		p.printf("binop %s\n", x.Op)
		p.prefix(prefix, false)
		p.andOr(x.Left, subPrefix(prefix, false))
		p.prefix(prefix, true)
		p.andOr(x.Right, subPrefix(prefix, true))
	}
}

func (p *printer) pipeline(pl *ast.Pipeline, prefix string) {
	bang := ""
	if pl.Bang {
		bang = " !"
	}
	p.printf("pipeline%s\n", bang)
	for i, s := range pl.Commands {
		last := i == len(pl.Commands)-1
		p.prefix(prefix, last)
		p.stmt(s, subPrefix(prefix, last))
	}
}

func (p *printer) stmt(s *ast.Stmt, prefix string) {
	if len(s.Redirs) == 0 {
		p.command(s.Cmd, prefix)
		return
	}
	p.printf("stmt\n")
	p.prefix(prefix, false)
	p.command(s.Cmd, subPrefix(prefix, false))
	for i, r := range s.Redirs {
		last := i == len(s.Redirs)-1
		p.prefix(prefix, last)
		p.ioRedirect(r, subPrefix(prefix, last))
	}
}

func (p *printer) command(cmd ast.Command, prefix string) {
	switch x := cmd.(type) {
	case *ast.Simple:
		p.simpleCommand(x, prefix)
	case *ast.BraceGroup:
		p.printf("brace_group\n")
		p.commandLists(x.Body, prefix)
	case *ast.Subshell:
		p.printf("subshell\n")
		p.commandLists(x.Body, prefix)
	case *ast.If:
		p.ifClause(x, prefix)
	case *ast.For:
		p.forClause(x, prefix)
	case *ast.Loop:
		p.loopClause(x, prefix)
	case *ast.Case:
		p.caseClause(x, prefix)
	case *ast.FuncDecl:
		p.printf("function_definition %s ─ ", x.Name)
		p.command(x.Body, prefix)
	}
}

func (p *printer) simpleCommand(sc *ast.Simple, prefix string) {
	p.printf("simple_command\n")
	total := len(sc.Args) + len(sc.Redirs) + len(sc.Assigns)
	if sc.Name != nil {
		total++
	}
	i := 0
	next := func() bool { i++; return i == total }

	if sc.Name != nil {
		last := next()
		p.prefix(prefix, last)
		p.printf("name ─ ")
		p.word(sc.Name, subPrefix(prefix, last))
	}
	for argi, arg := range sc.Args {
		last := next()
		p.prefix(prefix, last)
		p.printf("argument %d ─ ", argi+1)
		p.word(arg, subPrefix(prefix, last))
	}
	for _, r := range sc.Redirs {
		last := next()
		p.prefix(prefix, last)
		p.ioRedirect(r, subPrefix(prefix, last))
	}
	for _, a := range sc.Assigns {
		last := next()
		p.prefix(prefix, last)
		p.assignment(a, subPrefix(prefix, last))
	}
}

func (p *printer) ifClause(ic *ast.If, prefix string) {
	p.printf("if_clause\n")
	p.prefix(prefix, false)
	p.printf("condition\n")
	p.commandLists(ic.Cond, subPrefix(prefix, false))

	last := ic.Else == nil
	p.prefix(prefix, last)
	p.printf("body\n")
	p.commandLists(ic.Body, subPrefix(prefix, last))

	if ic.Else != nil {
		p.prefix(prefix, true)
		p.printf("else_part ─ ")
		p.command(ic.Else, subPrefix(prefix, true))
	}
}

func (p *printer) forClause(fc *ast.For, prefix string) {
	p.printf("for_clause %s\n", fc.Name)
	p.prefix(prefix, false)
	p.printf("words\n")
	sub := subPrefix(prefix, false)
	for i, w := range fc.List {
		last := i == len(fc.List)-1
		p.prefix(sub, last)
		p.word(w, subPrefix(sub, last))
	}
	p.prefix(prefix, true)
	p.printf("body\n")
	p.commandLists(fc.Body, subPrefix(prefix, true))
}

func (p *printer) loopClause(lc *ast.Loop, prefix string) {
	kind := "while"
	if lc.Kind == ast.LoopUntil {
		kind = "until"
	}
	p.printf("loop_clause %s\n", kind)
	p.prefix(prefix, false)
	p.printf("condition\n")
	p.commandLists(lc.Cond, subPrefix(prefix, false))
	p.prefix(prefix, true)
	p.printf("body\n")
	p.commandLists(lc.Body, subPrefix(prefix, true))
}

func (p *printer) caseClause(cc *ast.Case, prefix string) {
	p.printf("case_clause ─ ")
	p.word(cc.Subject, prefix)
	for i, item := range cc.Items {
		last := i == len(cc.Items)-1
		p.prefix(prefix, last)
		p.printf("item\n")
		sub := subPrefix(prefix, last)
		p.prefix(sub, false)
		p.printf("patterns\n")
		psub := subPrefix(sub, false)
		for j, pat := range item.Patterns {
			plast := j == len(item.Patterns)-1
			p.prefix(psub, plast)
			p.word(pat, subPrefix(psub, plast))
		}
		p.prefix(sub, true)
		p.printf("body\n")
		p.commandLists(item.Body, subPrefix(sub, true))
	}
}

func (p *printer) ioRedirect(r *ast.Redirect, prefix string) {
	p.printf("io_redirect\n")
	p.prefix(prefix, false)
	p.printf("fd %d\n", r.Fd)
	p.prefix(prefix, false)
	p.printf("op %s\n", r.Op)
	last := true
	p.prefix(prefix, last)
	p.printf("name ─ ")
	p.word(r.Word, subPrefix(prefix, last))
}

func (p *printer) assignment(a *ast.Assign, prefix string) {
	p.printf("assignment\n")
	p.prefix(prefix, false)
	p.printf("name %s\n", a.Name)
	p.prefix(prefix, true)
	p.printf("value ─ ")
	p.word(a.Value, subPrefix(prefix, true))
}

func (p *printer) word(w ast.Word, prefix string) {
	switch x := w.(type) {
	case *ast.String:
		q := ""
		if x.SingleQuoted {
			q = " (quoted)"
		}
		p.printf("word_string%s %s\n", q, x.Value)
	case *ast.Parameter:
		p.printf("word_parameter\n")
		last := x.Op == ast.ParamNone && x.Arg == nil
		p.prefix(prefix, last)
		p.printf("name %s\n", x.Name)
		if x.Op != ast.ParamNone {
			last = x.Arg == nil
			p.prefix(prefix, last)
			colon := ""
			if x.Colon {
				colon = ":"
			}
			p.printf("op %s%s\n", colon, x.Op)
		}
		if x.Arg != nil {
			p.prefix(prefix, true)
			p.printf("arg ─ ")
			p.word(x.Arg, subPrefix(prefix, true))
		}
	case *ast.CmdSubst:
		q := ""
		if x.BackQuoted {
			q = " (quoted)"
		}
		p.prefix(prefix, true)
		p.printf("word_command%s ─ program\n", q)
		p.commandLists(x.Program.Stmts, subPrefix(prefix, true))
	case *ast.Arithmetic:
		p.printf("word_arithmetic %s\n", x.Src)
	case *ast.List:
		q := ""
		if x.DoubleQuoted {
			q = " (quoted)"
		}
		p.printf("word_list%s\n", q)
		for i, c := range x.Children {
			last := i == len(x.Children)-1
			p.prefix(prefix, last)
			p.word(c, subPrefix(prefix, last))
		}
	}
}
