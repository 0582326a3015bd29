// Package parser implements the Shell Command Language's recursive-descent
// parser, with the lexer fused into the parser rather than run as a
// separate pass: lookahead is peeking into a dynamic byte buffer fed lazily
// from the input stream (spec.md §4.1).
package parser

import (
	"fmt"
	"io"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/token"
)

// Parser holds all state for one parse: the input reader, the refillable
// lookahead buffer, current position, error slot, and alias-substitution
// callback.
type Parser struct {
	buf  *buffer
	name string

	line, col int

	err *ParseError

	// Alias resolves a command-name token to its textual expansion. Nil
	// disables alias expansion entirely.
	Alias AliasFunc

	activeAliases []aliasExpansion

	heredocs []*ast.Redirect // pending heredocs to read after the current line
}

// New creates a Parser reading source named name from r.
func New(r io.Reader, name string) *Parser {
	return &Parser{
		buf:  newBuffer(r),
		name: name,
		line: 1,
		col:  1,
	}
}

// ParseProgram parses a whole shell program: parse_program(source) from
// spec.md §4.1.
func ParseProgram(r io.Reader, name string) (*ast.Program, error) {
	p := New(r, name)
	prog := p.program()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// WordMode selects tilde-expansion-relevant parsing behaviour; it is
// threaded through to the expander, not used by the grammar itself.
type WordMode int

const (
	WordName WordMode = iota
	WordAssignment
)

// ParseWord parses a single standalone word: parse_word(source, mode) from
// spec.md §4.1. mode is not interpreted by the parser (tilde-expansion
// mode only matters to the expander) but is accepted for interface parity.
func ParseWord(r io.Reader, _ WordMode) (ast.Word, error) {
	p := New(r, "")
	w := p.word(false)
	if p.err != nil {
		return nil, p.err
	}
	return w, nil
}

func (p *Parser) pos() token.Pos { return token.Pos(p.buf.pos + 1) }

// fail records the first syntax error; once set, every production
// short-circuits to failure without further input advancement (spec.md
// §4.1 "Error semantics").
func (p *Parser) fail(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Line: p.line, Column: p.col, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) failed() bool { return p.err != nil }

// advance consumes and returns the next byte, updating line/column. \r\n,
// \n, and \r are all treated as a single newline (spec.md §4.1).
func (p *Parser) advance() (byte, bool) {
	b, ok := p.buf.readByte()
	if !ok {
		return 0, false
	}
	switch b {
	case '\r':
		if nb, ok2 := p.buf.peekByte(0); ok2 && nb == '\n' {
			p.buf.readByte()
		}
		p.line++
		p.col = 1
	case '\n':
		p.line++
		p.col = 1
	default:
		p.col++
	}
	return b, true
}

func (p *Parser) peek(i int) (byte, bool) { return p.buf.peekByte(i) }

func (p *Parser) peekStr(s string) bool {
	bs := p.buf.peek(len(s))
	return string(bs) == s
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func isWordBreak(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', ';', '&', '>', '<', '|', '(', ')':
		return true
	}
	return false
}

// skipBlanks consumes spaces and tabs (not newlines), and backslash-newline
// line continuations.
func (p *Parser) skipBlanks() {
	for {
		b, ok := p.peek(0)
		if ok && b == '\\' && p.peekStr("\\\n") {
			p.advance()
			p.advance()
			continue
		}
		if !ok || !isBlank(b) {
			return
		}
		p.advance()
	}
}

// skipBlanksAndComment additionally consumes a trailing # comment.
func (p *Parser) skipBlanksAndComment() {
	p.skipBlanks()
	if b, ok := p.peek(0); ok && b == '#' {
		for {
			b, ok := p.peek(0)
			if !ok || b == '\n' {
				return
			}
			p.advance()
		}
	}
}

// skipNewlines consumes newlines, blanks, and comments — the "newline*"
// production used after && / || / | and inside compound-command headers.
func (p *Parser) skipNewlines() {
	for {
		p.skipBlanksAndComment()
		b, ok := p.peek(0)
		if !ok || (b != '\n' && b != '\r') {
			return
		}
		p.advance()
	}
}

func (p *Parser) atEOF() bool {
	p.skipBlanks()
	return p.buf.atEOF()
}

// program := cmdlist* EOF
func (p *Parser) program() *ast.Program {
	prog := &ast.Program{Name: p.name}
	for {
		p.skipNewlines()
		p.consumeSemicolons()
		p.skipNewlines()
		if p.failed() || p.atEOF() {
			break
		}
		cl := p.commandList()
		if p.failed() {
			break
		}
		if cl != nil {
			prog.Stmts = append(prog.Stmts, cl)
		}
	}
	return prog
}

// consumeSemicolons eats stray `;` separators between command lists that
// skipNewlines alone wouldn't (e.g. blank statements like ";;" at top
// level are not POSIX, but leading/trailing ';' around newlines are fine).
func (p *Parser) consumeSemicolons() {
	for {
		p.skipBlanks()
		b, ok := p.peek(0)
		if !ok || b != ';' {
			return
		}
		p.advance()
	}
}

// cmdlist := andor (';'|'&'|newline)?
func (p *Parser) commandList() *ast.CommandList {
	list := p.andOr()
	if p.failed() || list == nil {
		return nil
	}
	cl := &ast.CommandList{List: list}
	p.skipBlanks()
	if b, ok := p.peek(0); ok {
		switch b {
		case '&':
			p.advance()
			cl.Ampersand = true
		case ';':
			if !p.peekStr(";;") { // ";;" ends a case item; caseClause takes it
				p.advance()
			}
		}
	}
	p.maybeConsumeLineEnd()
	return cl
}

// andor := pipeline (('&&'|'||') newline* pipeline)*
// Right-associative per spec.md §3: and-or lists are folded from the right.
func (p *Parser) andOr() ast.AndOrList {
	first := p.pipeline()
	if p.failed() || first == nil {
		return nil
	}
	var ops []token.Pos
	var kinds []ast.BinOp
	nodes := []ast.AndOrList{first}
	for {
		p.skipBlanks()
		var op ast.BinOp
		if p.peekStr("&&") {
			op = ast.BinAnd
		} else if p.peekStr("||") {
			op = ast.BinOr
		} else {
			break
		}
		opPos := p.pos()
		p.advance()
		p.advance()
		p.skipNewlines()
		next := p.pipeline()
		if p.failed() {
			return nil
		}
		if next == nil {
			p.fail("expected command after %q", op)
			return nil
		}
		ops = append(ops, opPos)
		kinds = append(kinds, op)
		nodes = append(nodes, next)
	}
	// fold right-associatively: a OP1 b OP2 c => a OP1 (b OP2 c)
	result := nodes[len(nodes)-1]
	for i := len(ops) - 1; i >= 0; i-- {
		result = &ast.Binop{OpPos: ops[i], Op: kinds[i], Left: nodes[i], Right: result}
	}
	return result
}

// pipeline := '!'? command ('|' newline* command)*
func (p *Parser) pipeline() *ast.Pipeline {
	p.skipBlanks()
	start := p.pos()
	bang := false
	if b, ok := p.peek(0); ok && b == '!' && p.wordBreakAfter(1) {
		bang = true
		p.advance()
		p.skipBlanks()
	}
	first := p.stmt()
	if p.failed() {
		return nil
	}
	if first == nil {
		if bang {
			p.fail("expected command after '!'")
		}
		return nil
	}
	pl := &ast.Pipeline{Position: start, Bang: bang, Commands: []*ast.Stmt{first}}
	for {
		p.skipBlanks()
		if b, ok := p.peek(0); !ok || b != '|' || p.peekStr("||") {
			break
		}
		p.advance()
		p.skipNewlines()
		next := p.stmt()
		if p.failed() {
			return nil
		}
		if next == nil {
			p.fail("expected command after '|'")
			return nil
		}
		pl.Commands = append(pl.Commands, next)
	}
	return pl
}

func (p *Parser) wordBreakAfter(i int) bool {
	b, ok := p.peek(i)
	return !ok || isWordBreak(b)
}

// stmt wraps a Command together with any trailing redirects attached at
// pipeline-element position (e.g. `{ ...; } >f`).
func (p *Parser) stmt() *ast.Stmt {
	p.skipBlanks()
	start := p.pos()
	cmd := p.command()
	if p.failed() || cmd == nil {
		return nil
	}
	s := &ast.Stmt{Position: start, Cmd: cmd}
	for {
		p.skipBlanks()
		r := p.maybeRedirect()
		if r == nil {
			break
		}
		s.Redirs = append(s.Redirs, r)
	}
	return s
}
