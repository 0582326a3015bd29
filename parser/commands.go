package parser

import (
	"github.com/posixcore/sh/ast"
)

// reservedAt reports whether the upcoming literal token, if any, is r and
// is followed by a word break — i.e. it is usable as a reserved word here.
// Reservedness is contextual: only the first token of a command position
// may be a reserved word (spec.md §4.1).
func (p *Parser) reservedAt(r string) bool {
	return p.peekStr(r) && p.wordBreakAfter(len(r))
}

func (p *Parser) consumeReserved(r string) {
	for range r {
		p.advance()
	}
}

// command := simple | brace | subshell | if | for | while | until | case | funcdef
func (p *Parser) command() ast.Command {
	p.skipBlanks()
	switch {
	case p.reservedAt("{"):
		return p.braceGroup()
	case p.peek0() == '(':
		return p.subshell()
	case p.reservedAt("if"):
		return p.ifClause()
	case p.reservedAt("for"):
		return p.forClause()
	case p.reservedAt("while"):
		return p.loopClause(ast.LoopWhile)
	case p.reservedAt("until"):
		return p.loopClause(ast.LoopUntil)
	case p.reservedAt("case"):
		return p.caseClause()
	}
	return p.simpleOrFuncDecl()
}

func (p *Parser) peek0() byte {
	b, _ := p.peek(0)
	return b
}

// compoundList parses a compound-list: one or more command lists, used as
// the body of if/for/while/until/case/brace/subshell. term is the set of
// reserved words (or "" for none besides EOF) that stop the list.
func (p *Parser) compoundList(terms ...string) []*ast.CommandList {
	var body []*ast.CommandList
	for {
		p.skipNewlines()
		if p.peekStr(";;") { // end of a case item body
			return body
		}
		p.consumeSemicolons()
		p.skipNewlines()
		if p.failed() || p.buf.atEOF() {
			return body
		}
		stop := false
		for _, t := range terms {
			if p.reservedAt(t) {
				stop = true
			}
		}
		if stop {
			return body
		}
		cl := p.commandList()
		if p.failed() {
			return body
		}
		if cl == nil {
			return body
		}
		body = append(body, cl)
	}
}

func (p *Parser) expectReserved(r string) {
	p.skipNewlines()
	if !p.reservedAt(r) {
		p.fail("expected %q", r)
		return
	}
	p.consumeReserved(r)
}

func (p *Parser) braceGroup() ast.Command {
	start := p.pos()
	p.consumeReserved("{")
	body := p.compoundList("}")
	rpos := p.pos()
	p.expectReserved("}")
	_ = start
	return &ast.BraceGroup{Lbrace: start, Rbrace: rpos, Body: body}
}

func (p *Parser) subshell() ast.Command {
	start := p.pos()
	p.advance() // (
	body := p.compoundList()
	p.skipNewlines()
	if p.peek0() != ')' {
		p.fail("expected ')'")
		return nil
	}
	rpos := p.pos()
	p.advance()
	return &ast.Subshell{Lparen: start, Rparen: rpos, Body: body}
}

func (p *Parser) ifClause() ast.Command {
	start := p.pos()
	p.consumeReserved("if")
	cond := p.compoundList("then")
	p.expectReserved("then")
	body := p.compoundList("elif", "else", "fi")
	ic := &ast.If{Position: start, Cond: cond, Body: body}
	switch {
	case p.reservedAt("elif"):
		p.consumeReserved("elif")
		elifCond := p.compoundList("then")
		p.expectReserved("then")
		elifBody := p.compoundList("elif", "else", "fi")
		ic.Else = p.buildElif(elifCond, elifBody)
	case p.reservedAt("else"):
		p.consumeReserved("else")
		ic.ElseStmts = p.compoundList("fi")
	}
	p.expectReserved("fi")
	return ic
}

// buildElif folds a chain of elif branches into nested *ast.If values so
// the printer and the executor only ever need to know about If.Else.
func (p *Parser) buildElif(cond, body []*ast.CommandList) ast.Command {
	ic := &ast.If{Cond: cond, Body: body}
	switch {
	case p.reservedAt("elif"):
		p.consumeReserved("elif")
		elifCond := p.compoundList("then")
		p.expectReserved("then")
		elifBody := p.compoundList("elif", "else", "fi")
		ic.Else = p.buildElif(elifCond, elifBody)
	case p.reservedAt("else"):
		p.consumeReserved("else")
		ic.ElseStmts = p.compoundList("fi")
	}
	return ic
}

func (p *Parser) forClause() ast.Command {
	start := p.pos()
	p.consumeReserved("for")
	p.skipBlanks()
	name := p.readName()
	var list []ast.Word
	p.skipBlanks()
	if p.reservedAt("in") {
		p.consumeReserved("in")
		for {
			p.skipBlanks()
			if p.atLineEnd() {
				break
			}
			w := p.word(false)
			if p.failed() {
				return nil
			}
			list = append(list, w)
		}
	}
	p.skipNewlines()
	p.consumeSemicolons()
	p.expectReserved("do")
	body := p.compoundList("done")
	p.expectReserved("done")
	return &ast.For{Position: start, Name: name, List: list, Body: body}
}

func (p *Parser) atLineEnd() bool {
	b, ok := p.peek(0)
	return !ok || b == '\n' || b == '\r' || b == ';'
}

func (p *Parser) loopClause(kind ast.LoopKind) ast.Command {
	start := p.pos()
	if kind == ast.LoopWhile {
		p.consumeReserved("while")
	} else {
		p.consumeReserved("until")
	}
	cond := p.compoundList("do")
	p.expectReserved("do")
	body := p.compoundList("done")
	p.expectReserved("done")
	return &ast.Loop{Position: start, Kind: kind, Cond: cond, Body: body}
}

func (p *Parser) caseClause() ast.Command {
	start := p.pos()
	p.consumeReserved("case")
	p.skipBlanks()
	subject := p.word(false)
	p.skipNewlines()
	p.expectReserved("in")
	cc := &ast.Case{Position: start, Subject: subject}
	for {
		p.skipNewlines()
		if p.failed() || p.reservedAt("esac") {
			break
		}
		item := &ast.CaseItem{}
		p.skipBlanks()
		if p.peek0() == '(' {
			p.advance()
		}
		for {
			p.skipBlanks()
			pat := p.word(false)
			if p.failed() {
				break
			}
			item.Patterns = append(item.Patterns, pat)
			p.skipBlanks()
			if p.peek0() == '|' {
				p.advance()
				continue
			}
			break
		}
		if p.peek0() != ')' {
			p.fail("expected ')'")
			return nil
		}
		p.advance()
		item.Body = p.compoundList("esac")
		p.skipBlanks()
		if p.peekStr(";;") {
			p.advance()
			p.advance()
		}
		cc.Items = append(cc.Items, item)
	}
	p.expectReserved("esac")
	return cc
}

// simpleOrFuncDecl parses either `name() compound-command` or a plain
// simple command, distinguishing the two by lookahead for "()" right after
// a bare name.
func (p *Parser) simpleOrFuncDecl() ast.Command {
	start := p.pos()
	save := p.snapshot()
	if name, ok := p.tryFuncName(); ok {
		body := p.command()
		if !p.failed() && body != nil {
			return &ast.FuncDecl{Position: start, Name: name, Body: body}
		}
	}
	p.restore(save)
	return p.simpleCommand()
}

func (p *Parser) tryFuncName() (string, bool) {
	if !isNameStart(p.peek0()) {
		return "", false
	}
	name := p.readName()
	p.skipBlanks()
	if p.peek0() != '(' {
		return "", false
	}
	p.advance()
	p.skipBlanks()
	if p.peek0() != ')' {
		return "", false
	}
	p.advance()
	p.skipNewlines()
	return name, true
}

// simpleCommand := (assignment | redirect)* word? (word|redirect)*
func (p *Parser) simpleCommand() ast.Command {
	start := p.pos()
	sc := &ast.Simple{Position: start}
	first := true
	for {
		p.skipBlanksAndComment()
		if r := p.maybeRedirect(); r != nil {
			sc.Redirs = append(sc.Redirs, r)
			first = false
			continue
		}
		if a := p.maybeAssignment(); a != nil {
			sc.Assigns = append(sc.Assigns, a)
			first = false
			continue
		}
		if p.atWordEnd() {
			break
		}
		w := p.word(false)
		if p.failed() {
			return nil
		}
		if w == nil {
			break
		}
		if first {
			if lit := soleLiteral(w); lit != "" {
				if !p.maybeExpandAlias(lit) {
					sc.Name = w
				} else {
					// Alias expanded: restart this simple command from the
					// spliced input (cycle-safe per spec.md §4.1).
					return p.simpleCommand()
				}
			} else {
				sc.Name = w
			}
			first = false
		} else {
			sc.Args = append(sc.Args, w)
		}
	}
	if sc.Name == nil && len(sc.Assigns) == 0 && len(sc.Redirs) == 0 {
		return nil
	}
	return sc
}

func soleLiteral(w ast.Word) string {
	switch x := w.(type) {
	case *ast.String:
		if !x.SingleQuoted {
			return x.Value
		}
	}
	return ""
}

func (p *Parser) atWordEnd() bool {
	b, ok := p.peek(0)
	if !ok {
		return true
	}
	switch b {
	case '\n', '\r', ';', '&', '|', '(', ')':
		return true
	}
	return false
}

// maybeRedirect parses one IO redirection if present at the current
// position, else returns nil without consuming anything.
func (p *Parser) maybeRedirect() *ast.Redirect {
	save := p.snapshot()
	fd := -1
	if b, ok := p.peek(0); ok && b >= '0' && b <= '9' {
		n := 0
		i := 0
		for {
			b, ok := p.peek(i)
			if !ok || b < '0' || b > '9' {
				break
			}
			n = n*10 + int(b-'0')
			i++
		}
		if b, ok := p.peek(i); ok && (b == '<' || b == '>') {
			for j := 0; j < i; j++ {
				p.advance()
			}
			fd = n
		}
	}
	op, ok := p.redirOp()
	if !ok {
		p.restore(save)
		return nil
	}
	opPos := p.pos()
	p.skipBlanks()
	word := p.word(false)
	if p.failed() || word == nil {
		p.fail("expected word after redirection operator")
		return nil
	}
	r := &ast.Redirect{OpPos: opPos, Fd: fd, Op: op, Word: word}
	if op == ast.RedirHeredoc || op == ast.RedirHeredocDash {
		p.heredocs = append(p.heredocs, r)
	}
	return r
}

func (p *Parser) redirOp() (ast.RedirOp, bool) {
	switch {
	case p.peekStr("<<-"):
		p.advance()
		p.advance()
		p.advance()
		return ast.RedirHeredocDash, true
	case p.peekStr("<<"):
		p.advance()
		p.advance()
		return ast.RedirHeredoc, true
	case p.peekStr(">>"):
		p.advance()
		p.advance()
		return ast.RedirAppend, true
	case p.peekStr(">|"):
		p.advance()
		p.advance()
		return ast.RedirClobber, true
	case p.peekStr("<&"):
		p.advance()
		p.advance()
		return ast.RedirLessAnd, true
	case p.peekStr(">&"):
		p.advance()
		p.advance()
		return ast.RedirGreatAnd, true
	case p.peekStr("<>"):
		p.advance()
		p.advance()
		return ast.RedirLessGreat, true
	case p.peek0() == '<':
		p.advance()
		return ast.RedirLess, true
	case p.peek0() == '>':
		p.advance()
		return ast.RedirGreat, true
	}
	return 0, false
}

// maybeAssignment parses name=value if the upcoming literal run looks like
// a POSIX identifier followed directly by '='.
func (p *Parser) maybeAssignment() *ast.Assign {
	save := p.snapshot()
	if !isNameStart(p.peek0()) {
		return nil
	}
	start := p.pos()
	name := p.readName()
	if p.peek0() != '=' {
		p.restore(save)
		return nil
	}
	p.advance()
	val := p.word(false)
	if p.failed() {
		return nil
	}
	if val == nil {
		val = &ast.String{ValuePos: p.pos()}
	}
	return &ast.Assign{NamePos: start, Name: name, Value: val}
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameCont(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

func (p *Parser) readName() string {
	var sb []byte
	for {
		b, ok := p.peek(0)
		if !ok || !isNameCont(b) {
			break
		}
		p.advance()
		sb = append(sb, b)
	}
	return string(sb)
}

// snapshot/restore give the parser backtracking for the func-decl vs.
// simple-command and assignment-vs-name ambiguities, both bounded
// lookaheads over a few identifier bytes.
type snapshot struct {
	pos, line, col int
	data           []byte
}

func (p *Parser) snapshot() snapshot {
	return snapshot{pos: p.buf.pos, line: p.line, col: p.col, data: append([]byte(nil), p.buf.data...)}
}

func (p *Parser) restore(s snapshot) {
	p.buf.data = s.data
	p.buf.pos = s.pos
	p.line = s.line
	p.col = s.col
}
