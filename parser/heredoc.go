package parser

import (
	"bytes"

	"github.com/posixcore/sh/ast"
)

// maybeConsumeLineEnd consumes the upcoming newline, if any, at the end of
// a command line and then drains any here-documents pending from that
// line (spec.md §4.1 "Here-documents"). If the line continues (e.g. after
// a ';') the heredocs stay pending for the next call.
func (p *Parser) maybeConsumeLineEnd() {
	p.skipBlanks()
	b, ok := p.peek(0)
	if !ok {
		p.readPendingHeredocs()
		return
	}
	if b == '\n' || b == '\r' {
		p.advance()
		p.readPendingHeredocs()
	}
}

// readPendingHeredocs reads the body of every heredoc redirect queued
// since the last drain, in the order their '<<'/'<<-' operators appeared.
func (p *Parser) readPendingHeredocs() {
	if len(p.heredocs) == 0 {
		return
	}
	docs := p.heredocs
	p.heredocs = nil
	for _, r := range docs {
		p.readHeredocBody(r)
		if p.failed() {
			return
		}
	}
}

func (p *Parser) readHeredocBody(r *ast.Redirect) {
	delim, quoted := heredocDelimiter(r.Word)
	stripTabs := r.Op == ast.RedirHeredocDash

	var raw []byte
	for {
		if p.buf.atEOF() {
			p.fail("unterminated here-document (want delimiter %q)", delim)
			return
		}
		line := p.readRawLine()
		if stripTabs {
			line = trimLeadingTabs(line)
		}
		if line == delim {
			break
		}
		raw = append(raw, line...)
		raw = append(raw, '\n')
	}

	if quoted {
		r.HereDoc = []ast.Word{&ast.String{Value: string(raw)}}
		return
	}
	w := p.parseHeredocContent(raw)
	if p.failed() {
		return
	}
	if w == nil {
		w = &ast.String{Value: ""}
	}
	r.HereDoc = []ast.Word{w}
}

// readRawLine consumes through (and including) the next newline, returning
// the line's content without the terminator.
func (p *Parser) readRawLine() string {
	var buf []byte
	for {
		b, ok := p.peek(0)
		if !ok {
			break
		}
		if b == '\n' || b == '\r' {
			p.advance()
			break
		}
		p.advance()
		buf = append(buf, b)
	}
	return string(buf)
}

func trimLeadingTabs(s string) string {
	i := 0
	for i < len(s) && s[i] == '\t' {
		i++
	}
	return s[i:]
}

// heredocDelimiter literally concatenates the unquoted text of a word and
// reports whether any part of it was quoted, per spec.md's rule that a
// quoted delimiter suppresses expansion in the body.
func heredocDelimiter(w ast.Word) (delim string, quoted bool) {
	switch x := w.(type) {
	case *ast.String:
		return x.Value, x.SingleQuoted
	case *ast.List:
		var sb []byte
		q := x.DoubleQuoted
		for _, c := range x.Children {
			d, cq := heredocDelimiter(c)
			sb = append(sb, d...)
			if cq {
				q = true
			}
		}
		return string(sb), q
	default:
		return "", true
	}
}

// parseHeredocContent re-lexes an unquoted heredoc body for $ / ` / \
// expansion constructs, exactly like the inside of a double-quoted string
// except that '"' is not special (spec.md §4.1).
func (p *Parser) parseHeredocContent(raw []byte) ast.Word {
	inner := New(bytes.NewReader(raw), p.name)
	list := &ast.List{}
	for {
		b, ok := inner.peek(0)
		if !ok {
			break
		}
		switch b {
		case '$':
			part := inner.dollarExpansion(true)
			if inner.failed() {
				p.err = inner.err
				return nil
			}
			list.Append(part)
		case '`':
			part := inner.backQuoted()
			if inner.failed() {
				p.err = inner.err
				return nil
			}
			list.Append(part)
		case '\\':
			list.Append(inner.backslashEscape(true))
		default:
			list.Append(inner.literalRunUntilSpecial())
		}
	}
	if len(list.Children) == 0 {
		return &ast.String{Value: ""}
	}
	if len(list.Children) == 1 {
		return list.Children[0]
	}
	return list
}

// literalRunUntilSpecial consumes plain bytes up to the next $, `, or \ —
// used for heredoc bodies, where (unlike double-quoted strings) '"' is not
// special.
func (p *Parser) literalRunUntilSpecial() ast.Word {
	start := p.pos()
	var buf []byte
	for {
		b, ok := p.peek(0)
		if !ok {
			break
		}
		if b == '$' || b == '`' || b == '\\' {
			break
		}
		p.advance()
		buf = append(buf, b)
	}
	return &ast.String{ValuePos: start, Value: string(buf)}
}
