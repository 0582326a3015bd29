package ast

import "github.com/posixcore/sh/token"

// Command is the sum of all shell command variants from spec.md §3.
type Command interface {
	Node
	commandNode()
}

// Simple is a simple command: an optional name, arguments, redirects, and
// assignments. At least one of {Name, Assigns} is present.
type Simple struct {
	Position token.Pos
	Name     Word // nil if the command is assignments-only
	Args     []Word
	Redirs   []*Redirect
	Assigns  []*Assign
}

func (c *Simple) Pos() token.Pos { return c.Position }
func (*Simple) commandNode()     {}

// BraceGroup runs its body in the current shell environment: { list ; }.
type BraceGroup struct {
	Lbrace, Rbrace token.Pos
	Body           []*CommandList
}

func (c *BraceGroup) Pos() token.Pos { return c.Lbrace }
func (*BraceGroup) commandNode()     {}

// Subshell runs its body in a forked child: ( list ).
type Subshell struct {
	Lparen, Rparen token.Pos
	Body           []*CommandList
}

func (c *Subshell) Pos() token.Pos { return c.Lparen }
func (*Subshell) commandNode()     {}

// If is an if/elif/else/fi clause. Elif branches are represented by nesting
// a second *If as the Else of the first, matching mrsh's
// mrsh_if_clause.else_part being itself a Command.
type If struct {
	Position  token.Pos
	Cond      []*CommandList
	Body      []*CommandList
	Else      Command // *If (elif) or nil; a plain else body is in ElseStmts
	ElseStmts []*CommandList
}

func (c *If) Pos() token.Pos { return c.Position }
func (*If) commandNode()     {}

// For iterates Name over List, running Body once per word.
type For struct {
	Position token.Pos
	Name     string
	List     []Word
	Body     []*CommandList
}

func (c *For) Pos() token.Pos { return c.Position }
func (*For) commandNode()     {}

// LoopKind distinguishes while from until.
type LoopKind int

const (
	LoopWhile LoopKind = iota
	LoopUntil
)

// Loop is a while or until clause.
type Loop struct {
	Position token.Pos
	Kind     LoopKind
	Cond     []*CommandList
	Body     []*CommandList
}

func (c *Loop) Pos() token.Pos { return c.Position }
func (*Loop) commandNode()     {}

// CaseItem is one pattern-list/body pair inside a Case.
type CaseItem struct {
	Patterns []Word
	Body     []*CommandList
}

// Case is a case/esac clause.
type Case struct {
	Position token.Pos
	Subject  Word
	Items    []*CaseItem
}

func (c *Case) Pos() token.Pos { return c.Position }
func (*Case) commandNode()     {}

// FuncDecl is a function definition: name() compound-command.
type FuncDecl struct {
	Position token.Pos
	Name     string
	Body     Command
}

func (c *FuncDecl) Pos() token.Pos { return c.Position }
func (*FuncDecl) commandNode()     {}

// Pipeline is an ordered sequence of at least one Command joined by `|`,
// with an optional leading `!` negation.
type Pipeline struct {
	Position token.Pos
	Bang     bool
	Commands []*Stmt
}

func (p *Pipeline) Pos() token.Pos { return p.Position }

// Stmt wraps a Command at statement position in a pipeline, with the
// redirects that apply to it (mirrors mrsh attaching io_redirects/
// assignments only to MRSH_SIMPLE_COMMAND: a Simple keeps its own redirects
// and assignments, while compound commands carry their redirects via this
// wrapper so `{ ...; } >f` works). Negation is Pipeline.Bang.
type Stmt struct {
	Position token.Pos
	Cmd      Command
	Redirs   []*Redirect
}

func (s *Stmt) Pos() token.Pos { return s.Position }

// BinOp is the operator joining two AndOrList nodes.
type BinOp int

const (
	BinAnd BinOp = iota // &&
	BinOr               // ||
)

func (op BinOp) String() string {
	if op == BinAnd {
		return "&&"
	}
	return "||"
}

// AndOrList is a Pipeline or a Binop joining two AndOrLists. Right-
// associative, per spec.md §3, and evaluation short-circuits.
type AndOrList interface {
	Node
	andOrNode()
}

func (*Pipeline) andOrNode() {}

// Binop is the &&/|| combination of two AndOrLists.
type Binop struct {
	OpPos token.Pos
	Op    BinOp
	Left  AndOrList
	Right AndOrList
}

func (b *Binop) Pos() token.Pos { return b.OpPos }
func (*Binop) andOrNode()       {}

// CommandList is a top-level or brace/subshell-body list element: an
// AndOrList plus whether it runs asynchronously (trailing `&`).
type CommandList struct {
	List       AndOrList
	Ampersand  bool
}

func (c *CommandList) Pos() token.Pos { return c.List.Pos() }

// Program is an ordered sequence of CommandLists: a whole parsed script.
type Program struct {
	Name  string
	Stmts []*CommandList
}

func (p *Program) Pos() token.Pos {
	if len(p.Stmts) == 0 {
		return 0
	}
	return p.Stmts[0].Pos()
}
