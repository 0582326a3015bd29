// Package ast defines the tagged-union syntax tree produced by the parser:
// words, redirects, assignments, commands, pipelines, and-or lists, command
// lists, and programs. The shape follows the Shell Command Language grammar
// directly: each sum type is a Go interface with a handful of concrete
// struct implementations, rather than a single struct with an unused-field
// union (there is no GC-managed destructor cascade to write in Go; letting
// a *Program go out of scope is enough).
package ast

import "github.com/posixcore/sh/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
}

// ParamOp is the operator carried by a Parameter word, using the POSIX
// parameter-expansion vocabulary from the Shell Command Language grammar.
type ParamOp int

const (
	ParamNone ParamOp = iota
	ParamMinus
	ParamEqual
	ParamQuestion
	ParamPlus
	ParamPercent   // %
	ParamDPercent  // %%
	ParamHash      // #
	ParamDHash     // ##
	ParamLeadingHash // leading '#' => length-of
)

func (op ParamOp) String() string {
	switch op {
	case ParamMinus:
		return "-"
	case ParamEqual:
		return "="
	case ParamQuestion:
		return "?"
	case ParamPlus:
		return "+"
	case ParamPercent:
		return "%"
	case ParamDPercent:
		return "%%"
	case ParamHash:
		return "#"
	case ParamDHash:
		return "##"
	case ParamLeadingHash:
		return "# (leading)"
	default:
		return ""
	}
}

// Word is the sum of the four word variants from spec.md §3: String,
// Parameter, CmdSubst, and List.
type Word interface {
	Node
	wordNode()
}

// String is a raw or single-quoted byte sequence.
type String struct {
	ValuePos     token.Pos
	Value        string
	SingleQuoted bool
}

func (w *String) Pos() token.Pos { return w.ValuePos }
func (*String) wordNode()        {}

// Parameter is a candidate for parameter expansion: $name or ${expr}.
type Parameter struct {
	DollarPos token.Pos
	Name      string
	Op        ParamOp
	Colon     bool // the ":" modifier extends "unset" tests to "unset or empty"
	Arg       Word // non-nil only when Op != ParamNone
	Braced    bool // was written as ${...} rather than bare $name
}

func (w *Parameter) Pos() token.Pos { return w.DollarPos }
func (*Parameter) wordNode()        {}

// CmdSubst is a candidate for command substitution: $(cmd) or `cmd`.
type CmdSubst struct {
	Left       token.Pos
	Program    *Program
	BackQuoted bool
}

func (w *CmdSubst) Pos() token.Pos { return w.Left }
func (*CmdSubst) wordNode()        {}

// Arithmetic is a $((...)) arithmetic expansion. It is its own Word variant
// in this AST (mrsh folds it into WORD_COMMAND with a flag in some versions;
// this module keeps it distinct since its child is an arithmetic tree, not a
// program) but expands through the same four-stage pipeline as the others.
type Arithmetic struct {
	Left token.Pos
	Src  string // raw, not-yet-parsed arithmetic source; parsed lazily by arithm
}

func (w *Arithmetic) Pos() token.Pos { return w.Left }
func (*Arithmetic) wordNode()        {}

// List is an ordered sequence of child Words, optionally double-quoted.
// Invariant: a List's children are never themselves Lists with the same
// quoting — Append keeps this flattened.
type List struct {
	Children    []Word
	DoubleQuoted bool
}

func (w *List) Pos() token.Pos {
	if len(w.Children) == 0 {
		return 0
	}
	return w.Children[0].Pos()
}
func (*List) wordNode() {}

// Append adds a child to the list, flattening a nested unquoted List with
// the same quoting into its parent rather than nesting it.
func (w *List) Append(child Word) {
	if cl, ok := child.(*List); ok && cl.DoubleQuoted == w.DoubleQuoted {
		w.Children = append(w.Children, cl.Children...)
		return
	}
	w.Children = append(w.Children, child)
}
