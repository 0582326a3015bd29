package ast

import "github.com/posixcore/sh/token"

// RedirOp is an IO-redirection operator.
type RedirOp int

const (
	RedirLess       RedirOp = iota // <
	RedirGreat                     // >
	RedirClobber                   // >|
	RedirAppend                    // >>
	RedirLessAnd                   // <&
	RedirGreatAnd                  // >&
	RedirLessGreat                 // <>
	RedirHeredoc                   // <<
	RedirHeredocDash                // <<-
)

func (op RedirOp) String() string {
	switch op {
	case RedirLess:
		return "<"
	case RedirGreat:
		return ">"
	case RedirClobber:
		return ">|"
	case RedirAppend:
		return ">>"
	case RedirLessAnd:
		return "<&"
	case RedirGreatAnd:
		return ">&"
	case RedirLessGreat:
		return "<>"
	case RedirHeredoc:
		return "<<"
	case RedirHeredocDash:
		return "<<-"
	default:
		return "?"
	}
}

// Redirect is an IO-redirection attached to a Simple command, or to the
// Stmt wrapping a compound command.
type Redirect struct {
	OpPos token.Pos
	// Fd is the io_number the operator applies to, or -1 if unspecified (in
	// which case it defaults to 0 for input operators and 1 for output
	// operators, per spec.md §4.6).
	Fd int
	Op RedirOp
	// Word is the filename, or for heredocs the delimiter word.
	Word Word
	// HereDoc holds the ordered body-line words when Op is a heredoc
	// variant; nil otherwise.
	HereDoc []Word
}

func (r *Redirect) Pos() token.Pos { return r.OpPos }

// DefaultFd returns the fd this redirect applies to when Fd == -1.
func (r *Redirect) DefaultFd() int {
	if r.Fd >= 0 {
		return r.Fd
	}
	switch r.Op {
	case RedirLess, RedirLessAnd, RedirLessGreat, RedirHeredoc, RedirHeredocDash:
		return 0
	default:
		return 1
	}
}

// Assign is a variable assignment: name=value.
type Assign struct {
	NamePos token.Pos
	Name    string
	Value   Word
}

func (a *Assign) Pos() token.Pos { return a.NamePos }
