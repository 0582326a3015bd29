// Package state holds everything about one running shell that isn't part
// of the parsed program: variables, aliases, functions, the call-frame
// stack, and the option/status fields the grammar and executor both read.
// It is the Go analogue of mrsh's mrsh_state struct, widened with a
// functions table and Go-friendly accessor methods in place of a raw
// hashtable (spec.md §4.2, §4.4).
package state

import (
	"fmt"
	"os"
	"strconv"

	"github.com/posixcore/sh/ast"
)

// Option is one of the set -o flags from spec.md §4.2, carrying over the
// bit positions (and meanings) of mrsh's enum mrsh_option verbatim.
type Option uint32

const (
	AllExport Option = 1 << iota // -a
	Notify                       // -b
	NoClobber                    // -C
	ErrExit                      // -e
	NoGlob                       // -f
	PreLookup                    // -h
	Monitor                      // -m
	NoExec                       // -n
	IgnoreEOF                    // -o ignoreeof
	NoLog                        // -o nolog
	Vi                           // -o vi
	NoUnset                      // -u
	Verbose                      // -v
	XTrace                       // -x
)

// Interactive is the default option set for an interactive session.
const Interactive = Monitor

// BranchSignal is the in-flight control-transfer request from break,
// continue, return, or exit, consumed by the enclosing loop/function/
// top-level driver (spec.md §4.5 "Branch control").
type BranchSignal int

const (
	BranchNone BranchSignal = iota
	BranchBreak
	BranchContinue
	BranchReturn
	BranchExit
)

// Variable is one shell variable: its value plus the export/readonly
// attributes spec.md §4.2 carries over from mrsh's MRSH_VAR_ATTRIB bits.
type Variable struct {
	Value    string
	Exported bool
	ReadOnly bool
}

// Frame is one entry in the call-frame stack: the positional parameters
// ($1.. / $#) visible to the current function invocation or the script
// itself (spec.md §4.2 "push_args/pop_args").
type Frame struct {
	Args []string
}

// State is one shell's full dynamic state.
type State struct {
	Variables map[string]*Variable
	Aliases   map[string]string
	Functions map[string]ast.Command

	Options Option

	Name   string // $0
	Frames []*Frame

	LastStatus  int
	PendingExit int
	HasExit     bool
	Branch      BranchSignal
	BranchLevel int // remaining break/continue levels to unwind
	LoopDepth   int

	// BgPID is the pid of the most recently started asynchronous (&)
	// command, for $!. Zero until the first one is started.
	BgPID int

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// New creates a State seeded from the process environment, matching
// mrsh_state_init populating variables from environ(7) with the export
// attribute set on every one of them.
func New(name string, environ []string) *State {
	s := &State{
		Variables: make(map[string]*Variable),
		Aliases:   make(map[string]string),
		Functions: make(map[string]ast.Command),
		Name:      name,
		Frames:    []*Frame{{}},
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				s.Variables[kv[:i]] = &Variable{Value: kv[i+1:], Exported: true}
				break
			}
		}
	}
	return s
}

func (s *State) HasOption(o Option) bool { return s.Options&o != 0 }

func (s *State) SetOption(o Option, on bool) {
	if on {
		s.Options |= o
	} else {
		s.Options &^= o
	}
}

// Get reports a variable's current value, or "", false if unset.
func (s *State) Get(name string) (string, bool) {
	v, ok := s.Variables[name]
	if !ok {
		return "", false
	}
	return v.Value, true
}

// Lookup returns the full Variable record, or nil if unset.
func (s *State) Lookup(name string) *Variable {
	return s.Variables[name]
}

// Set assigns a variable without an error return, satisfying arithm.Env
// for $((...)) assignment operators: an existing variable keeps its
// attributes, and a new one is exported only under -a (allexport). It is a
// no-op, per spec.md §4.2, if the variable is marked readonly.
func (s *State) Set(name, value string) {
	if v, ok := s.Variables[name]; ok {
		if v.ReadOnly {
			return
		}
		v.Value = value
		return
	}
	s.Variables[name] = &Variable{
		Value:    value,
		Exported: s.HasOption(AllExport),
	}
}

// Assign performs a shell-level name=value assignment: readonly variables
// reject the write with an error (spec.md §4.2), and -a (allexport) marks
// every newly created variable exported.
func (s *State) Assign(name, value string) error {
	if v, ok := s.Variables[name]; ok {
		if v.ReadOnly {
			return fmt.Errorf("%s: readonly variable", name)
		}
		v.Value = value
		return nil
	}
	s.Variables[name] = &Variable{Value: value, Exported: s.HasOption(AllExport)}
	return nil
}

func (s *State) Unset(name string) error {
	if v, ok := s.Variables[name]; ok && v.ReadOnly {
		return fmt.Errorf("%s: readonly variable", name)
	}
	delete(s.Variables, name)
	return nil
}

func (s *State) Export(name string) {
	v, ok := s.Variables[name]
	if !ok {
		v = &Variable{}
		s.Variables[name] = v
	}
	v.Exported = true
}

func (s *State) MarkReadOnly(name string) {
	v, ok := s.Variables[name]
	if !ok {
		v = &Variable{}
		s.Variables[name] = v
	}
	v.ReadOnly = true
}

// Environ returns the exported variables as NAME=value pairs, for handing
// to a forked child process.
func (s *State) Environ() []string {
	out := make([]string, 0, len(s.Variables))
	for name, v := range s.Variables {
		if v.Exported {
			out = append(out, name+"="+v.Value)
		}
	}
	return out
}

// Alias resolves name against the alias table: the AliasFunc shape the
// parser package expects.
func (s *State) Alias(name string) (string, bool) {
	body, ok := s.Aliases[name]
	return body, ok
}

// Frame returns the innermost (current) call frame.
func (s *State) Frame() *Frame { return s.Frames[len(s.Frames)-1] }

// PushArgs pushes a new call frame with the given positional parameters,
// used entering a function call (spec.md §4.2).
func (s *State) PushArgs(args []string) {
	s.Frames = append(s.Frames, &Frame{Args: args})
}

// PopArgs pops the innermost call frame on function return.
func (s *State) PopArgs() {
	if len(s.Frames) > 1 {
		s.Frames = s.Frames[:len(s.Frames)-1]
	}
}

// Positional returns the i-th positional parameter (1-based), or "", false
// if out of range.
func (s *State) Positional(i int) (string, bool) {
	args := s.Frame().Args
	if i < 1 || i > len(args) {
		return "", false
	}
	return args[i-1], true
}

// NumPositional is $#.
func (s *State) NumPositional() int { return len(s.Frame().Args) }

// Special resolves the handful of named (non-positional) special
// parameters expand.Env needs: $?, $!, $-, $$, and $0.
func (s *State) Special(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(s.LastStatus), true
	case "!":
		if s.BgPID == 0 {
			return "", false
		}
		return strconv.Itoa(s.BgPID), true
	case "-":
		return s.optionString(), true
	case "$":
		return strconv.Itoa(os.Getpid()), true
	case "0":
		return s.Name, true
	}
	return "", false
}

// optionString renders the currently-set single-letter options as a string
// suitable for $-, e.g. "ex" for -e -x, in the fixed order mrsh's
// enum mrsh_option declares them.
func (s *State) optionString() string {
	order := []struct {
		opt Option
		c   byte
	}{
		{AllExport, 'a'}, {Notify, 'b'}, {NoClobber, 'C'}, {ErrExit, 'e'},
		{NoGlob, 'f'}, {PreLookup, 'h'}, {Monitor, 'm'}, {NoExec, 'n'},
		{NoUnset, 'u'}, {Verbose, 'v'}, {XTrace, 'x'},
	}
	buf := make([]byte, 0, len(order))
	for _, o := range order {
		if s.HasOption(o.opt) {
			buf = append(buf, o.c)
		}
	}
	return string(buf)
}
