package task

import (
	"os"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/state"
)

// sequenceTask runs a list of CommandLists in order: a program, or a
// brace-group/subshell/function body. Each element may run asynchronously
// (trailing &), in which case the sequence doesn't wait for it before
// moving on. Grounded on mrsh_run_program's statement loop.
type sequenceTask struct {
	items []*ast.CommandList

	i      int
	cur    Task
	files  []*os.File
	status int
}

func (s *sequenceTask) Start(rt *Runtime, files []*os.File) error {
	s.files = files
	return s.advance(rt)
}

// advance starts the next not-yet-started CommandList. An async element
// (trailing &) never makes the sequence wait on it; it's handed to the
// runtime's background list instead, so it still gets polled (and its own
// cleanup still runs) without blocking this sequence's progress.
func (s *sequenceTask) advance(rt *Runtime) error {
	for s.i < len(s.items) {
		cl := s.items[s.i]
		s.i++
		t := buildAndOr(cl.List)
		if cl.Ampersand {
			t = &asyncTask{inner: t}
		}
		if err := t.Start(rt, s.files); err != nil {
			return err
		}
		if cl.Ampersand {
			rt.trackBackground(t)
			s.status = 0
			continue
		}
		s.cur = t
		return nil
	}
	s.cur = nil
	return nil
}

func (s *sequenceTask) Poll(rt *Runtime) int {
	if s.cur == nil && s.i >= len(s.items) {
		return s.status
	}
	if s.cur != nil {
		st := s.cur.Poll(rt)
		if st == TaskStatusWait {
			return TaskStatusWait
		}
		s.status = st
		rt.State.LastStatus = st
		s.cur = nil

		if rt.State.HasOption(state.ErrExit) && st != 0 && rt.State.Branch == state.BranchNone {
			s.i = len(s.items)
			return s.status
		}
		if rt.State.Branch != state.BranchNone {
			s.i = len(s.items)
			return s.status
		}
	}
	if err := s.advance(rt); err != nil {
		s.status = 127
		s.i = len(s.items)
		return s.status
	}
	if s.cur == nil {
		return s.status
	}
	return TaskStatusWait
}
