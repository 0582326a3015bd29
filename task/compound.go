package task

import (
	"os"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/state"
)

// braceGroupTask runs its body in the current shell environment.
type braceGroupTask struct {
	body *sequenceTask
}

func (t *braceGroupTask) Start(rt *Runtime, files []*os.File) error {
	return t.body.Start(rt, files)
}

func (t *braceGroupTask) Poll(rt *Runtime) int { return t.body.Poll(rt) }

// subshellTask runs its body against a cloned *state.State, so variable
// assignments, cd, and option changes inside `( ... )` never leak out —
// the effect a real fork() gives mrsh for free. Go can't safely fork
// without exec, so this module follows the teacher's own approach of
// simulating subshell isolation by copying interpreter state rather than
// the OS process, documented in DESIGN.md.
type subshellTask struct {
	body []*ast.CommandList

	inner   *sequenceTask
	cloned  *state.State
	status  int
	done    bool
}

func (t *subshellTask) Start(rt *Runtime, files []*os.File) error {
	outer := rt.State
	t.cloned = cloneState(outer)
	rt.State = t.cloned
	t.inner = buildSequence(t.body).(*sequenceTask)
	err := t.inner.Start(rt, files)
	rt.State = outer
	return err
}

// Poll swaps in the cloned state only for the duration of the inner poll
// call, so sibling tasks sharing this Runtime (e.g. other pipeline stages)
// never observe the subshell's private state between polls.
func (t *subshellTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	outer := rt.State
	rt.State = t.cloned
	st := t.inner.Poll(rt)
	rt.State = outer
	if st == TaskStatusWait {
		return TaskStatusWait
	}
	t.status = st
	t.done = true
	return st
}

func cloneState(s *state.State) *state.State {
	clone := *s
	clone.Variables = make(map[string]*state.Variable, len(s.Variables))
	for k, v := range s.Variables {
		cp := *v
		clone.Variables[k] = &cp
	}
	clone.Aliases = make(map[string]string, len(s.Aliases))
	for k, v := range s.Aliases {
		clone.Aliases[k] = v
	}
	clone.Functions = make(map[string]ast.Command, len(s.Functions))
	for k, v := range s.Functions {
		clone.Functions[k] = v
	}
	clone.Frames = append([]*state.Frame(nil), s.Frames...)
	clone.Branch = state.BranchNone
	clone.BranchLevel = 0
	return &clone
}

// ifTask runs Cond; if it's nonzero and Else is set, runs that branch
// instead (Else is itself an *ast.If for elif chains, or a plain command
// list wrapped as a *ast.BraceGroup-less sequence via ElseStmts).
type ifTask struct {
	node *ast.If

	cond   *sequenceTask
	body   Task
	phase  int // 0=cond running, 1=body running, 2=done
	status int
}

func (t *ifTask) Start(rt *Runtime, files []*os.File) error {
	t.cond = buildSequence(t.node.Cond).(*sequenceTask)
	return t.cond.Start(rt, files)
}

func (t *ifTask) Poll(rt *Runtime) int {
	switch t.phase {
	case 0:
		st := t.cond.Poll(rt)
		if st == TaskStatusWait {
			return TaskStatusWait
		}
		var files []*os.File
		if st == 0 {
			t.body = buildSequence(t.node.Body)
			files = t.cond.files
		} else if t.node.Else != nil {
			t.body = buildCommand(t.node.Else)
			files = t.cond.files
		} else if len(t.node.ElseStmts) > 0 {
			t.body = buildSequence(t.node.ElseStmts)
			files = t.cond.files
		} else {
			t.status = 0
			t.phase = 2
			return 0
		}
		if err := t.body.Start(rt, files); err != nil {
			t.status = 127
			t.phase = 2
			return t.status
		}
		t.phase = 1
		return TaskStatusWait
	case 1:
		st := t.body.Poll(rt)
		if st == TaskStatusWait {
			return TaskStatusWait
		}
		t.status = st
		t.phase = 2
		return st
	default:
		return t.status
	}
}

// forTask iterates Name over List, running Body once per word, per spec.md
// §4.5's for-clause (one of the cases mrsh's handle_command stubbed out).
type forTask struct {
	node *ast.For

	words  []string
	idx    int
	body   *sequenceTask
	files  []*os.File
	status int
	done   bool
	started bool
}

func (t *forTask) Start(rt *Runtime, files []*os.File) error {
	words, err := expandWords(rt, t.node.List)
	if err != nil {
		return err
	}
	t.words = words
	t.files = files
	rt.State.LoopDepth++
	return t.advance(rt)
}

func (t *forTask) advance(rt *Runtime) error {
	for t.idx < len(t.words) {
		rt.State.Assign(t.node.Name, t.words[t.idx])
		t.idx++
		t.body = buildSequence(t.node.Body).(*sequenceTask)
		if err := t.body.Start(rt, t.files); err != nil {
			return err
		}
		return nil
	}
	t.body = nil
	return nil
}

func (t *forTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	if t.body == nil {
		rt.State.LoopDepth--
		t.status = 0
		t.done = true
		return 0
	}
	st := t.body.Poll(rt)
	if st == TaskStatusWait {
		return TaskStatusWait
	}
	t.status = st
	if resolved, final, done := resolveLoopBranch(rt); resolved {
		rt.State.LoopDepth--
		t.done = true
		if done {
			t.status = final
		}
		return t.status
	}
	if err := t.advance(rt); err != nil {
		rt.State.LoopDepth--
		t.status = 127
		t.done = true
		return t.status
	}
	if t.body == nil {
		rt.State.LoopDepth--
		t.done = true
		return t.status
	}
	return TaskStatusWait
}

// loopTask runs a while/until clause, the other case mrsh stubbed out.
type loopTask struct {
	node *ast.Loop

	cond   *sequenceTask
	body   *sequenceTask
	files  []*os.File
	phase  int // 0=cond, 1=body
	status int
	done   bool
}

func (t *loopTask) Start(rt *Runtime, files []*os.File) error {
	t.files = files
	rt.State.LoopDepth++
	t.cond = buildSequence(t.node.Cond).(*sequenceTask)
	return t.cond.Start(rt, files)
}

func (t *loopTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	if t.phase == 0 {
		st := t.cond.Poll(rt)
		if st == TaskStatusWait {
			return TaskStatusWait
		}
		keepGoing := (t.node.Kind == ast.LoopWhile && st == 0) || (t.node.Kind == ast.LoopUntil && st != 0)
		if !keepGoing {
			rt.State.LoopDepth--
			t.status = 0
			t.done = true
			return 0
		}
		t.body = buildSequence(t.node.Body).(*sequenceTask)
		if err := t.body.Start(rt, t.files); err != nil {
			rt.State.LoopDepth--
			t.status = 127
			t.done = true
			return t.status
		}
		t.phase = 1
		return TaskStatusWait
	}
	st := t.body.Poll(rt)
	if st == TaskStatusWait {
		return TaskStatusWait
	}
	t.status = st
	if resolved, final, done := resolveLoopBranch(rt); resolved {
		rt.State.LoopDepth--
		t.done = true
		if done {
			t.status = final
		}
		return t.status
	}
	t.cond = buildSequence(t.node.Cond).(*sequenceTask)
	if err := t.cond.Start(rt, t.files); err != nil {
		rt.State.LoopDepth--
		t.status = 127
		t.done = true
		return t.status
	}
	t.phase = 0
	return TaskStatusWait
}

// resolveLoopBranch consumes a break/continue signal aimed at this loop
// level. resolved is true if the loop must stop iterating (break, or
// continue/break targeting an outer level that must keep propagating);
// done/final apply only when the loop stops and should report status.
func resolveLoopBranch(rt *Runtime) (resolved bool, final int, done bool) {
	switch rt.State.Branch {
	case state.BranchBreak:
		if rt.State.BranchLevel <= 1 {
			rt.State.Branch = state.BranchNone
			rt.State.BranchLevel = 0
		} else {
			rt.State.BranchLevel--
		}
		return true, rt.State.LastStatus, true
	case state.BranchContinue:
		if rt.State.BranchLevel <= 1 {
			rt.State.Branch = state.BranchNone
			rt.State.BranchLevel = 0
			return false, 0, false
		}
		rt.State.BranchLevel--
		return true, rt.State.LastStatus, true
	case state.BranchReturn, state.BranchExit:
		return true, rt.State.LastStatus, true
	}
	return false, 0, false
}

// caseTask matches Subject against each item's patterns in order, running
// the first match's body — the other case mrsh's handle_command stubbed
// out.
type caseTask struct {
	node *ast.Case

	body   *sequenceTask
	status int
	done   bool
}

func (t *caseTask) Start(rt *Runtime, files []*os.File) error {
	subj, err := expandLiteral(rt, t.node.Subject)
	if err != nil {
		return err
	}
	for _, item := range t.node.Items {
		matched, err := caseItemMatches(rt, item, subj)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}
		t.body = buildSequence(item.Body).(*sequenceTask)
		return t.body.Start(rt, files)
	}
	t.status = 0
	t.done = true
	return nil
}

func (t *caseTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	if t.body == nil {
		t.status = 0
		t.done = true
		return 0
	}
	st := t.body.Poll(rt)
	if st == TaskStatusWait {
		return TaskStatusWait
	}
	t.status = st
	t.done = true
	return st
}

// funcDeclTask defines a function: it records the body and reports success
// immediately, per spec.md §4.5.
type funcDeclTask struct {
	node *ast.FuncDecl
}

func (t *funcDeclTask) Start(rt *Runtime, files []*os.File) error {
	rt.State.Functions[t.node.Name] = t.node.Body
	return nil
}

func (t *funcDeclTask) Poll(rt *Runtime) int { return 0 }
