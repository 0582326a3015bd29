package task

import (
	"os"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/state"
)

// binopTask is the &&/|| combination of two AndOrLists; right is built lazily
// since short-circuiting may mean it never runs.
type binopTask struct {
	op    ast.BinOp
	left  Task
	right ast.AndOrList

	files    []*os.File
	rightRun Task
	status   int
	done     bool
}

func (t *binopTask) Start(rt *Runtime, files []*os.File) error {
	t.files = files
	return t.left.Start(rt, files)
}

func (t *binopTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	if t.rightRun == nil {
		st := t.left.Poll(rt)
		if st == TaskStatusWait {
			return TaskStatusWait
		}
		rt.State.LastStatus = st
		runRight := (t.op == ast.BinAnd && st == 0) || (t.op == ast.BinOr && st != 0)
		// The tree is right-associative: when a OP1 (b OP2 c) skips b,
		// OP2 still decides from a's status whether c runs.
		right := t.right
		for !runRight {
			next, ok := right.(*ast.Binop)
			if !ok {
				break
			}
			right = next.Right
			runRight = (next.Op == ast.BinAnd && st == 0) || (next.Op == ast.BinOr && st != 0)
		}
		if !runRight || rt.State.Branch != state.BranchNone {
			t.status = st
			t.done = true
			return st
		}
		t.rightRun = buildAndOr(right)
		if err := t.rightRun.Start(rt, t.files); err != nil {
			t.status = 127
			t.done = true
			return t.status
		}
	}
	st := t.rightRun.Poll(rt)
	if st == TaskStatusWait {
		return TaskStatusWait
	}
	t.status = st
	t.done = true
	return st
}

// asyncTask runs its inner task without the shell waiting on it, per
// spec.md §4.5's trailing `&`. $! records the last process id it started;
// the task's own exit status is never observed, and Poll only forwards to
// the inner task so it can finish its own cleanup.
type asyncTask struct {
	inner Task
}

func (t *asyncTask) Start(rt *Runtime, files []*os.File) error {
	if err := t.inner.Start(rt, files); err != nil {
		return err
	}
	switch x := t.inner.(type) {
	case *simpleCommandTask:
		if x.proc != nil {
			rt.State.BgPID = x.proc.Pid
		}
	case *pipelineTask:
		for _, s := range x.stages {
			if sc, ok := s.(*simpleCommandTask); ok && sc.proc != nil {
				rt.State.BgPID = sc.proc.Pid
			}
		}
	}
	return nil
}

// Poll forwards to inner so its own cleanup (closing redirect fds) still
// runs once it finishes; the returned status is never
// looked at by anything, since an asynchronous command's own exit status is
// never observed (spec.md §4.5) and $! already captured the pid that matters
// in Start.
func (t *asyncTask) Poll(rt *Runtime) int {
	return t.inner.Poll(rt)
}
