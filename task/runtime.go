// Package task lowers an *ast.Program into a tree of poll-driven tasks and
// runs it, completing the control-flow clauses mrsh's shell/shell.c stubs
// with assert(false) // TODO: implement this (for, loop, case, function
// definition/call) using the same task-object shape.
//
// Grounded on mrsh's shell/shell.c (the handle_* lowering functions) and
// shell/task.c + shell/task/assignment.c + shell/task/async.c for the
// two-phase Start/Poll shape: Start forks/execs or runs a builtin
// synchronously (never blocking on a child's exit), Poll reports
// TaskStatusWait until the runtime's single waitpid-driven Reaper.Wait call
// (package process) reports progress. Composite tasks (pipeline, if, loop,
// for, case, sequence) simply delegate Start/Poll to their children in the
// right order. Below the top-level Run call, only the wait builtin blocks
// in Reaper.Wait itself; eval and command substitution run nested Run calls.
package task

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/expand"
	"github.com/posixcore/sh/process"
	"github.com/posixcore/sh/state"
)

// TaskStatusWait mirrors mrsh's TASK_STATUS_WAIT: Poll returns this to mean
// "still running, call again after the next reaped state change."
const TaskStatusWait = -1

// Task is one node of the lowered program.
type Task interface {
	// Start kicks the task off against files, the fd table files[i] holds
	// fd i for anything this task forks (files[0..2] are stdin/out/err).
	// It must not block waiting for a child to finish.
	Start(rt *Runtime, files []*os.File) error
	// Poll reports TaskStatusWait, or the task's POSIX exit status once done.
	Poll(rt *Runtime) int
}

// Runtime is the shared state every task sees: the shell's variables and
// options (package state), the process reaper, and the controlling
// terminal for job control.
type Runtime struct {
	State    *state.State
	Reaper   *process.Reaper
	TTY      *os.File // nil when not a controlling terminal (non-interactive)
	SelfPGID int

	// background holds every asyncTask (trailing `&`) still running. The
	// shell never waits on these for its own control flow, but they still
	// need polling so their own completion cleanup (closing redirect fds)
	// eventually runs instead of leaking.
	background []Task
}

// trackBackground registers an asyncTask to keep polling until it finishes,
// without making anything wait on it.
func (rt *Runtime) trackBackground(t Task) {
	rt.background = append(rt.background, t)
}

// pollBackground advances every still-running background task one step and
// drops the ones that have finished.
func (rt *Runtime) pollBackground() {
	live := rt.background[:0]
	for _, t := range rt.background {
		if t.Poll(rt) == TaskStatusWait {
			live = append(live, t)
		}
	}
	rt.background = live
}

// NewRuntime builds a Runtime around an already-initialized *state.State.
func NewRuntime(st *state.State) *Runtime {
	return &Runtime{
		State:  st,
		Reaper: process.NewReaper(),
	}
}

// Run drives task to completion, blocking in Reaper.Wait whenever a poll
// reports TaskStatusWait, per spec.md §5.
func (rt *Runtime) Run(t Task, files []*os.File) (int, error) {
	if err := t.Start(rt, files); err != nil {
		return 127, err
	}
	for {
		status := t.Poll(rt)
		rt.pollBackground()
		if status != TaskStatusWait {
			return status, nil
		}
		if _, err := rt.Reaper.Wait(); err != nil {
			return 1, err
		}
	}
}

// env adapts *state.State (which already implements everything expand.Env
// needs except RunCmdSubst) with a callback into this runtime, so package
// expand never has to import package task.
type env struct {
	*state.State
	rt *Runtime
}

func (e env) RunCmdSubst(prog *ast.Program) (string, error) {
	return e.rt.captureOutput(prog)
}

func (rt *Runtime) env() expand.Env { return env{State: rt.State, rt: rt} }

// captureOutput runs prog to completion with its stdout captured into a
// pipe read back in this process, for $(...) and `...` command
// substitution. It reuses Run, so nested substitutions recurse normally.
// The drain (reading the pipe) and the run (writing to it) must proceed
// concurrently or a large enough output deadlocks on the pipe's buffer,
// so the two halves are coordinated with errgroup rather than a plain
// sequential read-after-write.
//
// Per spec.md §4.3, the captured program runs in a subshell: it gets the
// same state.State cloning subshellTask uses for `( ... )`, so assignments
// and option changes inside $(...) / `...` never leak into the caller.
func (rt *Runtime) captureOutput(prog *ast.Program) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	files := []*os.File{os.Stdin, w, os.Stderr}

	var g errgroup.Group
	var out []byte
	g.Go(func() error {
		defer r.Close()
		buf, err := io.ReadAll(r)
		out = buf
		return err
	})

	outer := rt.State
	rt.State = cloneState(outer)
	t := Build(prog)
	_, runErr := rt.Run(t, files)
	rt.State = outer
	w.Close()

	if readErr := g.Wait(); readErr != nil && runErr == nil {
		return string(out), readErr
	}
	return string(out), runErr
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
