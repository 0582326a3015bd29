package task

import (
	"os"
	"strconv"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/expand"
	"github.com/posixcore/sh/process"
	"github.com/posixcore/sh/state"
)

// simpleCommandTask runs one ast.Simple: assignments, word expansion,
// redirection, then either a function call, a builtin (run in-process,
// synchronously — eval and wait block until done), or a forked external
// process.
// Grounded on mrsh/shell/task_builtin.c and shell/task/assignment.c's
// phases, collapsed to this package's two-phase Start/Poll shape.
type simpleCommandTask struct {
	cmd *ast.Simple

	done    bool
	status  int
	proc    *process.Process
	opened  []*os.File
	callee  Task // set when cmd.Name resolves to a shell function
}

func (t *simpleCommandTask) Start(rt *Runtime, files []*os.File) error {
	env := rt.env()

	if t.cmd.Name == nil {
		for _, a := range t.cmd.Assigns {
			val, err := expand.Assign(a.Value, env)
			if err != nil {
				return err
			}
			if err := rt.State.Assign(a.Name, val); err != nil {
				rt.State.Stderr.WriteString(err.Error() + "\n")
				t.status = 1
			}
		}
		t.done = true
		return nil
	}

	// Prefix assignments on a non-assignment command are applied directly
	// to shell state rather than scoped to just this command's child
	// environment; a simplification from POSIX's temporary-export scoping,
	// documented in DESIGN.md.
	for _, a := range t.cmd.Assigns {
		val, err := expand.Assign(a.Value, env)
		if err != nil {
			return err
		}
		rt.State.Assign(a.Name, val)
	}

	words := append([]ast.Word{t.cmd.Name}, t.cmd.Args...)
	argv, err := expand.Fields(words, env, rt.State.HasOption(state.NoGlob))
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		t.done = true
		return nil
	}

	cmdFiles, opened, err := applyRedirects(files, t.cmd.Redirs, rt)
	t.opened = opened
	if err != nil {
		closeAll(opened)
		return err
	}

	if body, ok := rt.State.Functions[argv[0]]; ok {
		rt.State.PushArgs(argv[1:])
		t.callee = buildCommand(body)
		if err := t.callee.Start(rt, cmdFiles); err != nil {
			rt.State.PopArgs()
			return err
		}
		return nil
	}

	if fn, ok := builtins[argv[0]]; ok {
		t.status = fn(rt, argv, cmdFiles)
		t.done = true
		closeAll(opened)
		return nil
	}

	proc, err := process.Start(process.StartOptions{
		Argv:       argv,
		Env:        rt.State.Environ(),
		Files:      cmdFiles,
		Foreground: rt.TTY != nil,
		TTY:        rt.TTY,
	})
	if err != nil {
		closeAll(opened)
		t.status = 127
		if os.IsNotExist(err) {
			t.status = 127
		} else {
			t.status = 126
		}
		t.done = true
		return nil
	}
	rt.Reaper.Track(proc)
	t.proc = proc
	return nil
}

func (t *simpleCommandTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	if t.callee != nil {
		st := t.callee.Poll(rt)
		if st == TaskStatusWait {
			return TaskStatusWait
		}
		rt.State.PopArgs()
		if rt.State.Branch == state.BranchReturn {
			rt.State.Branch = state.BranchNone
		}
		t.status = st
		t.done = true
		return st
	}
	if !t.proc.Exited() {
		return TaskStatusWait
	}
	t.status = t.proc.ExitStatus()
	t.done = true
	closeAll(t.opened)
	return t.status
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// applyRedirects opens every redirection target and returns a new fd table
// (files is never mutated in place, so pipeline stages and the parent keep
// independent views), plus the filesystem handles to close once the command
// finishes.
func applyRedirects(files []*os.File, redirs []*ast.Redirect, rt *Runtime) ([]*os.File, []*os.File, error) {
	out := append([]*os.File(nil), files...)
	var opened []*os.File
	env := rt.env()

	grow := func(fd int) {
		for len(out) <= fd {
			out = append(out, nil)
		}
	}

	for _, r := range redirs {
		fd := r.DefaultFd()
		grow(fd)
		switch r.Op {
		case ast.RedirLess, ast.RedirGreat, ast.RedirClobber, ast.RedirAppend, ast.RedirLessGreat:
			target, err := expand.Literal(r.Word, env)
			if err != nil {
				return out, opened, err
			}
			noClobber := r.Op == ast.RedirGreat && rt.State.HasOption(state.NoClobber)
			f, err := process.OpenRedirect(r.Op, target, noClobber)
			if err != nil {
				return out, opened, err
			}
			out[fd] = f
			opened = append(opened, f)
		case ast.RedirLessAnd, ast.RedirGreatAnd:
			target, err := expand.Literal(r.Word, env)
			if err != nil {
				return out, opened, err
			}
			if target == "-" {
				out[fd] = nil
				continue
			}
			src, err := strconv.Atoi(target)
			if err != nil || src >= len(out) || out[src] == nil {
				return out, opened, fail("bad file descriptor %q", target)
			}
			out[fd] = out[src]
		case ast.RedirHeredoc, ast.RedirHeredocDash:
			var body []byte
			for _, line := range r.HereDoc {
				s, err := expand.Literal(line, env)
				if err != nil {
					return out, opened, err
				}
				body = append(body, s...)
			}
			pr, pw, err := os.Pipe()
			if err != nil {
				return out, opened, err
			}
			go func(data []byte) {
				pw.Write(data)
				pw.Close()
			}(body)
			out[fd] = pr
			opened = append(opened, pr)
		}
	}
	return out, opened, nil
}
