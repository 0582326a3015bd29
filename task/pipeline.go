package task

import (
	"os"

	"github.com/posixcore/sh/ast"
)

// pipelineTask forks every stage up front (the only way a pipeline's stages
// can run concurrently — they're independent OS processes connected by
// pipes, not goroutines) and then only polls for completion. Grounded on
// mrsh/shell/task/pipeline.c's per-process fd wiring.
type pipelineTask struct {
	node   *ast.Pipeline
	stages []Task
	status int
	done   bool
}

func buildPipeline(p *ast.Pipeline) Task {
	t := &pipelineTask{node: p}
	for _, stmt := range p.Commands {
		t.stages = append(t.stages, buildStmt(stmt))
	}
	return t
}

// buildStmt wraps a compound/simple command together with the redirects a
// pipeline stmt carries (mrsh attaches io_redirects only to simple commands;
// this module lets `{ ...; } >f` carry them too via ast.Stmt).
func buildStmt(s *ast.Stmt) Task {
	inner := buildCommand(s.Cmd)
	if len(s.Redirs) == 0 {
		return inner
	}
	return &redirectedTask{inner: inner, redirs: s.Redirs}
}

// redirectedTask applies a compound command's own redirects before handing
// off to it; simpleCommandTask applies its own redirects directly since it
// also needs them for builtin dispatch.
type redirectedTask struct {
	inner  Task
	redirs []*ast.Redirect
	opened []*os.File
}

func (t *redirectedTask) Start(rt *Runtime, files []*os.File) error {
	newFiles, opened, err := applyRedirects(files, t.redirs, rt)
	t.opened = opened
	if err != nil {
		closeAll(opened)
		return err
	}
	return t.inner.Start(rt, newFiles)
}

func (t *redirectedTask) Poll(rt *Runtime) int {
	st := t.inner.Poll(rt)
	if st != TaskStatusWait {
		closeAll(t.opened)
	}
	return st
}

func (t *pipelineTask) Start(rt *Runtime, files []*os.File) error {
	n := len(t.stages)
	stdin := fileOrDefault(files, 0, os.Stdin)
	stderr := fileOrDefault(files, 2, os.Stderr)
	var extra []*os.File
	if len(files) > 3 {
		extra = files[3:]
	}

	for i, stage := range t.stages {
		var stdout *os.File
		var nextStdin *os.File
		closeAfter := []*os.File{}
		if i == n-1 {
			stdout = fileOrDefault(files, 1, os.Stdout)
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				return err
			}
			stdout = w
			nextStdin = r
			closeAfter = append(closeAfter, w)
		}

		stageFiles := append([]*os.File{stdin, stdout, stderr}, extra...)
		if err := stage.Start(rt, stageFiles); err != nil {
			return err
		}
		for _, f := range closeAfter {
			f.Close()
		}
		if i > 0 {
			stdin.Close()
		}
		stdin = nextStdin
	}
	return nil
}

func fileOrDefault(files []*os.File, i int, def *os.File) *os.File {
	if i < len(files) && files[i] != nil {
		return files[i]
	}
	return def
}

func (t *pipelineTask) Poll(rt *Runtime) int {
	if t.done {
		return t.status
	}
	waiting := false
	last := 0
	for _, s := range t.stages {
		st := s.Poll(rt)
		if st == TaskStatusWait {
			waiting = true
			continue
		}
		last = st
	}
	if waiting {
		return TaskStatusWait
	}
	// Exit status is the last stage's, per spec.md §4.4; ! negates it.
	status := last
	if t.node.Bang {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
	}
	t.status = status
	t.done = true
	return status
}
