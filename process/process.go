// Package process manages the operating-system processes a running shell
// starts: spawning them with the right file descriptors and process group,
// and reaping their exit/stop/continue status off a single waitpid loop.
//
// Grounded on mrsh's shell/process.c (process_poll/process_notify) for the
// "tracked process, reported into by a state-change loop" shape, and on
// shell/task.c's task_run for the single waitpid(-1, ...) call that feeds
// it — here split into Reaper.Wait so package task's poll loop owns calling
// it, matching spec.md §5's "only the top-level poll driver blocks" rule.
// The process-group/terminal-control pieces (§4.6, §5) have no surviving
// mrsh source (its process.c predates job control) and are grounded instead
// in golang.org/x/sys/unix idiom, the same module mvdan-sh's own
// interp/os_unix.go depends on for raw syscall access.
package process

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Process is one forked-and-exec'd child this shell is tracking.
type Process struct {
	Pid      int
	cmd      *exec.Cmd
	Finished bool
	Status   unix.WaitStatus
}

// Exited reports whether the process has run to completion (normally or by
// signal); Poll()'s second return value is only meaningful once this is true.
func (p *Process) Exited() bool { return p.Finished }

// ExitStatus is the shell-visible exit status: WEXITSTATUS on normal exit,
// 128+signal on death by signal, matching spec.md §4.6's $? convention.
func (p *Process) ExitStatus() int {
	switch {
	case p.Status.Exited():
		return p.Status.ExitStatus()
	case p.Status.Signaled():
		return 128 + int(p.Status.Signal())
	default:
		return -1
	}
}

// Stopped reports a job-control suspension (^Z), distinct from exiting.
func (p *Process) Stopped() bool { return p.Status.Stopped() }

// Poll is the non-blocking check package task's task tree calls every pass:
// it never itself waits, mirroring mrsh's process_poll.
func (p *Process) Poll() (exited bool, status int) {
	return p.Finished, p.ExitStatus()
}

// Job is one pipeline's worth of processes sharing a process group.
type Job struct {
	PGID      int
	Processes []*Process
}

// Done reports whether every process in the job has exited.
func (j *Job) Done() bool {
	for _, p := range j.Processes {
		if !p.Finished {
			return false
		}
	}
	return true
}

// Reaper tracks every live process a shell has started. Only one Reaper's
// Wait call should ever be in flight at a time — the top-level poll driver
// in package task owns it exclusively, per spec.md §5.
type Reaper struct {
	procs map[int]*Process
}

func NewReaper() *Reaper {
	return &Reaper{procs: make(map[int]*Process)}
}

// Track registers a freshly started process so a later Wait can find it.
func (r *Reaper) Track(p *Process) { r.procs[p.Pid] = p }

// Lookup finds a tracked process by pid, for $! / job-table bookkeeping.
func (r *Reaper) Lookup(pid int) (*Process, bool) {
	p, ok := r.procs[pid]
	return p, ok
}

// All returns every process this Reaper has ever tracked, for the wait
// builtin.
func (r *Reaper) All() []*Process {
	out := make([]*Process, 0, len(r.procs))
	for _, p := range r.procs {
		out = append(out, p)
	}
	return out
}

// Wait blocks for the next child state change from any tracked process
// (WUNTRACED|WCONTINUED so ^Z/fg transitions are visible to job control)
// and records it. Returns the pid that changed, or 0 if there is currently
// nothing to wait for (ECHILD).
func (r *Reaper) Wait() (int, error) {
	var status unix.WaitStatus
	pid, err := unix.Wait4(-1, &status, unix.WUNTRACED|unix.WCONTINUED, nil)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		if err == unix.ECHILD {
			return 0, nil
		}
		return 0, err
	}
	if p, ok := r.procs[pid]; ok {
		p.Status = status
		if status.Exited() || status.Signaled() {
			p.Finished = true
		}
	}
	return pid, nil
}

// StartOptions configures one forked child.
type StartOptions struct {
	Argv []string
	Env  []string

	// Files maps fd i in the child to Files[i] in the parent; nil entries
	// inherit /dev/null semantics are not applied — a nil Stdin/Stdout/
	// Stderr falls back to the parent's own, matching os/exec's defaults.
	Files []*os.File

	// PGID is the process group to join; 0 makes the new process its own
	// group leader (the first process of a new job).
	PGID int
	// Foreground hands the controlling terminal to PGID once known, for
	// job-control's "only the foreground job reads the tty" rule.
	Foreground bool
	TTY        *os.File
}

// Start forks and execs one command, per spec.md §4.6/§5.
func Start(opts StartOptions) (*Process, error) {
	if len(opts.Argv) == 0 {
		return nil, fmt.Errorf("process: empty argv")
	}
	path, err := exec.LookPath(opts.Argv[0])
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, opts.Argv[1:]...)
	cmd.Env = opts.Env
	cmd.Stdin = fileAt(opts.Files, 0, os.Stdin)
	cmd.Stdout = fileAt(opts.Files, 1, os.Stdout)
	cmd.Stderr = fileAt(opts.Files, 2, os.Stderr)
	if len(opts.Files) > 3 {
		cmd.ExtraFiles = opts.Files[3:]
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    opts.PGID,
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	pid := cmd.Process.Pid
	pgid := opts.PGID
	if pgid == 0 {
		pgid = pid
	}
	if opts.Foreground && opts.TTY != nil {
		_ = SetForeground(opts.TTY, pgid)
	}
	return &Process{Pid: pid, cmd: cmd}, nil
}

func fileAt(files []*os.File, i int, def *os.File) *os.File {
	if i < len(files) && files[i] != nil {
		return files[i]
	}
	return def
}

// SetForeground hands tty's controlling process group to pgid, used both to
// give a foreground job the terminal and to reclaim it for the shell
// itself once that job finishes or stops.
func SetForeground(tty *os.File, pgid int) error {
	return unix.IoctlSetPointerInt(int(tty.Fd()), unix.TIOCSPGRP, pgid)
}

// Foreground reports the terminal's current foreground process group.
func Foreground(tty *os.File) (int, error) {
	return unix.IoctlGetInt(int(tty.Fd()), unix.TIOCGPGRP)
}
