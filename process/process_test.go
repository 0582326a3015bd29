package process

import (
	"testing"

	"github.com/frankban/quicktest"
	"golang.org/x/sys/unix"
)

func TestExitStatusNormalExit(t *testing.T) {
	c := quicktest.New(t)
	p := &Process{Finished: true, Status: unix.WaitStatus(7 << 8)}
	c.Assert(p.Exited(), quicktest.Equals, true)
	c.Assert(p.ExitStatus(), quicktest.Equals, 7)
	c.Assert(p.Stopped(), quicktest.Equals, false)
}

func TestExitStatusKilledBySignal(t *testing.T) {
	c := quicktest.New(t)
	p := &Process{Finished: true, Status: unix.WaitStatus(unix.SIGKILL)}
	c.Assert(p.ExitStatus(), quicktest.Equals, 128+int(unix.SIGKILL))
}

func TestStopped(t *testing.T) {
	c := quicktest.New(t)
	p := &Process{Status: unix.WaitStatus(unix.SIGTSTP<<8 | 0x7F)}
	c.Assert(p.Stopped(), quicktest.Equals, true)
	c.Assert(p.Exited(), quicktest.Equals, false)
}

func TestJobDone(t *testing.T) {
	c := quicktest.New(t)
	a := &Process{Finished: true}
	b := &Process{Finished: false}
	job := &Job{Processes: []*Process{a, b}}
	c.Assert(job.Done(), quicktest.Equals, false)
	b.Finished = true
	c.Assert(job.Done(), quicktest.Equals, true)
}

func TestReaperTrackAndLookup(t *testing.T) {
	c := quicktest.New(t)
	r := NewReaper()
	p := &Process{Pid: 4242}
	r.Track(p)
	got, ok := r.Lookup(4242)
	c.Assert(ok, quicktest.Equals, true)
	c.Assert(got, quicktest.Equals, p)
	_, ok = r.Lookup(1)
	c.Assert(ok, quicktest.Equals, false)
}

func TestStartAndReap(t *testing.T) {
	c := quicktest.New(t)

	proc, err := Start(StartOptions{
		Argv: []string{"true"},
		Env:  []string{"PATH=/usr/bin:/bin"},
	})
	c.Assert(err, quicktest.IsNil)

	reaper := NewReaper()
	reaper.Track(proc)
	for !proc.Exited() {
		_, err := reaper.Wait()
		c.Assert(err, quicktest.IsNil)
	}
	c.Assert(proc.ExitStatus(), quicktest.Equals, 0)
}
