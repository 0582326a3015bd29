// Command posh is a POSIX shell built on top of package task.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/posixcore/sh/parser"
	"github.com/posixcore/sh/state"
	"github.com/posixcore/sh/task"
)

var command = pflag.StringP("command", "c", "", "command to be executed")

func main() {
	os.Exit(main1())
}

// main1 is the whole program, factored out of main so testscript.RunMain
// (cmd/posh/script_test.go) can register it as the "posh" command a .txtar
// script execs, the same way the teacher's cmd/shfmt/main_test.go registers
// its own main1.
func main1() int {
	pflag.Parse()
	return runAll()
}

func runAll() int {
	st := state.New("posh", os.Environ())
	if term.IsTerminal(int(os.Stdin.Fd())) {
		st.Options |= state.Interactive
	}
	rt := task.NewRuntime(st)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		rt.TTY = os.Stdin
	}

	var status int
	var err error
	switch {
	case *command != "":
		st.Name = "posh"
		status, err = run(rt, strings.NewReader(*command), "-c")
	case pflag.NArg() == 0:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			status, err = runInteractive(rt, os.Stdin, os.Stdout, os.Stderr)
		} else {
			status, err = run(rt, os.Stdin, "")
		}
	default:
		for _, path := range pflag.Args() {
			status, err = runPath(rt, path)
			if err != nil || status != 0 {
				break
			}
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "posh:", err)
		if status == 0 {
			status = 1
		}
	}
	return status
}

func run(rt *task.Runtime, r io.Reader, name string) (int, error) {
	prog, err := parser.ParseProgram(r, name)
	if err != nil {
		return 2, err
	}
	status, err := rt.Run(task.Build(prog), []*os.File{rt.State.Stdin, rt.State.Stdout, rt.State.Stderr})
	if rt.State.HasExit {
		return rt.State.PendingExit, err
	}
	return status, err
}

func runPath(rt *task.Runtime, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 127, err
	}
	defer f.Close()
	rt.State.Name = path
	return run(rt, f, path)
}

// runInteractive is a lightweight read-eval-print loop: it accumulates
// lines until they parse as a complete program (our parser, unlike the
// teacher's, has no incremental Incomplete() signal), then runs that
// program and starts accumulating again. A documented simplification of
// mvdan-sh's InteractiveSeq prompt loop.
func runInteractive(rt *task.Runtime, in io.Reader, out, errOut io.Writer) (int, error) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder
	status := 0
	fmt.Fprint(out, "$ ")
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
		prog, err := parser.ParseProgram(strings.NewReader(buf.String()), "")
		if err != nil {
			fmt.Fprint(out, "> ")
			continue
		}
		buf.Reset()
		st, runErr := rt.Run(task.Build(prog), []*os.File{rt.State.Stdin, rt.State.Stdout, rt.State.Stderr})
		status = st
		if runErr != nil {
			fmt.Fprintln(errOut, "posh:", runErr)
		}
		if rt.State.HasExit {
			return rt.State.PendingExit, nil
		}
		fmt.Fprint(out, "$ ")
	}
	return status, scanner.Err()
}
