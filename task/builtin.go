package task

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/posixcore/sh/parser"
	"github.com/posixcore/sh/state"
)

// builtinFunc runs synchronously inside simpleCommandTask.Start and returns
// only when the builtin is finished (eval runs a nested Runtime.Run, wait
// blocks in Reaper.Wait), so none of them need their own Start/Poll split.
type builtinFunc func(rt *Runtime, argv []string, files []*os.File) int

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		":":        biColon,
		"cd":       biCd,
		"pwd":      biPwd,
		"exit":     biExit,
		"export":   biExport,
		"unset":    biUnset,
		"readonly": biReadonly,
		"shift":    biShift,
		"break":    biBreak,
		"continue": biContinue,
		"return":   biReturn,
		"set":      biSet,
		"eval":     biEval,
		"wait":     biWait,
	}
}

func out(files []*os.File, i int, def *os.File) *os.File {
	if i < len(files) && files[i] != nil {
		return files[i]
	}
	return def
}

func biColon(rt *Runtime, argv []string, files []*os.File) int { return 0 }

func biCd(rt *Runtime, argv []string, files []*os.File) int {
	dir := ""
	if len(argv) > 1 {
		dir = argv[1]
	} else if home, ok := rt.State.Get("HOME"); ok {
		dir = home
	}
	if dir == "" {
		fmt.Fprintln(out(files, 2, os.Stderr), "cd: HOME not set")
		return 1
	}
	if err := os.Chdir(dir); err != nil {
		fmt.Fprintln(out(files, 2, os.Stderr), "cd:", err)
		return 1
	}
	if wd, err := os.Getwd(); err == nil {
		rt.State.Assign("PWD", wd)
	}
	return 0
}

func biPwd(rt *Runtime, argv []string, files []*os.File) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(out(files, 2, os.Stderr), "pwd:", err)
		return 1
	}
	fmt.Fprintln(out(files, 1, os.Stdout), wd)
	return 0
}

func biExit(rt *Runtime, argv []string, files []*os.File) int {
	status := rt.State.LastStatus
	if len(argv) > 1 {
		if n, err := strconv.Atoi(argv[1]); err == nil {
			status = n
		}
	}
	rt.State.HasExit = true
	rt.State.PendingExit = status
	rt.State.Branch = state.BranchExit
	return status
}

func biExport(rt *Runtime, argv []string, files []*os.File) int {
	for _, arg := range argv[1:] {
		if name, val, ok := strings.Cut(arg, "="); ok {
			rt.State.Assign(name, val)
			rt.State.Export(name)
		} else {
			rt.State.Export(arg)
		}
	}
	return 0
}

func biUnset(rt *Runtime, argv []string, files []*os.File) int {
	status := 0
	for _, name := range argv[1:] {
		if err := rt.State.Unset(name); err != nil {
			fmt.Fprintln(out(files, 2, os.Stderr), "unset:", err)
			status = 1
		}
	}
	return status
}

func biReadonly(rt *Runtime, argv []string, files []*os.File) int {
	for _, arg := range argv[1:] {
		if name, val, ok := strings.Cut(arg, "="); ok {
			rt.State.Assign(name, val)
			rt.State.MarkReadOnly(name)
		} else {
			rt.State.MarkReadOnly(arg)
		}
	}
	return 0
}

func biShift(rt *Runtime, argv []string, files []*os.File) int {
	n := 1
	if len(argv) > 1 {
		if v, err := strconv.Atoi(argv[1]); err == nil {
			n = v
		}
	}
	frame := rt.State.Frame()
	if n < 0 || n > len(frame.Args) {
		fmt.Fprintln(out(files, 2, os.Stderr), "shift: shift count out of range")
		return 1
	}
	frame.Args = frame.Args[n:]
	return 0
}

func branchLevel(argv []string) int {
	if len(argv) > 1 {
		if n, err := strconv.Atoi(argv[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func biBreak(rt *Runtime, argv []string, files []*os.File) int {
	if rt.State.LoopDepth == 0 {
		return 0
	}
	rt.State.Branch = state.BranchBreak
	rt.State.BranchLevel = branchLevel(argv)
	return 0
}

func biContinue(rt *Runtime, argv []string, files []*os.File) int {
	if rt.State.LoopDepth == 0 {
		return 0
	}
	rt.State.Branch = state.BranchContinue
	rt.State.BranchLevel = branchLevel(argv)
	return 0
}

func biReturn(rt *Runtime, argv []string, files []*os.File) int {
	status := rt.State.LastStatus
	if len(argv) > 1 {
		if n, err := strconv.Atoi(argv[1]); err == nil {
			status = n
		}
	}
	rt.State.Branch = state.BranchReturn
	rt.State.LastStatus = status
	return status
}

func biSet(rt *Runtime, argv []string, files []*os.File) int {
	letters := map[byte]state.Option{
		'a': state.AllExport, 'b': state.Notify, 'C': state.NoClobber,
		'e': state.ErrExit, 'f': state.NoGlob, 'h': state.PreLookup,
		'm': state.Monitor, 'n': state.NoExec, 'u': state.NoUnset,
		'v': state.Verbose, 'x': state.XTrace,
	}
	i := 1
	for ; i < len(argv); i++ {
		arg := argv[i]
		if len(arg) < 2 || (arg[0] != '-' && arg[0] != '+') {
			break
		}
		on := arg[0] == '-'
		for _, c := range arg[1:] {
			if opt, ok := letters[byte(c)]; ok {
				rt.State.SetOption(opt, on)
			}
		}
	}
	if i < len(argv) {
		rt.State.Frame().Args = append([]string(nil), argv[i:]...)
	}
	return 0
}

func biEval(rt *Runtime, argv []string, files []*os.File) int {
	src := strings.Join(argv[1:], " ")
	prog, err := parser.ParseProgram(strings.NewReader(src), "eval")
	if err != nil {
		fmt.Fprintln(out(files, 2, os.Stderr), "eval:", err)
		return 2
	}
	t := Build(prog)
	status, err := rt.Run(t, files)
	if err != nil {
		fmt.Fprintln(out(files, 2, os.Stderr), "eval:", err)
		return 1
	}
	return status
}

func biWait(rt *Runtime, argv []string, files []*os.File) int {
	for {
		pending := false
		for _, p := range rt.Reaper.All() {
			if !p.Exited() {
				pending = true
			}
		}
		if !pending {
			return 0
		}
		if _, err := rt.Reaper.Wait(); err != nil {
			return 1
		}
	}
}
