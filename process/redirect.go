package process

import (
	"fmt"
	"os"

	"github.com/posixcore/sh/ast"
)

// OpenRedirect opens the filesystem target of one redirection operator,
// per spec.md §4.6. noClobber applies set -C to a plain ">": the open
// fails if target already exists as a regular file, unless op is the
// explicit override ">|". <&N/>&N (duplicating an existing fd) and
// heredocs (whose body is already in memory) have no file to open here —
// package task handles those directly against its own fd table.
func OpenRedirect(op ast.RedirOp, target string, noClobber bool) (*os.File, error) {
	switch op {
	case ast.RedirLess:
		return os.Open(target)
	case ast.RedirGreat:
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if noClobber {
			if fi, err := os.Stat(target); err == nil && !fi.Mode().IsRegular() {
				return os.OpenFile(target, os.O_WRONLY, 0o666)
			}
			flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
		}
		return os.OpenFile(target, flags, 0o666)
	case ast.RedirClobber:
		return os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	case ast.RedirAppend:
		return os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
	case ast.RedirLessGreat:
		return os.OpenFile(target, os.O_RDWR|os.O_CREATE, 0o666)
	default:
		return nil, fmt.Errorf("process: %s has no filesystem target", op)
	}
}
