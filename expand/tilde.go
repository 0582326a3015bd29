package expand

import (
	"os/user"
	"strings"

	"github.com/posixcore/sh/ast"
)

// expandTilde resolves a leading "~" or "~user" prefix, per spec.md §4.3.
// Only the first leaf of an unquoted word is eligible: a tilde anywhere else
// (after a quote, a parameter, or a command substitution) is left alone, the
// same restriction mrsh's expand_tilde applies by only ever being called on
// the word's first WORD_STRING part.
//
// In assignment mode (name=value, or each ':'-separated element of a PATH-
// like list) every element after a literal ':' is independently eligible
// too, as long as the run of elements sits inside the same literal: a colon
// that only appears after expansion (e.g. produced by a parameter) does not
// re-arm eligibility.
func expandTilde(w ast.Word, env Env, assign bool) ast.Word {
	switch x := w.(type) {
	case *ast.List:
		if x.DoubleQuoted || len(x.Children) == 0 {
			return w
		}
		children := append([]ast.Word(nil), x.Children...)
		if s, ok := children[0].(*ast.String); ok && !s.SingleQuoted {
			children[0] = &ast.String{
				ValuePos: s.ValuePos,
				Value:    expandTildeLiteral(s.Value, env, assign),
			}
		}
		return &ast.List{Children: children, DoubleQuoted: false}
	case *ast.String:
		if x.SingleQuoted {
			return w
		}
		return &ast.String{ValuePos: x.ValuePos, Value: expandTildeLiteral(x.Value, env, assign)}
	default:
		return w
	}
}

func expandTildeLiteral(s string, env Env, assign bool) string {
	segs := []string{s}
	if assign {
		segs = strings.Split(s, ":")
	}
	for i, seg := range segs {
		segs[i] = expandOneTilde(seg, env)
	}
	if assign {
		return strings.Join(segs, ":")
	}
	return segs[0]
}

func expandOneTilde(seg string, env Env) string {
	if !strings.HasPrefix(seg, "~") {
		return seg
	}
	rest := seg[1:]
	name, suffix, hasSlash := strings.Cut(rest, "/")

	var dir string
	if name == "" {
		home, ok := env.Get("HOME")
		if !ok {
			return seg
		}
		dir = home
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return seg
		}
		dir = u.HomeDir
	}
	if hasSlash {
		return dir + "/" + suffix
	}
	return dir
}
