package expand

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/pattern"
)

// ParamError is ${parameter:?word}'s "parameter null or not set" failure:
// distinct from arithm.EvalError since it isn't an arithmetic evaluation.
type ParamError struct {
	Name    string
	Message string
}

func (e *ParamError) Error() string { return e.Message }

// expandParameter resolves one ast.Parameter into the parts it contributes
// to its enclosing word, per spec.md §4.3's parameter-expansion table.
func expandParameter(x *ast.Parameter, quoted bool, env Env) ([]part, error) {
	if x.Op == ast.ParamLeadingHash {
		return expandLength(x, quoted, env)
	}
	if x.Name == "@" || x.Name == "*" {
		return expandAtStar(x, quoted, env)
	}

	val, set := lookupScalar(x.Name, env)
	if x.Op == ast.ParamNone {
		return []part{{val: val, quoted: quoted}}, nil
	}
	result, err := applyOp(x, val, set, env)
	if err != nil {
		return nil, err
	}
	return []part{{val: result, quoted: quoted}}, nil
}

func expandLength(x *ast.Parameter, quoted bool, env Env) ([]part, error) {
	var n int
	switch x.Name {
	case "@", "*":
		n = env.NumPositional()
	default:
		val, _ := lookupScalar(x.Name, env)
		n = len(val)
	}
	return []part{{val: strconv.Itoa(n), quoted: quoted}}, nil
}

// lookupScalar resolves any parameter that isn't "@" or "*" to a single
// string value, dispatching the handful of special one-character names
// (spec.md §4.2 "special parameters") and positional parameters before
// falling back to a plain variable.
func lookupScalar(name string, env Env) (string, bool) {
	switch name {
	case "#":
		return strconv.Itoa(env.NumPositional()), true
	case "?", "!", "-", "$", "0":
		return env.Special(name)
	}
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		return env.Positional(int(name[0] - '0'))
	}
	return env.Get(name)
}

// expandAtStar handles "$@"/"$*"/$@/$*: spec.md §4.3 calls out that quoted
// "$@" must expand to one field per positional parameter (even an empty
// one) while quoted "$*" joins them with the first character of $IFS.
// Unquoted, both forms are approximated identically: each positional
// becomes its own pre-split field (forced via part.brk) and is still
// subject to ordinary field splitting on its own content, same as any
// other unquoted expansion.
func expandAtStar(x *ast.Parameter, quoted bool, env Env) ([]part, error) {
	n := env.NumPositional()
	if x.Op != ast.ParamNone {
		joined := joinPositional(env, " ")
		result, err := applyOp(x, joined, n > 0, env)
		if err != nil {
			return nil, err
		}
		return []part{{val: result, quoted: quoted}}, nil
	}
	if n == 0 {
		return nil, nil
	}
	if x.Name == "*" && quoted {
		sep := " "
		if v, ok := env.Get("IFS"); ok {
			if v == "" {
				sep = ""
			} else {
				sep = v[:1]
			}
		}
		return []part{{val: joinPositional(env, sep), quoted: true}}, nil
	}
	parts := make([]part, 0, n)
	for i := 1; i <= n; i++ {
		s, _ := env.Positional(i)
		parts = append(parts, part{val: s, quoted: quoted, brk: i < n})
	}
	return parts, nil
}

func joinPositional(env Env, sep string) string {
	n := env.NumPositional()
	vals := make([]string, n)
	for i := 1; i <= n; i++ {
		vals[i-1], _ = env.Positional(i)
	}
	return strings.Join(vals, sep)
}

// applyOp implements the -/=/?/+ (with or without the ":" unset-or-empty
// modifier) and %/%%/#/## operators over an already-resolved scalar value.
func applyOp(x *ast.Parameter, val string, set bool, env Env) (string, error) {
	useDefault := !set || (x.Colon && val == "")
	switch x.Op {
	case ast.ParamMinus:
		if useDefault {
			return Literal(x.Arg, env)
		}
		return val, nil
	case ast.ParamEqual:
		if !useDefault {
			return val, nil
		}
		repl, err := Literal(x.Arg, env)
		if err != nil {
			return "", err
		}
		env.Set(x.Name, repl)
		return repl, nil
	case ast.ParamQuestion:
		if !useDefault {
			return val, nil
		}
		msg, err := Literal(x.Arg, env)
		if err != nil {
			return "", err
		}
		if msg == "" {
			msg = x.Name + ": parameter null or not set"
		}
		return "", &ParamError{Name: x.Name, Message: msg}
	case ast.ParamPlus:
		if useDefault {
			return "", nil
		}
		return Literal(x.Arg, env)
	case ast.ParamPercent, ast.ParamDPercent, ast.ParamHash, ast.ParamDHash:
		pat, err := Pattern(x.Arg, env)
		if err != nil {
			return "", err
		}
		return trimPattern(val, pat, x.Op), nil
	}
	return val, nil
}

// trimPattern implements %/%%/#/## by anchoring the pattern's translated
// regexp at the appropriate end and splicing out the matched submatch,
// mirroring mvdan-sh's removePattern: a shortest suffix match needs the
// ".*(...)$" trick since regexp engines are greedy by default, while a
// shortest prefix match falls out of anchoring "^(...)" with the pattern
// itself translated in non-greedy (pattern.Shortest) mode.
func trimPattern(val, pat string, op ast.ParamOp) string {
	fromEnd := op == ast.ParamPercent || op == ast.ParamDPercent
	greedy := op == ast.ParamDPercent || op == ast.ParamDHash

	mode := pattern.Mode(0)
	if !greedy {
		mode |= pattern.Shortest
	}
	expr, err := pattern.Regexp(pat, mode)
	if err != nil {
		return val
	}
	switch {
	case fromEnd && !greedy:
		expr = ".*(" + expr + ")$"
	case fromEnd:
		expr = "(" + expr + ")$"
	default:
		expr = "^(" + expr + ")"
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return val
	}
	loc := rx.FindStringSubmatchIndex(val)
	if loc == nil {
		return val
	}
	return val[:loc[2]] + val[loc[3]:]
}
