package task

import (
	"regexp"

	"github.com/posixcore/sh/ast"
	"github.com/posixcore/sh/expand"
	"github.com/posixcore/sh/pattern"
	"github.com/posixcore/sh/state"
)

func expandWords(rt *Runtime, words []ast.Word) ([]string, error) {
	return expand.Fields(words, rt.env(), rt.State.HasOption(state.NoGlob))
}

func expandLiteral(rt *Runtime, w ast.Word) (string, error) {
	return expand.Literal(w, rt.env())
}

// caseItemMatches reports whether subj matches any of item's patterns, per
// spec.md §4.5's case clause.
func caseItemMatches(rt *Runtime, item *ast.CaseItem, subj string) (bool, error) {
	for _, w := range item.Patterns {
		pat, err := expand.Pattern(w, rt.env())
		if err != nil {
			return false, err
		}
		expr, err := pattern.Regexp(pat, pattern.EntireString)
		if err != nil {
			return false, err
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return false, err
		}
		if re.MatchString(subj) {
			return true, nil
		}
	}
	return false, nil
}
