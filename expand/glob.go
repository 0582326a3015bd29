package expand

import (
	"path/filepath"
	"strings"

	"github.com/posixcore/sh/pattern"
)

// globField expands one field as a pathname pattern, mirroring mrsh's
// expand_pathnames: a field is only a glob candidate if it contains an
// unescaped '*', '?', or '[' once its quoted runs have been escaped so they
// match literally (mvdan-sh's escapedGlobField technique, built on
// pattern.QuoteMeta rather than a second regexp translation, since Go's
// path/filepath already implements POSIX-compatible glob matching with the
// same backslash-escape convention). A pattern with no filesystem match
// passes through literally (GLOB_NOCHECK) instead of vanishing or erroring.
func globField(f []part, noGlob bool) []string {
	literal := joinLiteral(f)
	if noGlob {
		return []string{literal}
	}

	var pat strings.Builder
	for _, p := range f {
		if p.quoted {
			pat.WriteString(pattern.QuoteMeta(p.val))
		} else {
			pat.WriteString(p.val)
		}
	}
	if !pattern.HasMeta(pat.String()) {
		return []string{literal}
	}

	matches, err := filepath.Glob(pat.String())
	if err != nil || len(matches) == 0 {
		return []string{literal}
	}
	return matches
}

func joinLiteral(f []part) string {
	var sb strings.Builder
	for _, p := range f {
		sb.WriteString(p.val)
	}
	return sb.String()
}
