package pattern

import (
	"regexp"
	"testing"

	"github.com/frankban/quicktest"
)

var regexpTests = []struct {
	pat     string
	mode    Mode
	want    string
	wantErr bool

	mustMatch    []string
	mustNotMatch []string
}{
	{pat: ``, want: ``},
	{pat: `foo`, want: `foo`},
	{pat: `.`, want: `(?s)\.`},
	{pat: `foo*`, want: `(?s)foo.*`},
	{pat: `foo*`, mode: Shortest, want: `(?sU)foo.*`},
	{
		pat: `*.go`, mode: EntireString, want: `(?s)^.*\.go$`,
		mustMatch:    []string{"main.go", "a_test.go", ".go"},
		mustNotMatch: []string{"main.c"},
	},
	{
		pat: `[abc]`, mode: EntireString, want: `(?s)^[abc]$`,
		mustMatch:    []string{"a", "b", "c"},
		mustNotMatch: []string{"d"},
	},
	{
		pat: `[!abc]`, mode: EntireString, want: `(?s)^[^abc]$`,
		mustMatch:    []string{"d"},
		mustNotMatch: []string{"a"},
	},
	{pat: `\*`, want: `(?s)\*`},
	{pat: `\`, wantErr: true},
	{pat: `?`, want: `(?s).`},
	{pat: `?`, mode: Filenames, want: `(?s)[^/]`},
	{pat: `(`, want: `(?s)\(`},
	{pat: `a|b`, want: `(?s)a\|b`},
}

func TestRegexp(t *testing.T) {
	c := quicktest.New(t)
	for _, tt := range regexpTests {
		got, err := Regexp(tt.pat, tt.mode)
		if tt.wantErr {
			c.Assert(err, quicktest.Not(quicktest.IsNil), quicktest.Commentf("pat=%q", tt.pat))
			continue
		}
		c.Assert(err, quicktest.IsNil, quicktest.Commentf("pat=%q", tt.pat))
		c.Assert(got, quicktest.Equals, tt.want, quicktest.Commentf("pat=%q", tt.pat))

		rx, err := regexp.Compile(got)
		c.Assert(err, quicktest.IsNil, quicktest.Commentf("pat=%q regexp=%q", tt.pat, got))
		for _, m := range tt.mustMatch {
			c.Assert(rx.MatchString(m), quicktest.Equals, true, quicktest.Commentf("pat=%q should match %q", tt.pat, m))
		}
		for _, m := range tt.mustNotMatch {
			c.Assert(rx.MatchString(m), quicktest.Equals, false, quicktest.Commentf("pat=%q should not match %q", tt.pat, m))
		}
	}
}

func TestHasMeta(t *testing.T) {
	c := quicktest.New(t)
	c.Assert(HasMeta("foo"), quicktest.Equals, false)
	c.Assert(HasMeta("foo*"), quicktest.Equals, true)
	c.Assert(HasMeta(`foo\*`), quicktest.Equals, false)
	c.Assert(HasMeta("[abc]"), quicktest.Equals, true)
}

func TestQuoteMeta(t *testing.T) {
	c := quicktest.New(t)
	c.Assert(QuoteMeta("foo"), quicktest.Equals, "foo")
	c.Assert(QuoteMeta("foo*bar"), quicktest.Equals, `foo\*bar`)
	c.Assert(QuoteMeta("[a]"), quicktest.Equals, `\[a]`)
}
