package types

import (
	"regexp"
	"strings"
)

// Pattern is a glob pattern literal. '*' matches any run of characters and
// '?' matches exactly one; everything else matches literally.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// CompilePattern compiles a glob pattern. Compilation cannot fail because
// every non-wildcard character is quoted.
func CompilePattern(glob string) *Pattern {
	var b strings.Builder
	b.WriteString(`\A(?s:`)
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`)\z`)
	return &Pattern{source: glob, re: regexp.MustCompile(b.String())}
}

// Match reports whether s matches the whole pattern.
func (p *Pattern) Match(s string) bool {
	return p.re.MatchString(s)
}

// String returns the glob source.
func (p *Pattern) String() string {
	return p.source
}
