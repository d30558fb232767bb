// Package ignore parses ignore-style exclusion patterns and decides whether
// a project-relative path is excluded by them.
//
// The syntax is a subset of .gitignore: no negation, no escapes and no
// nested ignore files. A pattern without a slash matches any single path
// segment, a pattern with a leading slash matches only the whole path, and a
// pattern containing "**" is matched as a regular expression in which "**/"
// spans zero or more directories.
package ignore

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/devian-archive/schema"
)

// Pattern is one parsed exclusion rule. Patterns are immutable once parsed.
type Pattern struct {
	Raw        string               // Text as written by the user
	Text       string               // Raw with trailing slashes stripped
	DirOnly    bool                 // Raw ended with a slash
	DoubleStar bool                 // Text contains "**"
	Rooted     bool                 // Text starts with a slash
	Source     schema.PatternSource // Where the pattern came from

	re *regexp.Regexp // compiled form of a "**" pattern; nil if it failed to compile
}

// ParsePattern parses a single exclusion rule. It reports false when nothing
// matchable remains after trimming (e.g. "" or "/").
func ParsePattern(raw string, source schema.PatternSource) (Pattern, bool) {
	raw = strings.TrimSpace(raw)
	text := strings.TrimRight(raw, "/")
	if text == "" {
		return Pattern{}, false
	}
	p := Pattern{
		Raw:        raw,
		Text:       text,
		DirOnly:    strings.HasSuffix(raw, "/"),
		DoubleStar: strings.Contains(text, "**"),
		Rooted:     strings.HasPrefix(text, "/"),
		Source:     source,
	}
	if p.DoubleStar {
		p.re, _ = compileDoubleStar(text)
	}
	return p, true
}

// Row returns the printable form of the pattern.
func (p Pattern) Row() schema.PatternRow {
	return schema.PatternRow{
		Pattern:    p.Raw,
		Source:     p.Source,
		DirOnly:    p.DirOnly,
		DoubleStar: p.DoubleStar,
		Rooted:     p.Rooted,
	}
}

// Matches reports whether the forward-slash relative path matches the pattern.
// Rules are tried in order and the first success wins:
//  1. "**" patterns as an anchored regular expression over the full path
//  2. rooted patterns as a glob over the full path
//  3. basename patterns against every segment, the full path, and "**/"+pattern
//  4. any other pattern against the full path and "**/"+pattern
//
// A pattern that fails to translate or compile never matches by that rule.
func Matches(path string, p Pattern) bool {
	pat := p.Text
	if pat == "" {
		return false
	}

	if p.DoubleStar {
		re := p.re
		if re == nil {
			// Zero-value or hand-built Pattern: compile on demand.
			re, _ = compileDoubleStar(pat)
		}
		if re != nil && re.MatchString(path) {
			return true
		}
	}

	if rest, ok := strings.CutPrefix(pat, "/"); ok {
		return globMatch(rest, path)
	}

	if !strings.Contains(pat, "/") {
		for seg := range strings.SplitSeq(path, "/") {
			if globMatch(pat, seg) {
				return true
			}
		}
	}
	return globMatch(pat, path) || globMatch("**/"+pat, path)
}

// globMatch is doublestar.Match with malformed patterns treated as non-matches.
func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// compileDoubleStar translates a "**" pattern into an anchored regular expression.
func compileDoubleStar(pat string) (*regexp.Regexp, error) {
	return regexp.Compile(translateDoubleStar(pat))
}

// translateDoubleStar converts glob syntax into regular expression syntax:
// "**/" is zero or more segments, any other "**" is anything, "*" is anything
// but a slash, "?" is one non-slash character and "[...]" is a class.
func translateDoubleStar(pat string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pat); {
		switch {
		case strings.HasPrefix(pat[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 3
		case strings.HasPrefix(pat[i:], "**"):
			b.WriteString(".*")
			i += 2
		case pat[i] == '*':
			b.WriteString("[^/]*")
			i++
		case pat[i] == '?':
			b.WriteString("[^/]")
			i++
		case pat[i] == '[':
			class, n := translateClass(pat[i:])
			b.WriteString(class)
			i += n
		default:
			r, n := utf8.DecodeRuneInString(pat[i:])
			b.WriteString(regexp.QuoteMeta(string(r)))
			i += n
		}
	}
	b.WriteString("$")
	return b.String()
}

// translateClass converts a bracket expression at the start of s. It returns
// the regular expression text and the number of bytes consumed. An unclosed
// bracket is a literal "[".
func translateClass(s string) (string, int) {
	j := 1
	if j < len(s) && (s[j] == '!' || s[j] == '^') {
		j++
	}
	// A ']' right after the opening (or its negation) is part of the set.
	if j < len(s) && s[j] == ']' {
		j++
	}
	end := strings.IndexByte(s[j:], ']')
	if end < 0 {
		return regexp.QuoteMeta("["), 1
	}
	end += j

	body := s[1:end]
	negate := false
	if strings.HasPrefix(body, "!") || strings.HasPrefix(body, "^") {
		negate = true
		body = body[1:]
	}
	body = strings.ReplaceAll(body, `\`, `\\`)
	body = strings.ReplaceAll(body, "[", `\[`)
	body = strings.ReplaceAll(body, "]", `\]`)

	var b strings.Builder
	b.WriteString("[")
	if negate {
		b.WriteString("^/")
	}
	b.WriteString(body)
	b.WriteString("]")
	return b.String(), end + 1
}
