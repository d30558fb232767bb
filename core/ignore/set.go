package ignore

import "github.com/huangsam/devian-archive/schema"

// PatternSet is an ordered, append-only collection of patterns. A path is
// excluded when any pattern matches; order only records provenance.
type PatternSet struct {
	patterns []Pattern
}

// NewPatternSet creates a set holding the given patterns.
func NewPatternSet(patterns ...Pattern) *PatternSet {
	s := &PatternSet{}
	s.Add(patterns...)
	return s
}

// Add appends patterns to the set.
func (s *PatternSet) Add(patterns ...Pattern) {
	s.patterns = append(s.patterns, patterns...)
}

// AddRaw parses and appends raw pattern strings, skipping empty ones.
// It returns how many patterns were added.
func (s *PatternSet) AddRaw(source schema.PatternSource, raws ...string) int {
	added := 0
	for _, raw := range raws {
		if p, ok := ParsePattern(raw, source); ok {
			s.patterns = append(s.patterns, p)
			added++
		}
	}
	return added
}

// Patterns returns a copy of the patterns in merge order.
func (s *PatternSet) Patterns() []Pattern {
	out := make([]Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Len returns the number of patterns.
func (s *PatternSet) Len() int {
	return len(s.patterns)
}

// Count returns the number of patterns that came from the given source.
func (s *PatternSet) Count(source schema.PatternSource) int {
	n := 0
	for _, p := range s.patterns {
		if p.Source == source {
			n++
		}
	}
	return n
}

// Excluded reports whether rel is excluded. For directories the path is also
// tried with a trailing slash so that "dir/**" style patterns prune the
// directory itself.
func (s *PatternSet) Excluded(rel string, isDir bool) bool {
	for _, p := range s.patterns {
		if Matches(rel, p) {
			return true
		}
		if isDir && Matches(rel+"/", p) {
			return true
		}
	}
	return false
}

// Rows returns the printable form of every pattern.
func (s *PatternSet) Rows() []schema.PatternRow {
	rows := make([]schema.PatternRow, 0, len(s.patterns))
	for _, p := range s.patterns {
		rows = append(rows, p.Row())
	}
	return rows
}
