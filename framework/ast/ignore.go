package ast

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ignoreMatcher decides which workspace paths the indexer skips. Patterns
// without a slash match any single path segment ("target", "*.gen.rs").
// Patterns with a slash match the whole path relative to the workspace and
// may use "**" to cross directories ("third_party/**/tests").
type ignoreMatcher struct {
	segments []string
	paths    []*regexp.Regexp
}

func newIgnoreMatcher(patterns []string) *ignoreMatcher {
	m := &ignoreMatcher{}
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(pattern)), "/")
		if pattern == "" {
			continue
		}
		if !strings.Contains(pattern, "/") {
			m.segments = append(m.segments, pattern)
			continue
		}
		re, err := regexp.Compile(globToRegex(strings.TrimPrefix(pattern, "/")))
		if err != nil {
			continue
		}
		m.paths = append(m.paths, re)
	}
	return m
}

// Match reports whether rel, a slash or OS separated path relative to the
// workspace root, is ignored.
func (m *ignoreMatcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, re := range m.paths {
		if re.MatchString(rel) {
			return true
		}
	}
	for _, segment := range strings.Split(rel, "/") {
		for _, pattern := range m.segments {
			if ok, err := filepath.Match(pattern, segment); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch ch {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				i++
				// "**/" also matches zero directories.
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
					b.WriteString("(?:.*/)?")
				} else {
					b.WriteString(".*")
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '[', ']', '{', '}', '\\':
			b.WriteRune('\\')
			b.WriteRune(ch)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteString("$")
	return b.String()
}
