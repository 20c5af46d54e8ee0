package git

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher matches slash- or OS-separated relative paths against
// gitignore patterns.
type IgnoreMatcher struct {
	patterns []string
	matcher  gitignore.Matcher
}

// NewIgnoreMatcher compiles patterns. Blank lines and comments are skipped.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	kept := make([]string, 0, len(patterns))
	parsed := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimRight(p, " \t\r")
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		kept = append(kept, p)
		parsed = append(parsed, gitignore.ParsePattern(p, nil))
	}
	return &IgnoreMatcher{patterns: kept, matcher: gitignore.NewMatcher(parsed)}
}

// LoadIgnoreFile reads patterns from a .gitignore style file. An empty path
// or a missing file yields a matcher that ignores nothing.
func LoadIgnoreFile(path string) (*IgnoreMatcher, error) {
	if path == "" {
		return NewIgnoreMatcher(nil), nil
	}
	f, err := os.Open(path) // #nosec G304 -- path comes from the CLI
	if err != nil {
		if os.IsNotExist(err) {
			return NewIgnoreMatcher(nil), nil
		}
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	return NewIgnoreMatcher(lines), nil
}

// Patterns returns the effective patterns.
func (m *IgnoreMatcher) Patterns() []string {
	return m.patterns
}

// Match reports whether relPath is ignored.
func (m *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel := filepath.ToSlash(filepath.Clean(relPath))
	if rel == "." || rel == "" {
		return false
	}
	return m.matcher.Match(strings.Split(rel, "/"), isDir)
}
