// Package matcher matches column names against glob or regular expression
// patterns, as used by a project's ignore_columns setting.
package matcher

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/etlrecon/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions, anchored to the whole name.
	Regex
	// Literal compares names for equality.
	Literal
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Literal:
		return "literal"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches names against one pattern.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
}

type matcher struct {
	pattern     string
	patternType PatternType
	compiled    *regexp.Regexp
	text        string
	fold        bool
}

// New creates a Matcher with the specified pattern and type. Surrounding
// spaces of the pattern are ignored.
func New(patternType PatternType, pattern string, opts *Options) (Matcher, error) {
	if opts == nil {
		opts = &Options{}
	}

	m := &matcher{
		pattern:     pattern,
		patternType: patternType,
		text:        strings.TrimSpace(pattern),
		fold:        opts.CaseInsensitive,
	}
	if patternType == Auto {
		m.patternType = detectPatternType(m.text)
	}

	switch m.patternType {
	case Glob, Literal:
		if m.fold {
			m.text = strings.ToLower(m.text)
		}
		if m.patternType == Glob {
			if _, err := filepath.Match(m.text, ""); err != nil {
				return nil, errors.NewValidationError("pattern", pattern, "invalid glob pattern: "+err.Error())
			}
		}
	case Regex:
		expr := "^(?:" + strings.TrimSuffix(strings.TrimPrefix(m.text, "^"), "$") + ")$"
		if m.fold {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.NewValidationError("pattern", pattern, "invalid regex pattern: "+err.Error())
		}
		m.compiled = compiled
	default:
		return nil, errors.NewValidationError("pattern", pattern, "unsupported pattern type "+m.patternType.String())
	}
	return m, nil
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	input = strings.TrimSpace(input)
	switch m.patternType {
	case Glob:
		if m.fold {
			input = strings.ToLower(input)
		}
		matched, _ := filepath.Match(m.text, input)
		return matched
	case Literal:
		if m.fold {
			return strings.EqualFold(m.text, input)
		}
		return m.text == input
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType treats a pattern with regex metacharacters as a regex,
// one with glob metacharacters as a glob and anything else as a literal.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", ".*", ".+",
		"{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}

	if strings.ContainsAny(pattern, "*?[]") {
		return Glob
	}
	return Literal
}

// Set matches a name against several patterns.
type Set struct {
	matchers []Matcher
}

// NewSet compiles every pattern with Auto detection. Blank patterns are
// skipped.
func NewSet(patterns []string, opts *Options) (*Set, error) {
	s := &Set{matchers: make([]Matcher, 0, len(patterns))}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		m, err := New(Auto, pattern, opts)
		if err != nil {
			return nil, err
		}
		s.matchers = append(s.matchers, m)
	}
	return s, nil
}

// LiteralSet matches names equal to one of names.
func LiteralSet(names []string, opts *Options) *Set {
	s := &Set{matchers: make([]Matcher, 0, len(names))}
	for _, name := range names {
		m, _ := New(Literal, name, opts)
		s.matchers = append(s.matchers, m)
	}
	return s
}

// Match returns true if any pattern matches. A nil Set matches nothing.
func (s *Set) Match(input string) bool {
	if s == nil {
		return false
	}
	for _, m := range s.matchers {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matchers)
}
