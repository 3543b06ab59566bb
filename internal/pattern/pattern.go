// Package pattern matches symbol names against glob and regex patterns.
// It backs the include/exclude filters applied while extracting a catalog
// and the --filter flag of the symbols command.
package pattern

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Type represents the kind of pattern.
type Type int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob Type = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type from its syntax.
	Auto
)

// String returns a string representation of the Type.
func (t Type) String() string {
	switch t {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Pattern is a compiled name pattern.
type Pattern interface {
	// Match reports whether name matches the pattern.
	Match(name string) bool
	// MatchAll returns the names that match, preserving order.
	MatchAll(names ...string) []string
	// String returns the source expression.
	String() string
	// Type returns the resolved pattern type.
	Type() Type
}

// Options configures pattern compilation.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

type pattern struct {
	expr            string
	kind            Type
	glob            string
	compiled        *regexp.Regexp
	caseInsensitive bool
}

// New compiles expr as the given pattern type.
func New(kind Type, expr string, opts ...*Options) (Pattern, error) {
	options := &Options{}
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	p := &pattern{expr: expr, kind: kind, caseInsensitive: options.CaseInsensitive}
	if kind == Auto {
		p.kind = detectType(expr)
	}

	switch p.kind {
	case Glob:
		p.glob = expr
		if options.CaseInsensitive {
			p.glob = strings.ToLower(p.glob)
		}
		if _, err := filepath.Match(p.glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", expr, err)
		}
	case Regex:
		source := expr
		if options.Anchored {
			if !strings.HasPrefix(source, "^") {
				source = "^" + source
			}
			if !strings.HasSuffix(source, "$") {
				source += "$"
			}
		}
		if options.CaseInsensitive && !strings.HasPrefix(source, "(?i)") {
			source = "(?i)" + source
		}
		compiled, err := regexp.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", expr, err)
		}
		p.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", kind)
	}

	return p, nil
}

// MustNew is like New but panics on error.
func MustNew(kind Type, expr string, opts ...*Options) Pattern {
	p, err := New(kind, expr, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether name matches the pattern.
func (p *pattern) Match(name string) bool {
	if p.kind == Regex {
		return p.compiled.MatchString(name)
	}
	if p.caseInsensitive {
		name = strings.ToLower(name)
	}
	matched, _ := filepath.Match(p.glob, name)
	return matched
}

// MatchAll returns the names that match, preserving order.
func (p *pattern) MatchAll(names ...string) []string {
	results := make([]string, 0)
	for _, name := range names {
		if p.Match(name) {
			results = append(results, name)
		}
	}
	return results
}

func (p *pattern) String() string { return p.expr }

func (p *pattern) Type() Type { return p.kind }

// detectType guesses whether expr is a glob or a regex.
func detectType(expr string) Type {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", ".*", ".+",
		"{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(expr, indicator) {
			return Regex
		}
	}
	return Glob
}

// Set matches a name against any of several patterns.
type Set struct {
	mu       sync.RWMutex
	patterns []Pattern
}

// NewSet compiles every expression with the given type and options.
func NewSet(exprs []string, kind Type, opts ...*Options) (*Set, error) {
	s := &Set{patterns: make([]Pattern, 0, len(exprs))}
	for _, expr := range exprs {
		p, err := New(kind, expr, opts...)
		if err != nil {
			return nil, err
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// Add appends an already compiled pattern.
func (s *Set) Add(p Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, p)
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// Match returns true if any pattern matches.
func (s *Set) Match(name string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Filter combines include and exclude sets. A name passes when it matches an
// include pattern (or no include patterns exist) and matches no exclude pattern.
type Filter struct {
	include *Set
	exclude *Set
}

// NewFilter compiles include and exclude expressions with auto-detected types.
func NewFilter(include, exclude []string) (*Filter, error) {
	in, err := NewSet(include, Auto)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	ex, err := NewSet(exclude, Auto)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &Filter{include: in, exclude: ex}, nil
}

// Allows reports whether name passes the filter. A nil filter allows everything.
func (f *Filter) Allows(name string) bool {
	if f == nil {
		return true
	}
	if f.include.Len() > 0 && !f.include.Match(name) {
		return false
	}
	return !f.exclude.Match(name)
}

// Empty reports whether the filter has no patterns.
func (f *Filter) Empty() bool {
	return f == nil || (f.include.Len() == 0 && f.exclude.Len() == 0)
}
