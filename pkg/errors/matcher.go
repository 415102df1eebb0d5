package errors

import "strings"

// PatternMatcher assigns an error category based on message patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// matchRule pairs one category with the substrings that identify it.
type matchRule struct {
	category ErrorCategory
	patterns []string
}

// NewPatternMatcher creates a PatternMatcher with the built-in rules.
// Rules are checked in order, so a message matching several categories
// always lands in the same one: permission outranks path, and mount
// outranks the generic copy bucket.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		rules: []matchRule{
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"operation not permitted",
			}},
			{CategoryDiskSpace, []string{
				"no space left on device",
				"disk full",
				"quota exceeded",
			}},
			{CategoryMount, []string{
				"host is down",
				"stale file handle",
				"network is unreachable",
				"connection reset",
				"broken pipe",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"file not found",
				"path does not exist",
				"not a directory",
			}},
			{CategoryCopy, []string{
				"short write",
				"input/output error",
				"i/o error",
			}},
		},
	}
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	rules []matchRule
}

// Match returns the first category whose patterns appear in the message,
// or CategoryUnknown.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, rule := range m.rules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}
