package errors

import (
	"errors"
	"regexp"
	"strings"
)

// Enricher turns standard errors into ActionableErrors.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates an Enricher with the default matcher and generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Compiled regexes shared across all enricher instances for performance
	pathExtractionPatterns = []*regexp.Regexp{
		// Unix paths, absolute and relative
		regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
		// Windows paths with backslashes
		regexp.MustCompile(`\b\w+\s+([A-Za-z]:\\[^\s:]+):`),
		// Windows paths with forward slashes
		regexp.MustCompile(`\b\w+\s+([A-Za-z]:/[^\s:]+):`),
	}
)

// enricher is the concrete implementation of Enricher.
type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich categorizes err and attaches suggestions. An error that is already
// actionable is returned unchanged. When affectedPath is empty, a path is
// extracted from the error message if one is present.
func (e *enricher) Enrich(err error, affectedPath string) error {
	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	errMsg := err.Error()

	if affectedPath == "" {
		affectedPath = extractPath(errMsg)
	}

	category := e.matcher.Match(errMsg)
	suggestions := e.generator.Generate(category, affectedPath)

	return NewActionableError(errMsg, category, suggestions, affectedPath)
}

// extractPath pulls a file path out of standard Go error message formats
// like "open /depot/v3/a.bin: permission denied". Returns "" when no path
// is found.
func extractPath(errorMsg string) string {
	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(errorMsg); len(matches) > 1 {
			path := strings.TrimSpace(matches[1])
			if path != "" {
				return path
			}
		}
	}

	return ""
}
