// Package errors enriches failures surfaced by a staging run with a category
// and actionable suggestions, so the operator sees "remount the depot share"
// instead of a bare errno string.
//
// Basic usage:
//
//	enricher := errors.NewEnricher()
//	if err := stageFiles(); err != nil {
//	    err = enricher.Enrich(err, "")
//	    fmt.Println(err)
//	    fmt.Println(errors.FormatSuggestions(err))
//	}
//
// When no affected path is provided, Enrich extracts one from standard Go
// error messages like "open /depot/v3/a.bin: permission denied".
package errors

import "strings"

// Exported constants.
const (
	CategoryCopy       ErrorCategory = "copy"
	CategoryDiskSpace  ErrorCategory = "disk_space"
	CategoryMount      ErrorCategory = "mount"
	CategoryPath       ErrorCategory = "path"
	CategoryPermission ErrorCategory = "permission"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ErrorCategory identifies the kind of failure, chosen by message patterns.
type ErrorCategory string

// ActionableError is an error carrying a category and recovery suggestions.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates an ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		affectedPath:  affectedPath,
	}
}

// FormatSuggestions renders an ActionableError's suggestions as a bulleted
// list for display. Returns "" when the error is nil, not actionable, or has
// no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	affectedPath  string
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}
