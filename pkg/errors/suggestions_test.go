package errors_test

import (
	"strings"
	"testing"

	"github.com/joe/stage-builds/pkg/errors"
)

func TestSuggestionGenerator_EveryCategoryHasSuggestions(t *testing.T) {
	t.Parallel()

	categories := []errors.ErrorCategory{
		errors.CategoryPermission,
		errors.CategoryDiskSpace,
		errors.CategoryMount,
		errors.CategoryPath,
		errors.CategoryCopy,
		errors.CategoryUnknown,
	}

	generator := errors.NewSuggestionGenerator()

	for _, category := range categories {
		suggestions := generator.Generate(category, "")
		if len(suggestions) == 0 {
			t.Errorf("expected suggestions for category %q, got none", category)
		}

		for i, suggestion := range suggestions {
			if suggestion == "" {
				t.Errorf("category %q: suggestion[%d] is empty", category, i)
			}
		}
	}
}

func TestSuggestionGenerator_IncludesAffectedPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		category errors.ErrorCategory
	}{
		{name: "permission suggestions mention path", category: errors.CategoryPermission},
		{name: "disk space suggestions mention path", category: errors.CategoryDiskSpace},
		{name: "mount suggestions mention path", category: errors.CategoryMount},
		{name: "path suggestions mention path", category: errors.CategoryPath},
		{name: "unknown suggestions mention path", category: errors.CategoryUnknown},
	}

	generator := errors.NewSuggestionGenerator()
	path := "/depot/v3/payload.bin"

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			suggestions := generator.Generate(testCase.category, path)

			found := false

			for _, suggestion := range suggestions {
				if strings.Contains(suggestion, path) {
					found = true

					break
				}
			}

			if !found {
				t.Errorf("expected a suggestion mentioning %q, got: %v", path, suggestions)
			}
		})
	}
}

func TestSuggestionGenerator_PermissionSuggestions(t *testing.T) {
	t.Parallel()

	generator := errors.NewSuggestionGenerator()

	suggestions := generator.Generate(errors.CategoryPermission, "/stage/v3")

	foundLsLa := false

	for _, suggestion := range suggestions {
		if strings.Contains(suggestion, "ls -la /stage/v3") {
			foundLsLa = true

			break
		}
	}

	if !foundLsLa {
		t.Errorf("expected an 'ls -la' suggestion with the path, got: %v", suggestions)
	}
}

func TestSuggestionGenerator_MountSuggestionsMentionRemount(t *testing.T) {
	t.Parallel()

	generator := errors.NewSuggestionGenerator()

	suggestions := generator.Generate(errors.CategoryMount, "")

	foundRemount := false

	for _, suggestion := range suggestions {
		if strings.Contains(strings.ToLower(suggestion), "remount") {
			foundRemount = true

			break
		}
	}

	if !foundRemount {
		t.Errorf("expected a remount suggestion, got: %v", suggestions)
	}
}

func TestSuggestionGenerator_UnrecognizedCategoryFallsBack(t *testing.T) {
	t.Parallel()

	generator := errors.NewSuggestionGenerator()

	suggestions := generator.Generate(errors.ErrorCategory("made-up"), "")
	if len(suggestions) == 0 {
		t.Error("expected fallback suggestions for unrecognized category, got none")
	}
}
