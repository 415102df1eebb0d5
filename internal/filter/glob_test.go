//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package filter_test

import (
	"testing"

	"github.com/joe/stage-builds/internal/filter"
)

func TestGlobFilterInvalidPattern(t *testing.T) {
	t.Parallel()

	// Test that invalid patterns don't panic but return false
	glob := filter.NewGlobFilter("[invalid")
	result := glob.ShouldInclude("test.txt")

	if result {
		t.Error("Invalid pattern should not match files")
	}
}

func TestGlobFilterShouldInclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pattern     string
		path        string
		shouldMatch bool
	}{
		{
			name:        "empty pattern matches all",
			pattern:     "",
			path:        "any/file.txt",
			shouldMatch: true,
		},
		{
			name:        "simple extension match",
			pattern:     "*.iso",
			path:        "disc.iso",
			shouldMatch: true,
		},
		{
			name:        "simple extension no match",
			pattern:     "*.iso",
			path:        "disc.img",
			shouldMatch: false,
		},
		{
			name:        "case insensitive match",
			pattern:     "*.ISO",
			path:        "disc.iso",
			shouldMatch: true,
		},
		{
			name:        "doublestar crosses directories",
			pattern:     "**/*.bin",
			path:        "payload/firmware/boot.bin",
			shouldMatch: true,
		},
		{
			name:        "single star does not cross directories",
			pattern:     "*.bin",
			path:        "payload/boot.bin",
			shouldMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			glob := filter.NewGlobFilter(tt.pattern)

			got := glob.ShouldInclude(tt.path)
			if got != tt.shouldMatch {
				t.Errorf("ShouldInclude(%q) with pattern %q = %v, want %v",
					tt.path, tt.pattern, got, tt.shouldMatch)
			}
		})
	}
}
