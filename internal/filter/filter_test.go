//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package filter_test

import (
	"testing"

	"github.com/joe/stage-builds/internal/filter"
)

//nolint:funlen // Test function with comprehensive table-driven test cases
func TestParseIncludeExclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		include     string
		exclude     string
		input       string
		shouldMatch bool
		description string
	}{
		// Empty expression tests
		{
			name:        "empty include and exclude accepts everything",
			include:     "",
			exclude:     "",
			input:       "v2024-01-15",
			shouldMatch: true,
			description: "No filter configured means every version is visible",
		},
		{
			name:        "whitespace-only include accepts everything",
			include:     "   ",
			exclude:     "",
			input:       "anything",
			shouldMatch: true,
			description: "Blank expressions behave like absent ones",
		},

		// Prefix factor tests
		{
			name:        "prefix factor matches",
			include:     "^v2",
			exclude:     "",
			input:       "v2024-01-15",
			shouldMatch: true,
			description: "^v2 accepts names starting with v2",
		},
		{
			name:        "prefix factor rejects non-prefix",
			include:     "^v2",
			exclude:     "",
			input:       "build-v2",
			shouldMatch: false,
			description: "^v2 rejects names merely containing v2",
		},

		// Suffix factor tests
		{
			name:        "suffix factor matches",
			include:     "beta$",
			exclude:     "",
			input:       "v3-beta",
			shouldMatch: true,
			description: "beta$ accepts names ending with beta",
		},
		{
			name:        "suffix factor rejects non-suffix",
			include:     "beta$",
			exclude:     "",
			input:       "beta-v3",
			shouldMatch: false,
			description: "beta$ rejects names merely starting with beta",
		},

		// Substring factor tests
		{
			name:        "bare factor matches substring",
			include:     "release",
			exclude:     "",
			input:       "v5-release-final",
			shouldMatch: true,
			description: "A bare factor is a contains test",
		},

		// Case-insensitivity tests
		{
			name:        "matching ignores case in the name",
			include:     "^v2",
			exclude:     "",
			input:       "V2024",
			shouldMatch: true,
			description: "Uppercase names match lowercase patterns",
		},
		{
			name:        "matching ignores case in the pattern",
			include:     "^V2",
			exclude:     "",
			input:       "v2024",
			shouldMatch: true,
			description: "Uppercase patterns match lowercase names",
		},

		// Factors within a term are ANDed
		{
			name:        "all factors of a term must match",
			include:     "^v2 beta",
			exclude:     "",
			input:       "v2-beta",
			shouldMatch: true,
			description: "Both the prefix and the substring hold",
		},
		{
			name:        "one failing factor rejects the term",
			include:     "^v2 beta",
			exclude:     "",
			input:       "v2-final",
			shouldMatch: false,
			description: "The substring factor fails",
		},

		// Terms are ORed
		{
			name:        "either term may match",
			include:     "^v2;^v3",
			exclude:     "",
			input:       "v3-build",
			shouldMatch: true,
			description: "Semicolons separate alternatives",
		},
		{
			name:        "no term matching rejects",
			include:     "^v2;^v3",
			exclude:     "",
			input:       "v4-build",
			shouldMatch: false,
			description: "Neither alternative holds",
		},
		{
			name:        "empty terms are ignored",
			include:     ";;^v2;",
			exclude:     "",
			input:       "v2",
			shouldMatch: true,
			description: "Stray semicolons contribute nothing",
		},

		// Exclusion tests
		{
			name:        "exclude removes matching names",
			include:     "",
			exclude:     "beta",
			input:       "v2-beta",
			shouldMatch: false,
			description: "Names matching the exclusion are rejected",
		},
		{
			name:        "exclude passes non-matching names",
			include:     "",
			exclude:     "beta",
			input:       "v2-final",
			shouldMatch: true,
			description: "Names missing the exclusion survive",
		},
		{
			name:        "include and exclude combine",
			include:     "^v2",
			exclude:     "beta$",
			input:       "v2-beta",
			shouldMatch: false,
			description: "Included names can still be excluded",
		},
		{
			name:        "include without exclusion match passes",
			include:     "^v2",
			exclude:     "beta$",
			input:       "v2-final",
			shouldMatch: true,
			description: "Include holds and exclude does not",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			expr := filter.ParseIncludeExclude(tt.include, tt.exclude)

			got := expr.Match(tt.input)
			if got != tt.shouldMatch {
				t.Errorf("Match(%q) with include=%q exclude=%q = %v, want %v (%s)",
					tt.input, tt.include, tt.exclude, got, tt.shouldMatch, tt.description)
			}
		})
	}
}

func TestExprConstructors(t *testing.T) {
	t.Parallel()

	if !filter.Const(true).Match("anything") {
		t.Error("Const(true) should match")
	}

	if filter.Const(false).Match("anything") {
		t.Error("Const(false) should not match")
	}

	if filter.Not(filter.Contains("x")).Match("box") {
		t.Error("Not(Contains(x)) should reject names containing x")
	}

	and := filter.And(filter.StartsWith("v"), filter.EndsWith("beta"))
	if !and.Match("v2-BETA") {
		t.Error("And should match when both sides hold, ignoring case")
	}

	or := filter.Or(filter.StartsWith("v2"), filter.StartsWith("v3"))
	if !or.Match("v3-build") || or.Match("v4-build") {
		t.Error("Or should match when either side holds")
	}
}

func TestZeroExprMatchesNothing(t *testing.T) {
	t.Parallel()

	var zero filter.Expr

	// The zero value is Const(false): everything is rejected.
	if zero.Match("anything") {
		t.Error("zero Expr should not match")
	}
}
