package shared

import "os"

// Terminal capability flags, resolved once at startup. NO_COLOR is the
// informal cross-tool convention; TERM=dumb terminals get plain ASCII.
//
//nolint:gochecknoglobals // Capabilities are process-wide state
var (
	colorsDisabled  = os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
	unicodeDisabled = os.Getenv("TERM") == "dumb"
)

// GetColorsDisabled reports whether styled output is suppressed.
func GetColorsDisabled() bool {
	return colorsDisabled
}

// SetColorsDisabledForTesting overrides color detection. Tests that call
// this must not run in parallel with other rendering tests.
func SetColorsDisabledForTesting(disabled bool) {
	colorsDisabled = disabled
}

// GetUnicodeDisabled reports whether symbol output falls back to ASCII.
func GetUnicodeDisabled() bool {
	return unicodeDisabled
}

// SetUnicodeDisabledForTesting overrides unicode detection. Same parallelism
// caveat as SetColorsDisabledForTesting.
func SetUnicodeDisabledForTesting(disabled bool) {
	unicodeDisabled = disabled
}

// SuccessSymbol returns a check mark with ASCII fallback.
func SuccessSymbol() string {
	if unicodeDisabled {
		return "[x]"
	}

	return "✓"
}

// ErrorSymbol returns a cross mark with ASCII fallback.
func ErrorSymbol() string {
	if unicodeDisabled {
		return "[!]"
	}

	return "✗"
}

// ActiveSymbol returns a circled dot symbol with ASCII fallback.
func ActiveSymbol() string {
	if unicodeDisabled {
		return "[*]"
	}

	return "◉"
}

// PendingSymbol returns a hollow dot symbol with ASCII fallback.
func PendingSymbol() string {
	if unicodeDisabled {
		return "[ ]"
	}

	return "○"
}
