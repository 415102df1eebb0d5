package shared_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/stage-builds/internal/tui/shared"
)

//nolint:paralleltest // This test modifies package-level state (unicodeDisabled variable)
func TestSymbols_Unicode(t *testing.T) {
	g := NewWithT(t) //nolint:varnamelen // Standard Gomega pattern

	original := shared.GetUnicodeDisabled()
	defer shared.SetUnicodeDisabledForTesting(original)

	shared.SetUnicodeDisabledForTesting(false)

	g.Expect(shared.SuccessSymbol()).To(Equal("✓"))
	g.Expect(shared.ErrorSymbol()).To(Equal("✗"))
	g.Expect(shared.ActiveSymbol()).To(Equal("◉"))
	g.Expect(shared.PendingSymbol()).To(Equal("○"))
}

//nolint:paralleltest // This test modifies package-level state (unicodeDisabled variable)
func TestSymbols_ASCIIFallback(t *testing.T) {
	g := NewWithT(t) //nolint:varnamelen // Standard Gomega pattern

	original := shared.GetUnicodeDisabled()
	defer shared.SetUnicodeDisabledForTesting(original)

	shared.SetUnicodeDisabledForTesting(true)

	g.Expect(shared.SuccessSymbol()).To(Equal("[x]"))
	g.Expect(shared.ErrorSymbol()).To(Equal("[!]"))
	g.Expect(shared.ActiveSymbol()).To(Equal("[*]"))
	g.Expect(shared.PendingSymbol()).To(Equal("[ ]"))
}

//nolint:paralleltest // This test modifies package-level state (colorsDisabled variable)
func TestColorsDisabled_RoundTrip(t *testing.T) {
	g := NewWithT(t) //nolint:varnamelen // Standard Gomega pattern

	original := shared.GetColorsDisabled()
	defer shared.SetColorsDisabledForTesting(original)

	shared.SetColorsDisabledForTesting(true)
	g.Expect(shared.GetColorsDisabled()).To(BeTrue())

	shared.SetColorsDisabledForTesting(false)
	g.Expect(shared.GetColorsDisabled()).To(BeFalse())
}
