package shared

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
)

// NewProgressModel creates a progress bar model with the staging color
// scheme applied unless colors are disabled.
func NewProgressModel(width int) progress.Model {
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = width
	progressBar.ShowPercentage = false // Percentage is rendered separately

	if !colorsDisabled {
		progressBar.EmptyColor = dimColorCode
		progressBar.FullColor = accentColorCode
	}

	return progressBar
}

// RenderASCIIProgress renders a progress bar in plain ASCII.
// percent is between 0.0 and 1.0, width is the inner width of the bar.
// Returns a string like: "[=========>          ] 45%"
func RenderASCIIProgress(percent float64, width int) string {
	switch {
	case percent < 0:
		percent = 0
	case percent > 1:
		percent = 1
	}

	filled := int(percent * float64(width))

	var bar strings.Builder

	bar.WriteString("[")

	switch {
	case filled >= width:
		bar.WriteString(strings.Repeat("=", width))
	case filled > 0:
		bar.WriteString(strings.Repeat("=", filled-1))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", width-filled))
	default:
		bar.WriteString(strings.Repeat(" ", width))
	}

	bar.WriteString("]")

	return fmt.Sprintf("%s %d%%", bar.String(), int(percent*percentScale))
}

// RenderProgress renders percent through the styled bar, falling back to
// ASCII when colors are disabled (NO_COLOR, TERM=dumb).
func RenderProgress(model progress.Model, percent float64) string {
	if colorsDisabled {
		return RenderASCIIProgress(percent, model.Width)
	}

	return model.ViewAs(percent)
}

const percentScale = 100
