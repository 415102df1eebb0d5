package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joe/stage-builds/internal/stage"
	"github.com/joe/stage-builds/internal/tui/shared"
	"github.com/joe/stage-builds/pkg/errors"
)

type counterRow struct {
	label string
	files int64
	bytes int64
}

// counterRows lays out a snapshot in display order. Both the interactive
// table and the plain sink render from these rows.
func counterRows(progress stage.Progress) []counterRow {
	return []counterRow{
		{label: "Found", files: progress.FilesFound, bytes: progress.BytesFound},
		{label: "Copied (remote)", files: progress.FilesCopiedRemote, bytes: progress.BytesCopiedRemote},
		{label: "Copied (cached)", files: progress.FilesCopiedCached, bytes: progress.BytesCopiedCached},
		{label: "Reused (local)", files: progress.FilesReusedLocal, bytes: progress.BytesReusedLocal},
		{label: "Completed", files: progress.FilesCompleted(), bytes: progress.BytesCompleted()},
		{label: "Remaining", files: progress.FilesRemaining(), bytes: progress.BytesRemaining()},
	}
}

// estimateParts builds the percent/elapsed/ETA fragments shared by the
// staging screen and the plain sink.
func estimateParts(progress stage.Progress) []string {
	return []string{
		shared.FormatPercent(progress.BlendedPercent) + " done",
		"elapsed " + shared.FormatDuration(progress.Elapsed),
		"time left " + shared.FormatDuration(progress.TimeLeft),
		"ETA " + shared.FormatClock(progress.ETA),
	}
}

func spinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(shared.HighlightColor())
}

func (m Model) stagingView() string {
	var builder strings.Builder

	builder.WriteString(shared.RenderTitle("Staging " + m.info.SourceName))
	builder.WriteString("\n")

	fmt.Fprintf(&builder, "%s %s\n", shared.RenderLabel("Into:"), m.info.DestPath)

	if m.info.CacheName != "" {
		fmt.Fprintf(&builder, "%s %s\n", shared.RenderLabel("Cache:"), m.info.CacheName)
	} else {
		fmt.Fprintf(&builder, "%s %s\n", shared.RenderLabel("Cache:"), shared.RenderDim("none"))
	}

	fmt.Fprintf(&builder, "%s %d\n\n", shared.RenderLabel("Workers:"), m.info.Workers)

	if m.progress.EnumerationDone {
		builder.WriteString(shared.RenderSuccess(shared.SuccessSymbol() + " depot scan complete"))
	} else {
		builder.WriteString(m.spin.View() + " scanning the depot")
	}

	builder.WriteString("\n\n")
	builder.WriteString(m.renderCounterTable())
	builder.WriteString("\n\n")
	builder.WriteString(shared.RenderProgress(m.bar, m.progress.BlendedPercent/percentScale))
	builder.WriteString("\n")
	builder.WriteString(strings.Join(estimateParts(m.progress), " • "))

	if !m.progress.EnumerationDone {
		builder.WriteString(" " + shared.RenderDim("(provisional)"))
	}

	builder.WriteString("\n")
	m.renderCurrentCopies(&builder)

	builder.WriteString("\n")
	builder.WriteString(shared.RenderSubtitle("Staging runs to completion • Ctrl+C detaches this display"))

	return shared.RenderBox(builder.String())
}

func (m Model) renderCounterTable() string {
	counters := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(shared.DimStyle()).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)

			if row == table.HeaderRow {
				return cell.Bold(true).Foreground(shared.HighlightColor())
			}

			if col > 0 {
				return cell.Align(lipgloss.Right)
			}

			return cell
		}).
		Headers("", "Files", "Bytes")

	for _, row := range counterRows(m.progress) {
		counters.Row(row.label, shared.FormatCount(row.files), shared.FormatBytes(row.bytes))
	}

	return counters.Render()
}

// renderCurrentCopies shows one line per copy lane. A lane with a file in
// flight gets the active marker; a lane that has not started yet shows as
// pending. The cache lane only exists when a cache version was chosen.
func (m Model) renderCurrentCopies(builder *strings.Builder) {
	if m.info.CacheName != "" {
		renderLane(builder, "cache:", m.progress.CurrentCachedCopy)
	}

	renderLane(builder, "depot:", m.progress.CurrentRemoteCopy)
}

func renderLane(builder *strings.Builder, label, current string) {
	if current == "" {
		fmt.Fprintf(builder, "%s\n", shared.RenderDim(shared.PendingSymbol()+" "+label+" waiting"))

		return
	}

	fmt.Fprintf(builder, "%s %s %s\n",
		spinnerStyle().Render(shared.ActiveSymbol()),
		shared.RenderDim(label),
		shared.FileItemCopyingStyle().Render(current))
}

func (m Model) summaryView() string {
	var builder strings.Builder

	if m.err != nil {
		m.renderFailureSummary(&builder)
	} else {
		m.renderSuccessSummary(&builder)
	}

	builder.WriteString("\n")
	builder.WriteString(shared.RenderSubtitle("Press Enter or q to exit"))

	return shared.RenderBox(builder.String())
}

func (m Model) renderSuccessSummary(builder *strings.Builder) {
	copied := m.progress.FilesCopiedCached + m.progress.FilesCopiedRemote

	if copied == 0 {
		builder.WriteString(shared.RenderSuccess(fmt.Sprintf("%s %s already staged, %s files reused in place",
			shared.SuccessSymbol(),
			m.info.SourceName,
			shared.FormatCount(m.progress.FilesReusedLocal))))
	} else {
		builder.WriteString(shared.RenderSuccess(fmt.Sprintf("%s Staged %s (%s files, %s) in %s",
			shared.SuccessSymbol(),
			m.info.SourceName,
			shared.FormatCount(m.progress.FilesFound),
			shared.FormatBytes(m.progress.BytesFound),
			shared.FormatDuration(m.progress.Elapsed))))
	}

	builder.WriteString("\n\n")
	builder.WriteString(shared.RenderLabel("Breakdown:"))
	builder.WriteString("\n")
	fmt.Fprintf(builder, "Copied from depot: %s files (%s)\n",
		shared.FormatCount(m.progress.FilesCopiedRemote), shared.FormatBytes(m.progress.BytesCopiedRemote))
	fmt.Fprintf(builder, "Copied from cache: %s files (%s)\n",
		shared.FormatCount(m.progress.FilesCopiedCached), shared.FormatBytes(m.progress.BytesCopiedCached))
	fmt.Fprintf(builder, "Reused in place: %s files (%s)\n",
		shared.FormatCount(m.progress.FilesReusedLocal), shared.FormatBytes(m.progress.BytesReusedLocal))
	builder.WriteString("\n")
	fmt.Fprintf(builder, "%s %s\n", shared.RenderLabel("Staged to:"), m.info.DestPath)
}

func (m Model) renderFailureSummary(builder *strings.Builder) {
	builder.WriteString(shared.RenderError(shared.ErrorSymbol() + " Staging failed"))
	builder.WriteString("\n\n")

	enriched := errors.NewEnricher().Enrich(m.err, "")

	builder.WriteString(shared.RenderLabel("Error:"))
	builder.WriteString("\n")
	fmt.Fprintf(builder, "%v\n", enriched)

	if suggestions := errors.FormatSuggestions(enriched); suggestions != "" {
		builder.WriteString(suggestions)
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(shared.RenderLabel("Before the failure:"))
	builder.WriteString("\n")
	fmt.Fprintf(builder, "Files completed: %s / %s\n",
		shared.FormatCount(m.progress.FilesCompleted()), shared.FormatCount(m.progress.FilesFound))
	fmt.Fprintf(builder, "Bytes completed: %s / %s\n",
		shared.FormatBytes(m.progress.BytesCompleted()), shared.FormatBytes(m.progress.BytesFound))
}

const percentScale = 100
