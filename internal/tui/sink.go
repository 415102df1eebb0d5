package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/joe/stage-builds/internal/stage"
	"github.com/joe/stage-builds/internal/tui/shared"
)

// TableSink renders each published snapshot as a plain ASCII block, one per
// publication, with no cursor control. It implements stage.ProgressSink for
// non-TTY runs and --display plain.
type TableSink struct {
	writer io.Writer
}

// NewTableSink creates a sink writing to writer, normally stdout.
func NewTableSink(writer io.Writer) *TableSink {
	return &TableSink{writer: writer}
}

// Publish implements stage.ProgressSink.
func (s *TableSink) Publish(progress stage.Progress) error {
	var block strings.Builder

	for _, row := range counterRows(progress) {
		fmt.Fprintf(&block, "%-16s %10s files %12s\n",
			row.label, shared.FormatCount(row.files), shared.FormatBytes(row.bytes))
	}

	block.WriteString(strings.Join(estimateParts(progress), " | "))

	if !progress.EnumerationDone {
		block.WriteString(" (provisional)")
	}

	block.WriteString("\n")

	if progress.CurrentCachedCopy != "" {
		fmt.Fprintf(&block, "copying from cache: %s\n", progress.CurrentCachedCopy)
	}

	if progress.CurrentRemoteCopy != "" {
		fmt.Fprintf(&block, "copying from depot: %s\n", progress.CurrentRemoteCopy)
	}

	block.WriteString("\n")

	if _, err := io.WriteString(s.writer, block.String()); err != nil {
		return fmt.Errorf("failed to write progress table: %w", err)
	}

	return nil
}
