// Package tui renders staging progress in the terminal: an interactive
// bubble tea frontend for TTY runs plus a plain-text sink for everything
// else.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/stage-builds/internal/stage"
	"github.com/joe/stage-builds/internal/tui/shared"
)

type phase int

const (
	phaseStaging phase = iota
	phaseDone
)

const barOverhead = 16

// SessionInfo carries the labels the staging screen displays.
type SessionInfo struct {
	SourceName string
	DestPath   string
	CacheName  string // empty when staging without a cache
	Workers    int
}

// Model is the staging display: a progress screen that re-renders on every
// published snapshot, then a summary screen once the session finishes.
type Model struct {
	info     SessionInfo
	bridge   *Bridge
	spin     spinner.Model
	bar      progress.Model
	progress stage.Progress
	err      error
	phase    phase
	width    int
	detached bool
}

// NewModel creates the staging display fed by bridge.
func NewModel(info SessionInfo, bridge *Bridge) Model {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = spinnerStyle()

	return Model{
		info:   info,
		bridge: bridge,
		spin:   spin,
		bar:    shared.NewProgressModel(shared.ProgressBarWidth),
	}
}

// Detached reports whether the user quit the display while the session was
// still running. The session itself runs to completion either way.
func (m Model) Detached() bool {
	return m.detached
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.bridge.ListenCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = barWidth(msg.Width)

		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseStaging {
			return m, nil
		}

		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd

	case ProgressMsg:
		m.progress = msg.Progress

		return m, m.bridge.ListenCmd()

	case DoneMsg:
		m.phase = phaseDone
		m.progress = msg.Final
		m.err = msg.Err

		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.phase == phaseDone {
		return m.summaryView()
	}

	return m.stagingView()
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.phase == phaseDone {
		switch msg.String() {
		case "enter", "q", "esc", shared.KeyCtrlC:
			return m, tea.Quit
		}

		return m, nil
	}

	// Copies are not cancellable, so quitting mid-session only detaches the
	// display.
	if msg.String() == shared.KeyCtrlC {
		m.detached = true

		return m, tea.Quit
	}

	return m, nil
}

func barWidth(windowWidth int) int {
	width := windowWidth - barOverhead

	if width > shared.MaxProgressBarWidth {
		return shared.MaxProgressBarWidth
	}

	if width < shared.ProgressBarWidth {
		return shared.ProgressBarWidth
	}

	return width
}
