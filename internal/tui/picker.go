package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/stage-builds/internal/depot"
	"github.com/joe/stage-builds/internal/tui/shared"
)

const (
	pickerWidth  = 64
	pickerHeight = 16
)

// Selection is the outcome of the picker: which version to stage and which
// staged version, if any, to use as a local cache.
type Selection struct {
	Source depot.Version
	Cache  *depot.Version // nil when staging without a cache
}

type versionItem struct {
	version depot.Version
}

func (i versionItem) Title() string { return i.version.Name }

func (i versionItem) Description() string {
	return "created " + i.version.Created.Format("2006-01-02 15:04")
}

func (i versionItem) FilterValue() string { return i.version.Name }

type noCacheItem struct{}

func (noCacheItem) Title() string       { return "No cache" }
func (noCacheItem) Description() string { return "copy every file from the depot" }
func (noCacheItem) FilterValue() string { return "no cache" }

type pickerStep int

const (
	stepSource pickerStep = iota
	stepCache
)

// PickerModel walks the user through source and cache selection. Lists come
// in newest-first, so the default cursor position is the newest candidate.
type PickerModel struct {
	destinations []depot.Version
	list         list.Model
	step         pickerStep
	selection    Selection
	done         bool
	aborted      bool
}

// NewPickerModel creates a picker over the depot's source versions and the
// stage root's already-staged versions.
func NewPickerModel(sources, destinations []depot.Version) PickerModel {
	items := make([]list.Item, 0, len(sources))
	for _, version := range sources {
		items = append(items, versionItem{version: version})
	}

	return PickerModel{
		destinations: destinations,
		list:         newPickerList("Choose the build to stage", items),
	}
}

// Selection returns the chosen versions and whether choosing finished.
func (m PickerModel) Selection() (Selection, bool) {
	return m.selection, m.done
}

// Aborted reports whether the user backed out.
func (m PickerModel) Aborted() bool {
	return m.aborted
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-2*shared.DefaultPadding, msg.Height-2*shared.DefaultPadding)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case shared.KeyCtrlC, "esc", "q":
			m.aborted = true

			return m, tea.Quit
		case "enter":
			return m.choose()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m PickerModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	return lipgloss.NewStyle().Padding(1, shared.DefaultPadding).Render(m.list.View())
}

func (m PickerModel) choose() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepSource:
		item, ok := m.list.SelectedItem().(versionItem)
		if !ok {
			return m, nil
		}

		m.selection.Source = item.version
		m.step = stepCache
		m.list = newPickerList("Choose a cache version", m.cacheItems())

		return m, nil

	case stepCache:
		switch item := m.list.SelectedItem().(type) {
		case versionItem:
			version := item.version
			m.selection.Cache = &version
		case noCacheItem:
			m.selection.Cache = nil
		default:
			return m, nil
		}

		m.done = true

		return m, tea.Quit
	}

	return m, nil
}

// cacheItems offers every staged version except ones matching the chosen
// source tag, which the session would classify file by file instead.
func (m PickerModel) cacheItems() []list.Item {
	items := make([]list.Item, 0, len(m.destinations)+1)

	for _, version := range m.destinations {
		if version.Tag != m.selection.Source.Tag {
			items = append(items, versionItem{version: version})
		}
	}

	return append(items, noCacheItem{})
}

func newPickerList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()

	picker := list.New(items, delegate, pickerWidth, pickerHeight)
	picker.Title = title
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)

	return picker
}

// ChooseSelection runs the picker to completion. The second return is false
// when the user backed out without choosing.
func ChooseSelection(sources, destinations []depot.Version, opts ...tea.ProgramOption) (Selection, bool, error) {
	program := tea.NewProgram(NewPickerModel(sources, destinations), opts...)

	final, err := program.Run()
	if err != nil {
		return Selection{}, false, fmt.Errorf("failed to run the version picker: %w", err)
	}

	picker, ok := final.(PickerModel)
	if !ok || picker.aborted || !picker.done {
		return Selection{}, false, nil
	}

	return picker.selection, true, nil
}
