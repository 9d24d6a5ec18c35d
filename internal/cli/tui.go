package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/assignpack/pkg/theme"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// swatchSample is drawn in each theme's colours next to its name.
const swatchSample = "$ ./Assignment1"

// =============================================================================
// ThemeListModel - Interactive theme selection
// =============================================================================

// themeEntry is one row of the theme picker.
type themeEntry struct {
	Name  string
	Theme theme.Theme
	Err   error // set when a custom theme file fails to load
}

// ThemeListModel is the bubbletea model for interactive theme selection.
type ThemeListModel struct {
	Entries  []themeEntry
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewThemeListModel lists names, resolving each through r. The cursor starts
// on current when it is one of the names.
func NewThemeListModel(r *theme.Resolver, names []string, current string) ThemeListModel {
	m := ThemeListModel{Height: 10}
	for i, name := range names {
		t, err := r.Resolve(name)
		m.Entries = append(m.Entries, themeEntry{Name: name, Theme: t, Err: err})
		if name == current {
			m.Cursor = i
		}
	}
	m.scroll()
	return m
}

func (m ThemeListModel) Init() tea.Cmd {
	return nil
}

func (m ThemeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Entries) == 0 || m.Entries[m.Cursor].Err != nil {
				return m, nil
			}
			m.Selected = m.Entries[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *ThemeListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ThemeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Theme"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q skip"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Entries))
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := fmt.Sprintf("%-14s", e.Name)
		switch {
		case e.Err != nil:
			b.WriteString(listDimStyle.Render(cursor + name + " (invalid theme file)"))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(cursor+name) + " " + swatch(e.Theme, swatchSample))
		default:
			b.WriteString(listNormalStyle.Render(cursor+name) + " " + swatch(e.Theme, swatchSample))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))
	return b.String()
}
