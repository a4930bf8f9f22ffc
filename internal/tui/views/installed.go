package views

import (
	"fmt"

	"ata/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToggleModMsg is sent to enable/disable a mod
type ToggleModMsg struct {
	Mod domain.ModRecord
}

// UninstallModMsg is sent to uninstall a mod once the user confirmed it
type UninstallModMsg struct {
	Mod domain.ModRecord
}

// Installed is the installed mods view
type Installed struct {
	gamePath string
	mods     []domain.ModRecord
	selected int
	confirm  bool
	width    int
	height   int
}

// NewInstalled creates a new installed mods view
func NewInstalled(gamePath string, mods []domain.ModRecord) Installed {
	return Installed{
		gamePath: gamePath,
		mods:     mods,
		width:    80,
		height:   24,
	}
}

// SetMods replaces the listed mods, keeping the cursor in range
func (m *Installed) SetMods(mods []domain.ModRecord) {
	m.mods = mods
	m.confirm = false
	if m.selected >= len(m.mods) {
		m.selected = len(m.mods) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// Selected returns the currently selected index
func (m Installed) Selected() int {
	return m.selected
}

// ModCount returns the number of installed mods
func (m Installed) ModCount() int {
	return len(m.mods)
}

// Confirming reports whether an uninstall is waiting for confirmation
func (m Installed) Confirming() bool {
	return m.confirm
}

// SelectedMod returns the currently selected mod
func (m Installed) SelectedMod() *domain.ModRecord {
	if len(m.mods) == 0 || m.selected >= len(m.mods) {
		return nil
	}
	return &m.mods[m.selected]
}

// Init implements tea.Model
func (m Installed) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Installed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Installed) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm {
		m.confirm = false
		if msg.String() == "y" {
			if mod := m.SelectedMod(); mod != nil {
				record := *mod
				return m, func() tea.Msg {
					return UninstallModMsg{Mod: record}
				}
			}
		}
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	if len(m.mods) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up":
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.mods) - 1
		}

	case "down":
		m.selected++
		if m.selected >= len(m.mods) {
			m.selected = 0
		}

	case "home":
		m.selected = 0

	case "end":
		m.selected = len(m.mods) - 1

	case " ", "space":
		record := *m.SelectedMod()
		return m, func() tea.Msg {
			return ToggleModMsg{Mod: record}
		}

	case "d", "delete":
		m.confirm = true
	}

	return m, nil
}

// View implements tea.Model
func (m Installed) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	disabledStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("241"))

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	output := titleStyle.Render("Installed Mods") + "\n"
	output += infoStyle.Render(fmt.Sprintf("Game: %s", m.gamePath)) + "\n\n"

	if len(m.mods) == 0 {
		output += itemStyle.Render("No mods installed.") + "\n\n"
		output += infoStyle.Render("Install one from the main menu or with 'ata install <archive>'") + "\n"
		return output
	}

	output += infoStyle.Render(fmt.Sprintf("%d mods:", len(m.mods))) + "\n\n"

	for i, mod := range m.mods {
		cursor := "  "
		style := itemStyle

		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		} else if !mod.Enabled {
			style = disabledStyle
		}

		status := "[✓]"
		if !mod.Enabled {
			status = "[ ]"
		}

		line := fmt.Sprintf("%s%2d. %s %s (%s)", cursor, i+1, status, mod.Name, mod.Category.Label())
		output += style.Render(line) + "\n"

		if i == m.selected {
			for _, f := range mod.Files {
				output += detailStyle.Render(mod.ActivePath(f)) + "\n"
			}
			output += "\n"
		}
	}

	if m.confirm {
		if mod := m.SelectedMod(); mod != nil {
			output += "\n" + warnStyle.Render(fmt.Sprintf("Uninstall %s? [y/N]", mod.Name)) + "\n"
		}
		return output
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("↑/↓: navigate  space: enable/disable  d: uninstall  esc: back")

	return output
}
