package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem is an entry of the main menu
type MenuItem int

const (
	MenuInstall MenuItem = iota
	MenuUninstall
	MenuList
	MenuQuit
)

var menuItems = []MenuItem{MenuInstall, MenuUninstall, MenuList, MenuQuit}

// Label returns the text shown for the item
func (i MenuItem) Label() string {
	switch i {
	case MenuInstall:
		return "Install a mod"
	case MenuUninstall:
		return "Uninstall a mod"
	case MenuList:
		return "List installed mods"
	case MenuQuit:
		return "Quit"
	default:
		return "unknown"
	}
}

// MenuSelectMsg is sent when a menu entry is chosen
type MenuSelectMsg struct {
	Item MenuItem
}

// CancelMsg is sent when a view wants to return to the main menu
type CancelMsg struct{}

// Menu is the main menu view
type Menu struct {
	gamePath string
	selected int
}

// NewMenu creates the main menu
func NewMenu(gamePath string) Menu {
	return Menu{gamePath: gamePath}
}

// Selected returns the highlighted item
func (m Menu) Selected() MenuItem {
	return menuItems[m.selected]
}

// Init implements tea.Model
func (m Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up":
		m.selected--
		if m.selected < 0 {
			m.selected = len(menuItems) - 1
		}
	case "down":
		m.selected++
		if m.selected >= len(menuItems) {
			m.selected = 0
		}
	case "home":
		m.selected = 0
	case "end":
		m.selected = len(menuItems) - 1
	case "enter":
		return m, selectItem(m.Selected())
	case "1", "2", "3", "4":
		m.selected = int(key.Runes[0] - '1')
		return m, selectItem(m.Selected())
	}
	return m, nil
}

func selectItem(item MenuItem) tea.Cmd {
	return func() tea.Msg {
		return MenuSelectMsg{Item: item}
	}
}

// View implements tea.Model
func (m Menu) View() string {
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

	output := titleStyle.Render("What would you like to do?") + "\n"
	output += infoStyle.Render(fmt.Sprintf("Game: %s", m.gamePath)) + "\n\n"

	for i, item := range menuItems {
		cursor := "  "
		style := itemStyle
		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		}
		output += style.Render(fmt.Sprintf("%s[%d] %s", cursor, i+1, item.Label())) + "\n"
	}
	return output
}
