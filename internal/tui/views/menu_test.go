package views_test

import (
	"testing"

	"ata/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu_ListsActions(t *testing.T) {
	view := views.NewMenu("/games/nier").View()

	for _, label := range []string{"Install a mod", "Uninstall a mod", "List installed mods", "Quit"} {
		assert.Contains(t, view, label)
	}
	assert.Contains(t, view, "/games/nier")
}

func TestMenu_NavigateAndSelect(t *testing.T) {
	menu := views.NewMenu("/games/nier")
	assert.Equal(t, views.MenuInstall, menu.Selected())

	newModel, _ := menu.Update(tea.KeyMsg{Type: tea.KeyUp})
	menu = newModel.(views.Menu)
	assert.Equal(t, views.MenuQuit, menu.Selected(), "wraps to the bottom")

	newModel, _ = menu.Update(tea.KeyMsg{Type: tea.KeyDown})
	newModel, _ = newModel.Update(tea.KeyMsg{Type: tea.KeyDown})
	menu = newModel.(views.Menu)
	assert.Equal(t, views.MenuUninstall, menu.Selected())

	_, cmd := menu.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, views.MenuSelectMsg{Item: views.MenuUninstall}, cmd())
}

func TestMenu_NumberShortcut(t *testing.T) {
	menu := views.NewMenu("/games/nier")

	newModel, cmd := menu.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	require.NotNil(t, cmd)
	assert.Equal(t, views.MenuList, newModel.(views.Menu).Selected())
	assert.Equal(t, views.MenuSelectMsg{Item: views.MenuList}, cmd())
}
