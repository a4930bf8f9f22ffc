package views_test

import (
	"testing"

	"ata/internal/domain"
	"ata/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMods() []domain.ModRecord {
	return []domain.ModRecord{
		*domain.NewModRecord("2B HD", domain.Textures, []string{"/games/nier/SK_Res/inject/textures/a.dss"}),
		{Name: "Bunny", Category: domain.PlayerModels, Files: []string{"/games/nier/data/pl/pl.dtt"}, Enabled: false},
	}
}

func TestInstalled_InitialState(t *testing.T) {
	model := views.NewInstalled("/games/nier", nil)

	assert.Equal(t, 0, model.Selected())
	assert.Nil(t, model.SelectedMod())
	assert.Contains(t, model.View(), "No mods installed")
}

func TestInstalled_WithMods(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())

	assert.Equal(t, 2, model.ModCount())
	view := model.View()
	assert.Contains(t, view, "2B HD")
	assert.Contains(t, view, "Bunny")
	assert.Contains(t, view, "[✓]")
	assert.Contains(t, view, "[ ]")
	// Files of the selected mod are listed
	assert.Contains(t, view, "a.dss")
}

func TestInstalled_Navigate(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())

	newModel, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = newModel.(views.Installed)
	assert.Equal(t, 1, model.Selected())

	newModel, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = newModel.(views.Installed)
	assert.Equal(t, 0, model.Selected(), "wraps to the top")

	newModel, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = newModel.(views.Installed)
	assert.Equal(t, 1, model.Selected(), "wraps to the bottom")

	newModel, _ = model.Update(tea.KeyMsg{Type: tea.KeyHome})
	model = newModel.(views.Installed)
	assert.Equal(t, 0, model.Selected())
}

func TestInstalled_Toggle(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)

	msg, ok := cmd().(views.ToggleModMsg)
	require.True(t, ok)
	assert.Equal(t, "2B HD", msg.Mod.Name)
}

func TestInstalled_UninstallNeedsConfirmation(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())

	newModel, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	model = newModel.(views.Installed)
	assert.Nil(t, cmd)
	assert.True(t, model.Confirming())
	assert.Contains(t, model.View(), "Uninstall 2B HD?")

	newModel, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	model = newModel.(views.Installed)
	require.NotNil(t, cmd)
	assert.False(t, model.Confirming())

	msg, ok := cmd().(views.UninstallModMsg)
	require.True(t, ok)
	assert.Equal(t, "2B HD", msg.Mod.Name)
}

func TestInstalled_UninstallDeclined(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())

	newModel, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	newModel, cmd := newModel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.Nil(t, cmd)
	assert.False(t, newModel.(views.Installed).Confirming())
}

func TestInstalled_EscGoesBack(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok := cmd().(views.CancelMsg)
	assert.True(t, ok)
}

func TestInstalled_SetModsClampsCursor(t *testing.T) {
	model := views.NewInstalled("/games/nier", testMods())
	newModel, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnd})
	model = newModel.(views.Installed)
	require.Equal(t, 1, model.Selected())

	model.SetMods(testMods()[:1])
	assert.Equal(t, 0, model.Selected())

	model.SetMods(nil)
	assert.Equal(t, 0, model.Selected())
	assert.Nil(t, model.SelectedMod())
}
