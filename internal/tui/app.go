package tui

import (
	"context"
	"fmt"

	"ata/internal/core"
	"ata/internal/domain"
	"ata/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewInstall
	ViewInstalled
)

// Backend is the part of the service the TUI drives
type Backend interface {
	GamePath() string
	List() []domain.ModRecord
	Install(ctx context.Context, archivePath string, prompter core.NamePrompter) (*domain.ModRecord, error)
	Uninstall(ident string) (domain.ModRecord, error)
	SetEnabled(ident string, enabled bool) (domain.ModRecord, error)
}

// InstallDoneMsg is sent when an install started from the TUI finishes
type InstallDoneMsg struct {
	Record *domain.ModRecord
	Err    error
}

// ModChangedMsg is sent after a mod was enabled, disabled or uninstalled
type ModChangedMsg struct {
	Status string
	Err    error
}

// App is the main TUI application model
type App struct {
	backend     Backend
	keys        *KeyMap
	currentView ViewType
	width       int
	height      int
	status      string
	err         error

	menu      views.Menu
	install   views.Install
	installed views.Installed
}

// NewApp creates a new TUI application. A nil backend renders the menu but
// cannot perform any action.
func NewApp(backend Backend, keybindings string) App {
	gamePath := ""
	if backend != nil {
		gamePath = backend.GamePath()
	}
	return App{
		backend:     backend,
		keys:        NewKeyMap(keybindings),
		currentView: ViewMenu,
		width:       80,
		height:      24,
		menu:        views.NewMenu(gamePath),
		install:     views.NewInstall(),
		installed:   views.NewInstalled(gamePath, nil),
	}
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Status returns the last status line
func (a App) Status() string {
	return a.status
}

// Err returns the last error shown to the user
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case views.MenuSelectMsg:
		return a.handleMenu(msg.Item)

	case views.CancelMsg:
		a.currentView = ViewMenu
		return a, nil

	case views.InstallRequestMsg:
		if a.backend == nil {
			return a, nil
		}
		a.err = nil
		a.install.SetBusy(true)
		return a, a.installCmd(msg)

	case InstallDoneMsg:
		a.install.SetBusy(false)
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.status = fmt.Sprintf("Installed %s as a %s (%d files)", msg.Record.Name, msg.Record.Category.Label(), len(msg.Record.Files))
		a.install = views.NewInstall()
		a.currentView = ViewMenu
		return a, nil

	case views.ToggleModMsg:
		return a, a.toggleCmd(msg.Mod)

	case views.UninstallModMsg:
		return a, a.uninstallCmd(msg.Mod)

	case ModChangedMsg:
		a.err = msg.Err
		if msg.Err == nil {
			a.status = msg.Status
		}
		a.refreshInstalled()
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	// The install form takes free text, so letters go straight to it.
	if a.currentView == ViewInstall {
		return a.updateCurrentView(msg)
	}

	if a.keys.IsQuit(msg) && !a.installed.Confirming() {
		return a, tea.Quit
	}

	return a.updateCurrentView(a.keys.Normalize(msg))
}

func (a App) handleMenu(item views.MenuItem) (tea.Model, tea.Cmd) {
	a.err = nil
	switch item {
	case views.MenuInstall:
		a.currentView = ViewInstall
		return a, a.install.Init()
	case views.MenuUninstall, views.MenuList:
		a.refreshInstalled()
		a.currentView = ViewInstalled
		return a, nil
	case views.MenuQuit:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) refreshInstalled() {
	if a.backend == nil {
		return
	}
	a.installed.SetMods(a.backend.List())
}

func (a App) installCmd(req views.InstallRequestMsg) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		record, err := backend.Install(context.Background(), req.ArchivePath, core.StaticName(req.Name))
		return InstallDoneMsg{Record: record, Err: err}
	}
}

func (a App) toggleCmd(mod domain.ModRecord) tea.Cmd {
	if a.backend == nil {
		return nil
	}
	backend := a.backend
	return func() tea.Msg {
		record, err := backend.SetEnabled(mod.Name, !mod.Enabled)
		if err != nil {
			return ModChangedMsg{Err: err}
		}
		state := "disabled"
		if record.Enabled {
			state = "enabled"
		}
		return ModChangedMsg{Status: fmt.Sprintf("%s %s", record.Name, state)}
	}
}

func (a App) uninstallCmd(mod domain.ModRecord) tea.Cmd {
	if a.backend == nil {
		return nil
	}
	backend := a.backend
	return func() tea.Msg {
		record, err := backend.Uninstall(mod.Name)
		if err != nil {
			return ModChangedMsg{Err: err}
		}
		return ModChangedMsg{Status: fmt.Sprintf("Uninstalled %s", record.Name)}
	}
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		model tea.Model
		cmd   tea.Cmd
	)

	switch a.currentView {
	case ViewMenu:
		model, cmd = a.menu.Update(msg)
		a.menu = model.(views.Menu)
	case ViewInstall:
		model, cmd = a.install.Update(msg)
		a.install = model.(views.Install)
	case ViewInstalled:
		model, cmd = a.installed.Update(msg)
		a.installed = model.(views.Installed)
	}

	return a, cmd
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	header := titleStyle.Render("ata - NieR:Automata mod manager")

	content := a.renderCurrentView()

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		content += "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", a.err))
	} else if a.status != "" {
		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		content += "\n\n" + okStyle.Render(a.status)
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render(a.keys.NavigationHelp() + "  q: quit")
	if a.currentView == ViewInstall {
		footer = footerStyle.Render("ctrl+c: quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", header, content, footer)
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewMenu:
		return a.menu.View()
	case ViewInstall:
		return a.install.View()
	case ViewInstalled:
		return a.installed.View()
	default:
		return "Unknown view"
	}
}

// Run starts the TUI application
func Run(backend Backend, keybindings string) error {
	app := NewApp(backend, keybindings)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
