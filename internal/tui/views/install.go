package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InstallRequestMsg is sent once both the archive path and the mod name
// have been entered
type InstallRequestMsg struct {
	ArchivePath string
	Name        string
}

// Install steps
const (
	StepArchive = iota
	StepName
)

// Install is the install form: archive path first, then the mod name
type Install struct {
	archiveInput textinput.Model
	nameInput    textinput.Model
	step         int
	hint         string
	busy         bool
}

// NewInstall creates a new install form with the archive field focused
func NewInstall() Install {
	archive := textinput.New()
	archive.Placeholder = "/path/to/mod.zip"
	archive.Focus()
	archive.CharLimit = 4096
	archive.Width = 60

	name := textinput.New()
	name.Placeholder = "Name for this mod"
	name.CharLimit = 100
	name.Width = 40

	return Install{
		archiveInput: archive,
		nameInput:    name,
		step:         StepArchive,
	}
}

// Step returns the field being edited
func (m Install) Step() int {
	return m.step
}

// ArchivePath returns the archive path typed so far
func (m Install) ArchivePath() string {
	return strings.TrimSpace(m.archiveInput.Value())
}

// Name returns the mod name typed so far
func (m Install) Name() string {
	return m.nameInput.Value()
}

// SetBusy marks the form as waiting for an install to finish
func (m *Install) SetBusy(busy bool) {
	m.busy = busy
}

// Busy reports whether an install is running
func (m Install) Busy() bool {
	return m.busy
}

// Init implements tea.Model
func (m Install) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Install) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInput(msg)
	}
	if m.busy {
		return m, nil
	}

	switch key.Type {
	case tea.KeyEsc:
		if m.step == StepName {
			m.step = StepArchive
			m.nameInput.Blur()
			m.archiveInput.Focus()
			return m, nil
		}
		return m, func() tea.Msg { return CancelMsg{} }

	case tea.KeyEnter:
		if m.step == StepArchive {
			if m.ArchivePath() == "" {
				m.hint = "Enter the path of a .zip, .7z or .rar archive"
				return m, nil
			}
			m.hint = ""
			m.step = StepName
			m.archiveInput.Blur()
			m.nameInput.Focus()
			return m, textinput.Blink
		}
		if strings.TrimSpace(m.nameInput.Value()) == "" {
			m.hint = "The mod needs a name"
			return m, nil
		}
		m.hint = ""
		req := InstallRequestMsg{ArchivePath: m.ArchivePath(), Name: m.Name()}
		return m, func() tea.Msg { return req }
	}

	return m.updateInput(msg)
}

func (m Install) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.step == StepArchive {
		m.archiveInput, cmd = m.archiveInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model
func (m Install) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	hintStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	output := titleStyle.Render("Install a Mod") + "\n"
	output += labelStyle.Render("Archive: ") + m.archiveInput.View() + "\n"
	if m.step == StepName {
		output += labelStyle.Render("Name:    ") + m.nameInput.View() + "\n"
	}
	if m.hint != "" {
		output += "\n" + hintStyle.Render(m.hint) + "\n"
	}
	if m.busy {
		output += "\n" + labelStyle.Render("Installing...") + "\n"
		return output
	}
	output += helpStyle.Render("enter: next  esc: back")
	return output
}
