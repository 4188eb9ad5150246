// ABOUTME: Interactive TUI wizard for configuring a postboard install.
// ABOUTME: 3-step bubbletea model collecting data file, web address, and bot transport.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/postboard/internal/config"
)

// Step represents the current wizard step.
type Step int

const (
	StepDataFile Step = iota
	StepWebAddr
	StepTransport
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn checks the entered settings before they are saved.
type ValidateFn func(ctx context.Context, dataFile, webAddr, transport string) error

// cancelHolder shares a cancel function across bubbletea model copies.
// It must stay a pointer field on SetupModel so that value-receiver methods
// can store the cancel func and have it visible to every copy.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [3]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
func NewSetupModel(dataFile, webAddr, transport string) SetupModel {
	fileInput := textinput.New()
	fileInput.Placeholder = config.DefaultDataFile
	fileInput.Focus()
	fileInput.Width = 50
	if dataFile != "" {
		fileInput.SetValue(dataFile)
	}

	addrInput := textinput.New()
	addrInput.Placeholder = config.DefaultWebAddr
	addrInput.Width = 50
	if webAddr != "" {
		addrInput.SetValue(webAddr)
	}

	transportInput := textinput.New()
	transportInput.Placeholder = transportAuto
	transportInput.Width = 50
	if transport != "" {
		transportInput.SetValue(transport)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepDataFile,
		inputs:     [3]textinput.Model{fileInput, addrInput, transportInput},
		spinner:    s,
		validateFn: ValidateSetup(config.DefaultBackend),
		cancelCtx:  &cancelHolder{},
	}
}

// WithValidator replaces the function run before saving.
func (m SetupModel) WithValidator(fn ValidateFn) SetupModel {
	m.validateFn = fn
	return m
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepDataFile, StepWebAddr, StepTransport:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)

		// Empty inputs take the placeholder default
		val := strings.TrimSpace(m.inputs[idx].Value())
		if val == "" {
			val = m.inputs[idx].Placeholder
		}
		if m.step == StepTransport {
			val = strings.ToLower(val)
			if val == transportAuto {
				val = ""
			} else if !isTransport(val) {
				m.inputs[idx].SetValue(val)
				return m, nil
			}
		}
		m.inputs[idx].SetValue(val)
		m.inputs[idx].Blur()

		switch m.step {
		case StepDataFile:
			m.step = StepWebAddr
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepWebAddr:
			m.step = StepTransport
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepTransport:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	dataFile := m.inputs[0].Value()
	webAddr := m.inputs[1].Value()
	transport := m.inputs[2].Value()
	fn := m.validateFn
	return func() tea.Msg {
		return validationResultMsg{err: fn(ctx, dataFile, webAddr, transport)}
	}
}

// transportAuto is typed to leave the transport unset, so the bot picks
// Discord when a token is present and the webhook listener otherwise.
const transportAuto = "auto"

func isTransport(name string) bool {
	switch name {
	case config.TransportDiscord, config.TransportWebhook, config.TransportConsole:
		return true
	}
	return false
}

func displayTransport(name string) string {
	if name == "" {
		return transportAuto
	}
	return name
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   POSTBOARD"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Configure where posts live and how the bot listens.\n\n")

	switch m.step {
	case StepDataFile:
		b.WriteString(stepStyle.Render("Step 1 of 3: Data file"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(press Enter for default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepWebAddr:
		b.WriteString(fmt.Sprintf("  Data file: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: Web address"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(host:port, press Enter for default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepTransport:
		b.WriteString(fmt.Sprintf("  Data file: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Web address: %s\n\n", m.inputs[1].Value()))
		b.WriteString(stepStyle.Render("Step 3 of 3: Bot transport"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(discord, webhook, console or auto)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  Data file: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Web address: %s\n", m.inputs[1].Value()))
		b.WriteString(fmt.Sprintf("  Bot transport: %s\n\n", displayTransport(m.inputs[2].Value())))
		b.WriteString(m.spinner.View())
		b.WriteString(" Checking settings...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Ready!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() (dataFile, webAddr, transport string) {
	return m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value()
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
