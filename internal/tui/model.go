package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arvrtise/haus/internal/devices"
	"github.com/arvrtise/haus/internal/join"
)

// DeviceLister exposes the devices found by the bootstrapper.
type DeviceLister interface {
	Devices() []devices.Device
	Populated() (bool, error)
}

// focusTarget is the control that receives key input.
type focusTarget int

const (
	focusName focusTarget = iota
	focusButton
)

// invalidNameHint is shown under an empty name field once it has been blurred.
const invalidNameHint = "This cannot be empty."

// JoinModel is the Bubble Tea model of the join screen. Flow state lives in
// the join.Controller; the model holds only widgets and layout.
type JoinModel struct {
	Controller *join.Controller
	Devices    DeviceLister
	Input      textinput.Model
	Spinner    spinner.Model
	Keys       KeyMap
	Width      int
	Height     int

	ctx     context.Context
	focus   focusTarget
	booted  bool
	devices []devices.Device
	devErr  error
	joined  bool
}

// NewJoinModel returns a join screen driven by ctrl. lister may be nil.
// ctx bounds the bootstrap and creation commands.
func NewJoinModel(ctx context.Context, ctrl *join.Controller, lister DeviceLister) JoinModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Your name"
	ti.CharLimit = join.MaxNameLength
	ti.SetValue(ctrl.Name())
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return JoinModel{
		Controller: ctrl,
		Devices:    lister,
		Input:      ti,
		Spinner:    s,
		Keys:       DefaultKeyMap(),
		ctx:        ctx,
	}
}

// Init starts the cursor blink and the device bootstrap.
func (m JoinModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bootstrapCmd())
}

// Joined reports whether the model quit after a successful join.
func (m JoinModel) Joined() bool {
	return m.joined
}

// Update handles a message and returns the updated model.
func (m JoinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		// Every re-layout asks for the bootstrap; the controller runs it once.
		return m, m.bootstrapCmd()

	case msgBootstrapped:
		// Commands that lost the bootstrap guard return before the probe
		// finishes; only the one that ran reports the result.
		if !msg.Ran {
			return m, nil
		}
		m.booted = true
		if m.Devices != nil {
			m.devices = m.Devices.Devices()
			_, m.devErr = m.Devices.Populated()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Controller.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case msgSpaceResolved:
		out := m.Controller.Resolve(msg.Attempt, msg.Space, msg.Err)
		if out.Phase == join.PhaseSucceeded {
			m.joined = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m JoinModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.Quit) {
		return m, tea.Quit
	}

	if m.Controller.Display().IsOpen {
		if key.Matches(msg, m.Keys.Dismiss) {
			m.Controller.Dismiss()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Submit):
		return m.submit()
	case key.Matches(msg, m.Keys.Focus):
		return m.toggleFocus()
	}

	if m.focus != focusName || m.Controller.Loading() {
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	m.Controller.SetName(m.Input.Value())
	return m, cmd
}

func (m JoinModel) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusName {
		m.focus = focusButton
		m.Input.Blur()
		m.Controller.Blur()
		return m, nil
	}
	m.focus = focusName
	return m, m.Input.Focus()
}

func (m JoinModel) submit() (tea.Model, tea.Cmd) {
	a, err := m.Controller.Begin()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.Spinner.Tick, m.createCmd(a))
}

func (m JoinModel) bootstrapCmd() tea.Cmd {
	ctrl, ctx := m.Controller, m.ctx
	return func() tea.Msg {
		return msgBootstrapped{Ran: ctrl.Bootstrap(ctx)}
	}
}

func (m JoinModel) createCmd(a join.Attempt) tea.Cmd {
	ctrl, ctx := m.Controller, m.ctx
	return func() tea.Msg {
		space, err := ctrl.Create(ctx, a)
		return msgSpaceResolved{Attempt: a, Space: space, Err: err}
	}
}

// View renders the join screen, or the error modal when it is open.
func (m JoinModel) View() string {
	if d := m.Controller.Display(); d.IsOpen {
		body := ErrorModal{Display: d}.View(m.Width, m.bodyHeight())
		return lipgloss.JoinVertical(lipgloss.Left, body, m.footer(ModalFooterBindings(m.Keys)))
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("haus"))
	b.WriteString("\n")
	b.WriteString(styleSubtitle.Render("Create a space and join it"))
	b.WriteString("\n\n")

	b.WriteString(styleLabel.Render("Your name"))
	b.WriteString("\n")
	b.WriteString(m.inputView())
	b.WriteString("\n")
	if m.Controller.ShowInvalid() {
		b.WriteString(styleInvalidHint.Render(invalidNameHint))
	}
	b.WriteString("\n\n")

	b.WriteString(m.buttonView())
	b.WriteString("\n\n")
	b.WriteString(m.devicesView())

	body := centerOverlay(b.String(), m.Width, m.bodyHeight())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footer(FormFooterBindings(m.Keys)))
}

func (m JoinModel) inputView() string {
	style := styleInputBlurred
	switch {
	case m.Controller.ShowInvalid():
		style = styleInputInvalid
	case m.focus == focusName:
		style = styleInputFocused
	}
	return style.Width(join.MaxNameLength + 2).Render(m.Input.View())
}

func (m JoinModel) buttonView() string {
	if m.Controller.Loading() {
		return styleLoading.Render(m.Spinner.View() + " Creating space…")
	}
	if m.Controller.SubmitDisabled() {
		return styleButtonDisabled.Render("Join")
	}
	if m.focus == focusButton {
		return styleButtonFocused.Render("Join")
	}
	return styleButton.Render("Join")
}

func (m JoinModel) devicesView() string {
	if !m.booted {
		return styleDevicesPending.Render("requesting device access…")
	}
	cams := devices.Count(m.devices, devices.KindCamera)
	mics := devices.Count(m.devices, devices.KindMicrophone)
	if cams+mics == 0 && m.devErr != nil {
		return styleDevicesPending.Render("● " + m.devErr.Error())
	}
	line := fmt.Sprintf("● %d camera(s) · %d microphone(s)", cams, mics)
	if cams+mics == 0 {
		return styleDevicesPending.Render(line)
	}
	return styleDevicesReady.Render(line)
}

func (m JoinModel) footer(bindings []key.Binding) string {
	return Footer{Width: m.Width, Bindings: bindings}.View()
}

// bodyHeight is the screen height left above the two-line footer.
func (m JoinModel) bodyHeight() int {
	if m.Height <= 2 {
		return 0
	}
	return m.Height - 2
}
