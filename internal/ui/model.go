package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"plotchat/internal/chat"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusPicker
)

type pickerKind int

const (
	pickerNone pickerKind = iota
	pickerFAQ
	pickerPlot
)

type (
	hydratedMsg struct {
		err error
	}
	replyMsg struct {
		outcome chat.Outcome
		err     error
	}
)

const (
	sidebarWidth = 28
	inputHeight  = 3
	pickerHeight = 3
	helpText     = "enter send · tab focus · ctrl+n new chat · ctrl+c quit"
)

// Model es la UI de terminal del chat. Todo el estado del dominio vive en el
// Controller; el modelo solo guarda foco, cursores y componentes visuales.
type Model struct {
	ctrl   *chat.Controller
	logger *zap.Logger
	ctx    context.Context

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// dirty lo marca el store en cada mutacion; Update lo consume para
	// refrescar el viewport y bajar al final.
	dirty *atomic.Bool

	pending       int
	focus         focusArea
	sidebarCursor int
	pickerCursor  int
	status        string
	statusErr     bool
	ready         bool
	width         int
	height        int
}

// New arma el modelo y se suscribe a los cambios del store.
func New(ctx context.Context, ctrl *chat.Controller, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	dirty := &atomic.Bool{}
	dirty.Store(true)
	ctrl.Store().OnChange(func() { dirty.Store(true) })

	return Model{
		ctrl:     ctrl,
		logger:   logger,
		ctx:      ctx,
		textarea: ta,
		spinner:  sp,
		dirty:    dirty,
		status:   "loading chats...",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.hydrateCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case hydratedMsg:
		if msg.err != nil {
			m.setError("offline: could not load chats")
		} else {
			m.setStatus("")
		}

	case replyMsg:
		m.pending--
		if msg.err != nil {
			m.logger.Debug("reply failed", zap.Error(msg.err))
			m.setError(errorText(msg.err))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return nil, true
	case "ctrl+n":
		m.ctrl.NewChat()
		m.pickerCursor = 0
		m.setFocus(focusInput)
		return nil, false
	case "tab":
		m.cycleFocus()
		return nil, false
	case "esc":
		m.setFocus(focusInput)
		return nil, false
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd, false
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg), false
	case focusPicker:
		return m.handlePickerKey(msg), false
	default:
		return m.handleInputKey(msg), false
	}
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return m.submit()
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.ctrl.SetDraft(m.textarea.Value())
	return cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	sessions := m.ctrl.Store().List()
	switch msg.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case "down", "j":
		if m.sidebarCursor < len(sessions)-1 {
			m.sidebarCursor++
		}
	case "enter":
		if m.sidebarCursor < len(sessions) {
			m.ctrl.Select(sessions[m.sidebarCursor].ID)
			m.pickerCursor = 0
			m.setFocus(focusInput)
		}
	}
	return nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	kind, options := m.pickerOptions()
	if kind == pickerNone {
		m.setFocus(focusInput)
		return nil
	}
	switch msg.String() {
	case "left", "h", "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case "right", "l", "down", "j":
		if m.pickerCursor < len(options)-1 {
			m.pickerCursor++
		}
	case "enter":
		return m.pick(kind, options[m.pickerCursor])
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	m.ctrl.SetDraft(m.textarea.Value())
	out, err := m.ctrl.PrepareSubmit()
	if err != nil {
		if !errors.Is(err, chat.ErrEmptyInput) {
			m.setError(errorText(err))
		}
		return nil
	}
	m.textarea.Reset()
	return m.deliver(out)
}

func (m *Model) pick(kind pickerKind, label string) tea.Cmd {
	m.ctrl.SetDraft(m.textarea.Value())

	var (
		out chat.Outgoing
		err error
	)
	switch kind {
	case pickerFAQ:
		out, err = m.ctrl.PrepareFAQ(label)
		if err == nil {
			m.textarea.Reset()
		}
	case pickerPlot:
		out, err = m.ctrl.PreparePlot(label)
	}
	if err != nil {
		m.setError(errorText(err))
		return nil
	}
	m.pickerCursor = 0
	m.setFocus(focusInput)
	return m.deliver(out)
}

func (m *Model) deliver(out chat.Outgoing) tea.Cmd {
	m.pending++
	m.setStatus("")
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		outcome, err := ctrl.Deliver(ctx, out)
		return replyMsg{outcome: outcome, err: err}
	}
}

func (m Model) hydrateCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return hydratedMsg{err: ctrl.Hydrate(ctx)}
	}
}

func (m Model) pickerOptions() (pickerKind, []string) {
	if m.ctrl.FAQVisible() {
		return pickerFAQ, m.ctrl.FAQs()
	}
	if sess, ok := m.ctrl.Store().Selected(); ok && hasPlotSelector(sess) {
		return pickerPlot, chat.PlotChoices
	}
	return pickerNone, nil
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusInput:
		m.setFocus(focusSidebar)
	case focusSidebar:
		if kind, _ := m.pickerOptions(); kind != pickerNone {
			m.setFocus(focusPicker)
			return
		}
		m.setFocus(focusInput)
	default:
		m.setFocus(focusInput)
	}
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.textarea.Focus()
		return
	}
	m.textarea.Blur()
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	mainWidth := max(width-sidebarWidth-3, 20)
	// header + picker + status + input con borde
	vpHeight := max(height-1-pickerHeight-1-(inputHeight+2), 3)

	if !m.ready {
		m.viewport = viewport.New(mainWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(mainWidth - 2)
	m.dirty.Store(true)
}

// sync refresca el viewport si el store cambio y mantiene los cursores en rango.
func (m *Model) sync() {
	n := len(m.ctrl.Store().List())
	if m.sidebarCursor >= n {
		m.sidebarCursor = max(n-1, 0)
	}
	_, options := m.pickerOptions()
	if m.pickerCursor >= len(options) {
		m.pickerCursor = 0
	}
	if m.focus == focusPicker && len(options) == 0 {
		m.setFocus(focusInput)
	}

	if !m.ready || !m.dirty.Swap(false) {
		return
	}
	m.viewport.SetContent(m.content())
	m.viewport.GotoBottom()
}

func (m Model) content() string {
	sess, ok := m.ctrl.Store().Selected()
	if !ok {
		return dimStyle.Render(welcomeText)
	}
	return renderTranscript(sess, m.viewport.Width-2)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.pickerView(),
		m.statusView(),
		m.inputView(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), main)
}

func (m Model) headerView() string {
	title := "plotchat"
	if sess, ok := m.ctrl.Store().Selected(); ok {
		title = sess.Title
	}
	return headerStyle.Render(truncate(title, m.viewport.Width))
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Chats"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("+ new chat  ctrl+n"))
	b.WriteString("\n\n")

	selected, hasSel := m.ctrl.Store().SelectedID()
	for i, sess := range m.ctrl.Store().List() {
		line := truncate(sess.Title, sidebarWidth-4)
		prefix := "  "
		if hasSel && sess.ID == selected {
			prefix = "▸ "
			line = selectedStyle.Render(line)
		}
		if m.focus == focusSidebar && i == m.sidebarCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}

	style := sidebarStyle
	if m.focus == focusSidebar {
		style = sidebarFocusedStyle
	}
	return style.Width(sidebarWidth).Height(max(m.height-2, 1)).Render(b.String())
}

func (m Model) pickerView() string {
	kind, options := m.pickerOptions()
	box := lipgloss.NewStyle().Height(pickerHeight)
	if kind == pickerNone {
		return box.Render("")
	}
	active := -1
	if m.focus == focusPicker {
		active = m.pickerCursor
	}
	return box.Render(renderChips(options, active))
}

func (m Model) statusView() string {
	switch {
	case m.pending > 0:
		return m.spinner.View() + dimStyle.Render(" waiting for reply")
	case m.status != "" && m.statusErr:
		return errorStyle.Render(m.status)
	case m.status != "":
		return dimStyle.Render(m.status)
	default:
		return dimStyle.Render(helpText)
	}
}

func (m Model) inputView() string {
	style := inputStyle
	if m.focus == focusInput {
		style = inputFocusStyle
	}
	return style.Render(m.textarea.View())
}

func errorText(err error) string {
	var netErr *chat.NetworkError
	switch {
	case errors.As(err, &netErr):
		return fmt.Sprintf("network error: %s failed", netErr.Op)
	case errors.Is(err, chat.ErrNoSession):
		return "that chat no longer exists"
	default:
		return err.Error()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
