package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/geminichat/internal/chat"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/render"
)

// copiedFor is how long the "Copied!" notice stays up
const copiedFor = 2 * time.Second

// Animation tick message
type animationTickMsg time.Time

type (
	replyMsg struct {
		reply  models.Message
		result chat.Result
	}
	clearCopiedMsg struct{}
)

// Option configures the chat model
type Option func(*Model)

// WithLogger sets the logger used for clipboard and dispatch diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithRenderOptions sets how AI answers are rendered
func WithRenderOptions(opts render.Options) Option {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// WithClipboard replaces the clipboard writer (tests, headless systems)
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// WithTitle sets the header subtitle, usually the model chain
func WithTitle(title string) Option {
	return func(m *Model) {
		m.subtitle = title
	}
}

// Model represents the TUI state
type Model struct {
	session    *chat.Session
	logger     zerolog.Logger
	renderOpts render.Options
	copy       func(string) error
	subtitle   string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading        bool
	ready          bool
	err            error
	notice         string
	copied         bool
	cancel         context.CancelFunc
	animationFrame int

	// Edit mode
	editIndex int    // -1 when not editing
	draft     string // input saved when edit mode started

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model over session
func NewChatModel(session *chat.Session, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything... (Enter to send, Alt+Enter for a new line)"
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		session:    session,
		logger:     zerolog.Nop(),
		renderOpts: render.DefaultOptions().WithStyle(render.StyleForDarkMode(render.IsDarkMode())),
		copy:       clipboard.WriteAll,
		subtitle:   strings.Join(session.Dispatcher().Models(), " → "),
		textarea:   ta,
		spinner:    s,
		editIndex:  -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// newViewport builds a viewport whose keys do not collide with typing
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Down:         key.NewBinding(key.WithKeys("ctrl+down")),
		Up:           key.NewBinding(key.WithKeys("ctrl+up")),
	}
	return vp
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = newViewport(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case replyMsg:
		m.loading = false
		m.cancel = nil
		if msg.result.Fallback {
			m.logger.Error().Err(msg.result.Err()).Msg("no model produced an answer")
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case clearCopiedMsg:
		m.copied = false

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// only key presses reach the textarea so escape sequences don't leak in
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes the chat shortcuts. handled is false for keys that
// should fall through to the textarea and viewport.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit, true

	case "esc":
		switch {
		case m.editIndex >= 0:
			m.cancelEdit()
		case m.loading && m.cancel != nil:
			// the dispatcher stops the chain and answers with the apology
			m.cancel()
			m.notice = "Request cancelled"
		default:
			return m, tea.Quit, true
		}
		return m, nil, true

	case "enter":
		if m.loading {
			return m, nil, true
		}
		next, cmd := m.submit()
		return next, cmd, true

	case "ctrl+e":
		if !m.loading {
			m.editPrevious()
		}
		return m, nil, true

	case "ctrl+y":
		next, cmd := m.copyLastReply()
		return next, cmd, true

	case "ctrl+t":
		m.toggleTheme()
		return m, nil, true

	case "end", "ctrl+b":
		m.viewport.GotoBottom()
		return m, nil, true
	}
	return m, nil, false
}

// submit handles Enter: commands first, then a chat turn
func (m Model) submit() (Model, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)
	m.err = nil
	m.notice = ""

	if input == "" {
		return m, nil
	}

	if m.editIndex < 0 {
		switch {
		case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
			return m, tea.Quit
		case input == "/new":
			if err := m.session.Reset(); err != nil {
				m.err = err
				return m, nil
			}
			m.textarea.Reset()
			m.notice = "Started a new chat"
			m.updateViewport()
			return m, nil
		case input == "/export" || strings.HasPrefix(input, "/export "):
			m.exportTo(strings.TrimSpace(strings.TrimPrefix(input, "/export")))
			return m, nil
		}
	}

	turn, err := m.session.Prepare(raw)
	if err != nil {
		if !errors.Is(err, apierrors.ErrEmptyPrompt) {
			m.err = err
		}
		return m, nil
	}

	m.textarea.Reset()
	m.editIndex = -1
	m.draft = ""
	m.loading = true
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return m, tea.Batch(
		resolveTurn(ctx, cancel, turn),
		m.spinner.Tick,
		animationTick(),
	)
}

// resolveTurn runs the dispatch off the UI goroutine
func resolveTurn(ctx context.Context, cancel context.CancelFunc, turn *chat.Turn) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		reply, result := turn.Resolve(ctx)
		return replyMsg{reply: reply, result: result}
	}
}

// editPrevious enters edit mode on the latest user message, or moves to the
// one before the message currently being edited.
func (m *Model) editPrevious() {
	target := m.session.PrevUserIndex(m.editIndex)
	if target < 0 {
		if m.editIndex < 0 {
			m.notice = "Nothing to edit yet"
		}
		return
	}

	if m.editIndex < 0 {
		m.draft = m.textarea.Value()
	}
	m.session.CancelEdit()

	text, err := m.session.BeginEdit(target)
	if err != nil {
		m.err = err
		return
	}
	m.editIndex = target
	m.notice = ""
	m.textarea.SetValue(text)
	m.updateViewport()
}

func (m *Model) cancelEdit() {
	m.session.CancelEdit()
	m.editIndex = -1
	m.textarea.SetValue(m.draft)
	m.draft = ""
	m.updateViewport()
}

// copyLastReply puts the latest AI answer on the clipboard
func (m Model) copyLastReply() (Model, tea.Cmd) {
	reply, ok := m.session.LastReply()
	if !ok {
		m.notice = "Nothing to copy yet"
		return m, nil
	}
	if err := m.copy(reply.Text); err != nil {
		m.logger.Warn().Err(err).Msg("clipboard write failed")
		m.notice = "Could not copy to clipboard"
		return m, nil
	}
	m.copied = true
	m.notice = ""
	return m, clearCopiedAfter(copiedFor)
}

func (m *Model) toggleTheme() {
	theme := render.ToggleDarkMode()
	UpdateTheme()
	m.renderOpts.Style = render.StyleForDarkMode(theme.Dark)
	m.spinner.Style = loadingStyle
	m.textarea.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	m.textarea.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	m.textarea.BlurredStyle = m.textarea.FocusedStyle
	m.updateViewport()
}

func (m *Model) exportTo(path string) {
	if path == "" {
		path = fmt.Sprintf("geminichat-%s.md", time.Now().Format("20060102-150405"))
	}
	if err := history.WriteFile(path, m.session.Messages(), history.DefaultExportOptions()); err != nil {
		m.err = err
		return
	}
	m.textarea.Reset()
	m.notice = "Exported to " + path
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// header
	headerParts := []string{
		titleStyle.Render("✦ Gemini Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.subtitle),
	}
	if m.editIndex >= 0 {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			noticeStyle.Render("✎ editing"),
		)
	}
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	)
	sections = append(sections, header)

	// messages
	var messagesContent string
	if m.session.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		label := "You"
		if m.editIndex >= 0 {
			label = "Edit message (Enter to save, Esc to cancel)"
		}
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render(label),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Welcome to Gemini Chat")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(lipgloss.Center, "", icon, "", title, "", subtitle, "")

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(gradientColors[(frame+i)%len(gradientColors)]).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Thinking... ")
	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots.String())
}

// renderStatusBar renders the notices line and the shortcut bar
func (m Model) renderStatusBar(width int) string {
	var top string
	switch {
	case m.copied:
		top = noticeStyle.Render("✓ Copied!")
	case m.notice != "":
		top = hintStyle.Render(m.notice)
	}
	if m.session.Len() > 0 && !m.viewport.AtBottom() {
		if top != "" {
			top += "  "
		}
		top += scrollHintStyle.Render("↓ more below (End)")
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^E", "Edit"},
		{"^Y", "Copy"},
		{"^T", "Theme"},
		{"Esc", "Quit"},
	}
	if m.editIndex >= 0 {
		shortcuts[0].desc = "Save"
		shortcuts[len(shortcuts)-1].desc = "Cancel"
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	bar := statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))

	return lipgloss.JoinVertical(lipgloss.Left, top, bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	opts := m.renderOpts.WithWidth(bubbleWidth - 4)

	for i, msg := range m.session.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := "⬤ " + msg.Role.Label()
			style := userBubbleStyle
			if i == m.editIndex {
				label += "  ✎"
				style = editingBubbleStyle
			}
			content.WriteString(userLabelStyle.Render(label) + "\n")
			content.WriteString(style.Width(bubbleWidth).Render(msg.Text))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ Gemini") + "\n")

			rendered, err := render.MessageWithOptions(msg.Text, opts)
			if err != nil {
				m.logger.Debug().Err(err).Msg("markdown render failed")
				rendered = msg.Text
			}
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(session *chat.Session, opts ...Option) error {
	p := tea.NewProgram(
		NewChatModel(session, opts...),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
