// internal/ui/chat.go
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"astrin/internal/chat"
	"astrin/internal/commands"
	"astrin/internal/export"
)

const transcriptTitle = "Astrin Chat"

// ChatSession is the part of chat.Session the view drives.
type ChatSession interface {
	State() chat.State
	Submit(text string) bool
	Close()
}

// SessionFactory opens a new conversation. notify must be called after
// every state change.
type SessionFactory func(notify func()) ChatSession

// backMsg asks the app to return to the home menu.
type backMsg struct{}

// ChatView renders one conversation with an input line. A new session is
// opened on every mount, so leaving the chat discards it.
type ChatView struct {
	newSession SessionFactory
	notify     func()
	logger     *zap.Logger
	now        func() time.Time
	exportDir  string

	session  ChatSession
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	rendered map[string]string // message id -> rendered body

	width, height int
	notice        string
	showHelp      bool
}

func NewChatView(factory SessionFactory, notify func(), logger *zap.Logger) *ChatView {
	ti := textinput.New()
	ti.Placeholder = "Ask Astrin about the cosmos... (Enter to send, /help for commands)"
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 76
	ti.PromptStyle = UserStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	if logger == nil {
		logger = zap.NewNop()
	}
	if notify == nil {
		notify = func() {}
	}

	return &ChatView{
		newSession: factory,
		notify:     notify,
		logger:     logger,
		now:        time.Now,
		exportDir:  ".",
		input:      ti,
		viewport:   vp,
		spinner:    sp,
		rendered:   make(map[string]string),
		width:      80,
		height:     24,
	}
}

func (v *ChatView) Mount() tea.Cmd {
	v.session = v.newSession(v.notify)
	v.notice = ""
	v.showHelp = false
	v.input.Reset()
	v.input.Focus()
	v.sync()
	return textinput.Blink
}

func (v *ChatView) Unmount() {
	if v.session != nil {
		v.session.Close()
	}
	v.session = nil
	v.input.Blur()
	clear(v.rendered)
}

func (v *ChatView) CapturesInput() bool { return true }

func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-3, 3)
	v.input.Width = max(width-4, 10)
	v.renderer = nil
	clear(v.rendered)
	v.sync()
}

func (v *ChatView) state() chat.State {
	if v.session == nil {
		return chat.State{}
	}
	return v.session.State()
}

func (v *ChatView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		// Stop ticking once the reply is in.
		if v.state().AwaitingResponse {
			v.spinner, cmd = v.spinner.Update(msg)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd = v.submit()
		case "pgup", "pgdown", "up", "down":
			v.viewport, cmd = v.viewport.Update(msg)
			return cmd
		default:
			v.input, cmd = v.input.Update(msg)
		}
	case tea.MouseMsg:
		v.viewport, cmd = v.viewport.Update(msg)
		return cmd
	default:
		v.input, cmd = v.input.Update(msg)
	}
	v.sync()
	return cmd
}

func (v *ChatView) submit() tea.Cmd {
	text := v.input.Value()
	// Unrecognized slash input such as "/r/space" is sent as a message.
	if c, ok := commands.Parse(text); ok {
		if _, unknown := c.(commands.Unknown); !unknown {
			v.input.Reset()
			return v.run(c)
		}
	}
	if v.session == nil {
		return nil
	}
	if v.session.Submit(text) {
		v.input.Reset()
		v.notice = ""
		return v.spinner.Tick
	}
	if strings.TrimSpace(text) != "" {
		v.notice = "Astrin is still answering. Your message is kept in the input line."
	}
	return nil
}

func (v *ChatView) run(c commands.Command) tea.Cmd {
	switch c := c.(type) {
	case commands.Help:
		v.showHelp = !v.showHelp
	case commands.Export:
		v.notice = v.export(c.Path)
	case commands.Back:
		return func() tea.Msg { return backMsg{} }
	}
	return nil
}

func (v *ChatView) export(path string) string {
	now := v.now()
	if path == "" {
		path = filepath.Join(v.exportDir, export.DefaultFilename("astrin chat", now))
	}
	messages := v.state().Messages
	if err := export.WriteFile(path, export.Transcript(transcriptTitle, messages, now)); err != nil {
		v.logger.Warn("chat export failed", zap.String("path", path), zap.Error(err))
		return "Export failed: " + err.Error()
	}
	v.logger.Info("chat exported", zap.String("path", path), zap.Int("messages", len(messages)))
	return fmt.Sprintf("Exported %d messages to %s", len(messages), path)
}

func (v *ChatView) sync() {
	v.viewport.SetContent(v.renderMessages(v.state()))
	v.viewport.GotoBottom()
}

func (v *ChatView) renderMessages(st chat.State) string {
	var sb strings.Builder

	for _, msg := range st.Messages {
		ts := "--:--"
		if t := msg.Time(); !t.IsZero() {
			ts = t.Local().Format("15:04")
		}
		sb.WriteString(SenderStyle(msg.Sender).Render(fmt.Sprintf("[%s] %s:", ts, senderName(msg.Sender))))
		sb.WriteString("\n")

		if msg.Sender == chat.SenderAssistant {
			sb.WriteString(v.markdown(msg))
		} else {
			sb.WriteString(indent(msg.Text))
		}
		sb.WriteString("\n")
	}

	if st.AwaitingResponse {
		sb.WriteString(v.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(DimStyle.Render("Astrin is thinking..."))
		sb.WriteString("\n")
	}

	return sb.String()
}

// markdown renders an assistant reply once per width. Messages never change
// after they are appended, so the id is a safe cache key.
func (v *ChatView) markdown(msg chat.Message) string {
	if out, ok := v.rendered[msg.ID]; ok {
		return out
	}
	out := indent(msg.Text)
	if r := v.markdownRenderer(); r != nil {
		if md, err := r.Render(msg.Text); err == nil {
			out = strings.TrimLeft(md, "\n")
		} else {
			v.logger.Debug("markdown render failed", zap.Error(err))
		}
	}
	v.rendered[msg.ID] = out
	return out
}

func (v *ChatView) markdownRenderer() *glamour.TermRenderer {
	if v.renderer != nil {
		return v.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(v.width-4, 20)),
	)
	if err != nil {
		v.logger.Debug("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	v.renderer = r
	return r
}

func indent(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (v *ChatView) View() string {
	parts := []string{v.viewport.View()}
	if v.showHelp {
		parts = append(parts, InactiveBox.Padding(0, 1).Render(commands.HelpText()))
	}
	notice := ""
	if v.notice != "" {
		notice = SystemStyle.Render(v.notice)
	}
	parts = append(parts, notice, v.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func senderName(sender chat.Sender) string {
	switch sender {
	case chat.SenderUser:
		return "You"
	case chat.SenderAssistant:
		return "Astrin"
	default:
		return string(sender)
	}
}
