// Package views provides TUI view components for the Nexus client.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexus-ai/nexus/internal/chat"
	"github.com/nexus-ai/nexus/internal/tui"
)

// ChatModel is the view model for the chat widget screen.
type ChatModel struct {
	manager  *chat.Manager
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	inactive bool
	notice   string
	width    int
	height   int
}

// NewChatModel creates a ChatModel backed by the given session manager.
func NewChatModel(manager *chat.Manager, width, height int) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 5000
	ta.SetWidth(width - 8)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	// Shift typing: Enter submits, Ctrl+J inserts a newline.
	keyMap := ta.KeyMap
	keyMap.InsertNewline = key.NewBinding(
		key.WithKeys("ctrl+j"),
		key.WithHelp("ctrl+j", "new line"),
	)
	ta.KeyMap = keyMap

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#38B6FF"))

	vpHeight := height - 14
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}

	vp := viewport.New(vpWidth, vpHeight)
	vp.SetContent(formatTranscript(manager.Messages()))

	return ChatModel{
		manager:  manager,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the chat view.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		keyStr := msg.String()

		// The buy-tokens prompt swallows input until resolved.
		if m.manager.ShowBuy() {
			switch keyStr {
			case tui.KeyEnter, "y":
				return m, func() tea.Msg { return tui.BuyTokensMsg{} }
			case tui.KeyEsc, "n":
				m.manager.DismissBuy()
			}
			return m, nil
		}

		switch keyStr {
		case tui.KeyEnter:
			content := strings.TrimSpace(m.textarea.Value())
			if content == "" || m.manager.Sending() {
				return m, nil
			}
			m.textarea.Reset()
			m.inactive = false
			return m, func() tea.Msg { return tui.SendChatMsg{Content: content} }

		case "ctrl+l":
			return m, func() tea.Msg { return tui.ClearMemoryMsg{} }
		}

	case tui.ChatDoneMsg, tui.PurchaseDoneMsg, tui.BalanceRefreshedMsg, tui.ClearMemoryMsg:
		m.refresh()
		return m, nil

	case tui.InactivityTickMsg:
		m.inactive = m.manager.Inactive(msg.Now)
		return m, nil

	case spinner.TickMsg:
		if m.manager.Sending() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 14
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 8
		if vpWidth < 20 {
			vpWidth = 20
		}

		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(vpWidth)

		m.viewport.SetContent(formatTranscript(m.manager.Messages()))
		return m, nil
	}

	if !m.manager.Sending() {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refresh re-reads manager state into the viewport.
func (m *ChatModel) refresh() {
	if n := m.manager.Notice(); n != "" {
		m.notice = n
	}
	m.viewport.SetContent(formatTranscript(m.manager.Messages()))
	m.viewport.GotoBottom()
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render("Nexus AI Chat")
	badge := tui.BadgeStyle.Render("\U0001FA99 " + m.manager.TokenLabel())
	b.WriteString(header + "  " + badge)
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(tui.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	if m.inactive && !m.manager.Sending() {
		b.WriteString(tui.WarningStyle.Render("Still there? Your chatbot is waiting to help! \U0001F60A"))
		b.WriteString("\n\n")
	}

	if m.manager.ShowBuy() {
		b.WriteString(tui.ErrorStyle.Render("Out of tokens"))
		b.WriteString("\n")
		b.WriteString("You need more tokens to keep chatting.\n")
		b.WriteString(tui.DimStyle.Render("Enter: Buy 100 tokens (Test) · Esc: Cancel"))
	} else if m.manager.Sending() {
		b.WriteString(fmt.Sprintf("%s Typing...", m.spinner.View()))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render(m.textarea.View()))
	} else {
		b.WriteString(m.textarea.View())
	}

	b.WriteString("\n\n")

	footer := tui.DimStyle.Render("Enter: Send · Ctrl+L: Clear memory · Tab: Dashboard · Ctrl+C: Quit")
	b.WriteString(footer)

	boxed := tui.BoxStyle.
		Width(m.width - 4).
		Render(b.String())

	return boxed
}

// formatTranscript formats the transcript for display in the viewport.
func formatTranscript(messages []chat.Message) string {
	if len(messages) == 0 {
		return tui.DimStyle.Render("No messages yet. Start the conversation!")
	}

	var b strings.Builder

	userStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#38B6FF")).
		Bold(true)

	botStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1DD1A1")).
		Bold(true)

	for i, msg := range messages {
		var prefix string
		var style lipgloss.Style

		switch msg.Sender {
		case chat.SenderUser:
			prefix = "You: "
			style = userStyle
		case chat.SenderBot:
			prefix = "Bot: "
			style = botStyle
		default:
			prefix = msg.Sender + ": "
			style = tui.DimStyle
		}

		b.WriteString(style.Render(prefix))
		b.WriteString(msg.Text)

		for _, line := range decorations(msg) {
			b.WriteString("\n  ")
			b.WriteString(line)
		}

		if i < len(messages)-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// decorations renders the optional message attachments as extra lines.
func decorations(msg chat.Message) []string {
	var lines []string

	if msg.Visual != "" {
		if chat.IsVideo(msg.Visual) {
			lines = append(lines, tui.DimStyle.Render("[video] ")+msg.Visual)
		} else {
			lines = append(lines, tui.DimStyle.Render("[image] ")+msg.Visual)
		}
	}

	if msg.ShowContact {
		if msg.ContactWhatsapp != "" {
			lines = append(lines, tui.SuccessStyle.Render("WhatsApp: ")+"https://wa.me/"+digitsOnly(msg.ContactWhatsapp))
		}
		if msg.ContactPhone != "" {
			lines = append(lines, tui.SuccessStyle.Render("Call: ")+"tel:"+msg.ContactPhone)
		}
	}

	if msg.SocialProof {
		lines = append(lines, tui.WarningStyle.Render("⭐ Social Proof: This product is loved by many!"))
	}

	return lines
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
