package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexus-ai/nexus/internal/tui"
)

// VerifyModel is the holding screen shown to a signed-in but unverified
// user while the server enforces email verification.
type VerifyModel struct {
	email     string
	notice    string
	errText   string
	resent    bool
	resending bool
	width     int
}

// NewVerifyModel creates a VerifyModel for the given account email.
func NewVerifyModel(email string, width int) VerifyModel {
	return VerifyModel{email: email, width: width}
}

// Init returns the initial command for the verify view.
func (m VerifyModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the verify view.
func (m VerifyModel) Update(msg tea.Msg) (VerifyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if m.resending {
				return m, nil
			}
			m.resending = true
			m.errText = ""
			return m, func() tea.Msg { return tui.ResendVerificationMsg{Email: m.email} }
		case tui.KeyEsc:
			return m, func() tea.Msg { return tui.LogoutMsg{} }
		}

	case tui.ResendResultMsg:
		m.resending = false
		if msg.Err != nil {
			m.errText = "Could not resend the verification email. Please try again."
			return m, nil
		}
		m.resent = true
		m.notice = "Verification email sent. Check your inbox."
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	return m, nil
}

// View renders the verify view.
func (m VerifyModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Verify your email"))
	b.WriteString("\n\n")
	b.WriteString("We sent a verification link to ")
	b.WriteString(tui.BadgeStyle.Render(m.email))
	b.WriteString(".\nClick it, then sign in again.\n\n")

	if m.notice != "" {
		b.WriteString(tui.SuccessStyle.Render(m.notice))
		b.WriteString("\n\n")
	}
	if m.errText != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errText))
		b.WriteString("\n\n")
	}

	switch {
	case m.resending:
		b.WriteString(tui.DimStyle.Render("Resending..."))
	case m.resent:
		b.WriteString(tui.DimStyle.Render("r: Resend again · Esc: Sign out"))
	default:
		b.WriteString(tui.DimStyle.Render("r: Resend email · Esc: Sign out"))
	}

	width := m.width - 4
	if width < 30 {
		width = 30
	}
	return tui.BoxStyle.Width(width).Render(b.String())
}
