package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/tui"
)

// loginField indexes the focused input.
type loginField int

const (
	fieldEmail loginField = iota
	fieldPassword
)

// LoginModel is the view model for the sign-in screen.
type LoginModel struct {
	email      textinput.Model
	password   textinput.Model
	focused    loginField
	errText    string
	infoText   string
	showResend bool
	loading    bool
	width      int
	height     int
}

// NewLoginModel creates a LoginModel.
func NewLoginModel(width, height int) LoginModel {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return LoginModel{
		email:    email,
		password: password,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the login view.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter:
			if m.loading {
				return m, nil
			}
			if m.focused == fieldEmail {
				return m.focusPassword(), nil
			}
			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email == "" || password == "" {
				m.errText = "Email and password are required."
				return m, nil
			}
			m.loading = true
			m.errText = ""
			return m, func() tea.Msg {
				return tui.LoginSubmitMsg{Email: email, Password: password}
			}

		case tui.KeyTab, tui.KeyDown:
			if m.focused == fieldEmail {
				return m.focusPassword(), nil
			}
			return m.focusEmail(), nil

		case tui.KeyUp:
			return m.focusEmail(), nil

		case "ctrl+r":
			if m.showResend && strings.TrimSpace(m.email.Value()) != "" {
				return m, func() tea.Msg {
					return tui.ResendVerificationMsg{Email: strings.TrimSpace(m.email.Value())}
				}
			}
		}

	case tui.LoginResultMsg:
		m.loading = false
		if msg.Err != nil {
			m.errText = errDetail(msg.Err)
			if strings.Contains(m.errText, "not verified") {
				m.showResend = true
			}
			return m, nil
		}
		if msg.Result.RequiresVerification {
			m.errText = "Email not verified. Check your inbox..."
			m.showResend = true
			return m, nil
		}
		return m, nil

	case tui.ResendResultMsg:
		if msg.Err != nil {
			m.errText = errDetail(msg.Err)
		} else {
			m.infoText = "Verification email sent."
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == fieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m LoginModel) focusPassword() LoginModel {
	m.focused = fieldPassword
	m.email.Blur()
	m.password.Focus()
	return m
}

func (m LoginModel) focusEmail() LoginModel {
	m.focused = fieldEmail
	m.password.Blur()
	m.email.Focus()
	return m
}

// View renders the login view.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Welcome Back"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Sign in to your account"))
	b.WriteString("\n\n")

	if m.errText != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errText))
		b.WriteString("\n\n")
	}
	if m.infoText != "" {
		b.WriteString(tui.SuccessStyle.Render(m.infoText))
		b.WriteString("\n\n")
	}

	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(tui.DimStyle.Render("Signing in..."))
	} else {
		footer := "Enter: Sign in · Tab: Next field · Ctrl+C: Quit"
		if m.showResend {
			footer += " · Ctrl+R: Resend verification"
		}
		b.WriteString(tui.DimStyle.Render(footer))
	}

	return tui.BoxStyle.Width(m.width - 4).Render(b.String())
}

// errDetail extracts a display message from an error, preferring the
// server-supplied detail.
func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return api.Detail(err, "Login failed")
}
