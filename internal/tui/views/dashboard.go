package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/leads"
	"github.com/nexus-ai/nexus/internal/session"
	"github.com/nexus-ai/nexus/internal/tui"
)

// DashboardModel is the view model for the account dashboard screen.
type DashboardModel struct {
	user         *session.User
	balance      int
	transactions []api.TokenTransaction
	leadRows     []api.Lead
	fromCache    bool
	errText      string
	loading      bool
	viewport     viewport.Model
	width        int
	height       int
}

// NewDashboardModel creates a DashboardModel. Data arrives later via
// DashboardDataMsg.
func NewDashboardModel(width, height int) DashboardModel {
	vpHeight := height - 10
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}

	return DashboardModel{
		loading:  true,
		viewport: viewport.New(vpWidth, vpHeight),
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the dashboard view.
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.DashboardDataMsg:
		m.loading = false
		if msg.Err != nil {
			m.errText = msg.Err.Error()
		} else {
			m.errText = ""
		}
		m.user = msg.User
		m.balance = msg.Balance
		m.transactions = msg.Transactions
		m.leadRows = msg.Leads
		m.fromCache = msg.FromCache
		leads.SortByScore(m.leadRows)
		m.viewport.SetContent(m.content())
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 10
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 8
		if vpWidth < 20 {
			vpWidth = 20
		}
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		m.viewport.SetContent(m.content())
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the dashboard view.
func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Dashboard"))
	if m.fromCache {
		b.WriteString("  " + tui.WarningStyle.Render("(offline - showing cached data)"))
	}
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(tui.DimStyle.Render("Loading..."))
	} else {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("Tab: Chat · ↑/↓: Scroll · Ctrl+C: Quit"))

	return tui.BoxStyle.Width(m.width - 4).Render(b.String())
}

// content renders the scrollable dashboard body.
func (m DashboardModel) content() string {
	var b strings.Builder

	if m.errText != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errText))
		b.WriteString("\n\n")
	}

	if m.user != nil {
		b.WriteString(fmt.Sprintf("Account: %s", m.user.Email))
		if !m.user.IsVerified {
			b.WriteString("  " + tui.WarningStyle.Render("(unverified)"))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Balance: %s\n\n", tui.BadgeStyle.Render(fmt.Sprintf("%d tokens", m.balance))))

	b.WriteString(tui.TitleStyle.Render("Token History"))
	b.WriteString("\n")
	if len(m.transactions) == 0 {
		b.WriteString(tui.DimStyle.Render("No transactions yet."))
		b.WriteString("\n")
	}
	for _, tx := range m.transactions {
		sign := ""
		if tx.Amount > 0 {
			sign = "+"
		}
		b.WriteString(fmt.Sprintf("  %s  %s%d  %-12s  %s\n",
			tx.CreatedAt.Format("Jan 02 15:04"), sign, tx.Amount, tx.Type, tx.Detail))
	}
	b.WriteString("\n")

	b.WriteString(tui.TitleStyle.Render("Leads"))
	b.WriteString("\n")
	if len(m.leadRows) == 0 {
		b.WriteString(tui.DimStyle.Render("No leads captured yet."))
		b.WriteString("\n")
	}
	for _, l := range m.leadRows {
		score := leads.Score(l)
		b.WriteString(fmt.Sprintf("  %s %d  %-20s %-24s %s\n",
			leadBadge(score), score, l.Name, l.Email, l.Message))
	}

	return b.String()
}

// leadBadge returns the colored marker for a lead score.
func leadBadge(score int) string {
	switch leads.LevelFor(score) {
	case leads.Hot:
		return tui.LeadHot
	case leads.Warm:
		return tui.LeadWarm
	default:
		return tui.LeadCold
	}
}
