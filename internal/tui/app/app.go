// Package app assembles the full-screen Nexus client: it routes between
// the login, verify, chat and dashboard views based on the access gate,
// and dispatches all backend work as commands.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/chat"
	"github.com/nexus-ai/nexus/internal/config"
	"github.com/nexus-ai/nexus/internal/gate"
	"github.com/nexus-ai/nexus/internal/history"
	"github.com/nexus-ai/nexus/internal/log"
	"github.com/nexus-ai/nexus/internal/session"
	"github.com/nexus-ai/nexus/internal/store"
	"github.com/nexus-ai/nexus/internal/tui"
	"github.com/nexus-ai/nexus/internal/tui/views"
)

// purchaseDelay simulates the checkout round-trip before tokens are
// credited.
const purchaseDelay = 1500 * time.Millisecond

// Routes the app can ask the gate about.
const (
	routeChat      = "/"
	routeDashboard = "/dashboard"
	routeLogin     = "/login"
)

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenVerify
	screenChat
	screenDashboard
)

// Model is the root bubbletea model.
type Model struct {
	cfg     *config.Config
	client  *api.Client
	manager *chat.Manager
	state   store.Store
	archive *history.Store // optional, nil disables offline cache

	sess  *session.Session
	mode  *api.SystemStatus
	route string

	screen    screen
	login     views.LoginModel
	verify    views.VerifyModel
	chatView  views.ChatModel
	dashboard views.DashboardModel

	width  int
	height int
}

// New builds the root model. The starting route is the dashboard for a
// signed-in session, the public chat widget otherwise.
func New(cfg *config.Config, client *api.Client, manager *chat.Manager, state store.Store, archive *history.Store) Model {
	sess, err := session.Load(state)
	if err != nil {
		log.Diag.Error().Err(err).Msg("failed to load session")
		sess = &session.Session{}
	}
	if sess.SignedIn() {
		client.SetToken(sess.AuthToken)
	}

	route := routeChat
	if sess.SignedIn() {
		route = routeDashboard
	}

	width, height := 80, 24

	return Model{
		cfg:       cfg,
		client:    client,
		manager:   manager,
		state:     state,
		archive:   archive,
		sess:      sess,
		route:     route,
		screen:    screenLoading,
		login:     views.NewLoginModel(width, height),
		chatView:  views.NewChatModel(manager, width, height),
		dashboard: views.NewDashboardModel(width, height),
		width:     width,
		height:    height,
	}
}

// Init fetches the enforcement mode and starts the inactivity clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchSystemStatus(),
		m.tick(),
		m.chatView.Init(),
		m.login.Init(),
	)
}

// Update is the root message dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyCtrlC:
			return m, tea.Quit
		case tui.KeyTab:
			// Tab toggles chat/dashboard. On the login and verify screens
			// it belongs to the form.
			if m.screen == screenChat || m.screen == screenDashboard {
				return m.toggleRoute()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.forwardToAll(msg)

	case tui.SystemStatusMsg:
		mode := msg.Status
		m.mode = &mode
		return m.applyGate(nil)

	case tui.LoginSubmitMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, tea.Batch(cmd, m.loginCmd(msg.Email, msg.Password))

	case tui.LoginResultMsg:
		return m.handleLoginResult(msg)

	case tui.ResendVerificationMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
		m.verify, cmd = m.verify.Update(msg)
		cmds = append(cmds, cmd, m.resendCmd(msg.Email))
		return m, tea.Batch(cmds...)

	case tui.LogoutMsg:
		return m.handleLogout()

	case tui.SendChatMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, tea.Batch(cmd, m.sendChatCmd(msg.Content))

	case tui.ClearMemoryMsg:
		m.manager.Clear()
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case tui.BuyTokensMsg:
		return m, m.purchaseCmd()

	case tui.ChatDoneMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case tui.PurchaseDoneMsg, tui.BalanceRefreshedMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case tui.InactivityTickMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, tea.Batch(cmd, m.tick())

	case tui.DashboardDataMsg:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd
	}

	return m.forwardToActive(msg)
}

// View renders the active screen.
func (m Model) View() string {
	switch m.screen {
	case screenLoading:
		return tui.DimStyle.Render("\n  Connecting to Nexus AI...")
	case screenLogin:
		return m.login.View()
	case screenVerify:
		return m.verify.View()
	case screenDashboard:
		return m.dashboard.View()
	default:
		return m.chatView.View()
	}
}

// applyGate re-evaluates the access gate for the wanted route and switches
// screens accordingly. extra is batched with any screen-entry command.
func (m Model) applyGate(extra tea.Cmd) (tea.Model, tea.Cmd) {
	switch gate.Evaluate(m.route, m.sess, m.mode) {
	case gate.Loading:
		m.screen = screenLoading
		return m, extra

	case gate.RedirectLogin:
		m.screen = screenLogin
		return m, extra

	case gate.RedirectDashboard:
		m.route = routeDashboard
		m.screen = screenDashboard
		return m, tea.Batch(extra, m.loadDashboardCmd())

	case gate.RedirectVerify:
		m.screen = screenVerify
		m.verify = views.NewVerifyModel(m.sess.User.Email, m.width)
		return m, extra
	}

	switch m.route {
	case routeDashboard:
		m.screen = screenDashboard
		return m, tea.Batch(extra, m.loadDashboardCmd())
	case routeLogin:
		m.screen = screenLogin
		return m, extra
	}
	m.screen = screenChat
	return m, tea.Batch(extra, m.refreshBalanceCmd())
}

// toggleRoute flips between the chat widget and the dashboard, re-running
// the gate so a signed-out user lands on login instead of the dashboard.
func (m Model) toggleRoute() (tea.Model, tea.Cmd) {
	if m.route == routeDashboard {
		m.route = routeChat
	} else {
		m.route = routeDashboard
	}
	return m.applyGate(nil)
}

func (m Model) handleLoginResult(msg tui.LoginResultMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)

	if msg.Err != nil || msg.Result.RequiresVerification || msg.Result.User == nil {
		return m, cmd
	}

	sess := &session.Session{User: msg.Result.User, AuthToken: msg.Result.AccessToken}
	if err := session.Save(m.state, sess); err != nil {
		log.Diag.Error().Err(err).Msg("failed to persist session")
	}
	m.sess = sess
	m.client.SetToken(sess.AuthToken)
	m.route = routeDashboard
	return m.applyGate(cmd)
}

func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	if err := session.Clear(m.state); err != nil {
		log.Diag.Error().Err(err).Msg("failed to clear session")
	}
	m.sess = &session.Session{}
	m.client.SetToken("")
	m.route = routeLogin
	m.screen = screenLogin
	m.login = views.NewLoginModel(m.width, m.height)
	return m, m.login.Init()
}

// forwardToAll sends a message to every sub-model (window sizing).
func (m Model) forwardToAll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	cmds = append(cmds, cmd)
	m.verify, cmd = m.verify.Update(msg)
	cmds = append(cmds, cmd)
	m.chatView, cmd = m.chatView.Update(msg)
	cmds = append(cmds, cmd)
	m.dashboard, cmd = m.dashboard.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// forwardToActive sends a message to the active screen only.
func (m Model) forwardToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		m.login, cmd = m.login.Update(msg)
	case screenVerify:
		m.verify, cmd = m.verify.Update(msg)
	case screenDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case screenChat:
		m.chatView, cmd = m.chatView.Update(msg)
	}
	return m, cmd
}

// ----------------------------------------------------------------------------
// Commands
// ----------------------------------------------------------------------------

func (m Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.cfg.Timeout())
}

// fetchSystemStatus loads the enforcement flags. A failed fetch delivers
// the zero value, which the gate treats as full enforcement.
func (m Model) fetchSystemStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()

		status, err := m.client.SystemStatus(ctx)
		if err != nil {
			log.Diag.Warn().Err(err).Msg("system status unavailable, enforcing verification")
			return tui.SystemStatusMsg{}
		}
		return tui.SystemStatusMsg{Status: status}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tui.InactivityTickMsg{Now: t}
	})
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()

		result, err := m.client.Login(ctx, email, password)
		return tui.LoginResultMsg{Result: result, Email: email, Err: err}
	}
}

func (m Model) resendCmd(email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()

		return tui.ResendResultMsg{Err: m.client.ResendVerification(ctx, email)}
	}
}

func (m Model) sendChatCmd(content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()

		return tui.ChatDoneMsg{Err: m.manager.Send(ctx, content)}
	}
}

func (m Model) purchaseCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), purchaseDelay+m.cfg.Timeout())
		defer cancel()

		return tui.PurchaseDoneMsg{Err: m.manager.Purchase(ctx, purchaseDelay)}
	}
}

func (m Model) refreshBalanceCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()

		m.manager.RefreshBalance(ctx)
		return tui.BalanceRefreshedMsg{}
	}
}

// loadDashboardCmd fetches the account overview. When the backend is
// unreachable it falls back to the local archive; fresh data refreshes the
// archive for the next outage.
func (m Model) loadDashboardCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()

		balance, err := m.client.TokenBalance(ctx)
		if err != nil {
			return m.cachedDashboard(err)
		}

		txs, err := m.client.TokenHistory(ctx)
		if err != nil {
			log.Diag.Warn().Err(err).Msg("token history unavailable")
		}
		leads, err := m.client.Leads(ctx)
		if err != nil {
			log.Diag.Warn().Err(err).Msg("leads unavailable")
		}

		if m.archive != nil {
			if err := m.archive.CacheTransactions(txs); err != nil {
				log.Diag.Warn().Err(err).Msg("failed to cache transactions")
			}
			if err := m.archive.CacheLeads(leads); err != nil {
				log.Diag.Warn().Err(err).Msg("failed to cache leads")
			}
		}

		var user *session.User
		if m.sess != nil {
			user = m.sess.User
		}
		return tui.DashboardDataMsg{
			User:         user,
			Balance:      balance,
			Transactions: txs,
			Leads:        leads,
		}
	}
}

// cachedDashboard serves the last archived dashboard data after a fetch
// failure.
func (m Model) cachedDashboard(cause error) tea.Msg {
	msg := tui.DashboardDataMsg{FromCache: true, Err: cause}
	if m.sess != nil {
		msg.User = m.sess.User
	}
	if m.archive == nil {
		return msg
	}

	txs, err := m.archive.CachedTransactions()
	if err != nil {
		log.Diag.Error().Err(err).Msg("failed to read cached transactions")
	}
	leads, err := m.archive.CachedLeads()
	if err != nil {
		log.Diag.Error().Err(err).Msg("failed to read cached leads")
	}
	msg.Transactions = txs
	msg.Leads = leads
	return msg
}
