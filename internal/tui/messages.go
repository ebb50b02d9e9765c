// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"time"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/session"
)

// ============================================================================
// Gate / Session Messages
// ============================================================================

// SystemStatusMsg carries the verification enforcement flags. A failed
// fetch is delivered as the zero value so the gate fails closed.
type SystemStatusMsg struct {
	Status api.SystemStatus
}

// LoginSubmitMsg is sent when the user submits the login form.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// LoginResultMsg carries the outcome of a login attempt.
type LoginResultMsg struct {
	Result api.LoginResult
	Email  string
	Err    error
}

// ResendVerificationMsg requests a new verification email.
type ResendVerificationMsg struct {
	Email string
}

// ResendResultMsg carries the outcome of a resend request.
type ResendResultMsg struct {
	Err error
}

// LogoutMsg signals that the user wants to sign out.
type LogoutMsg struct{}

// ============================================================================
// Chat Messages
// ============================================================================

// SendChatMsg is sent when the user submits a chat message.
type SendChatMsg struct {
	Content string
}

// ChatDoneMsg signals that a chat exchange finished (successfully or not);
// the view re-reads the manager state.
type ChatDoneMsg struct {
	Err error
}

// ClearMemoryMsg requests a full transcript clear.
type ClearMemoryMsg struct{}

// BuyTokensMsg triggers the simulated purchase from the buy prompt.
type BuyTokensMsg struct{}

// PurchaseDoneMsg signals that the simulated purchase completed.
type PurchaseDoneMsg struct {
	Err error
}

// BalanceRefreshedMsg signals that the token balance was refetched.
type BalanceRefreshedMsg struct{}

// InactivityTickMsg drives the "still there?" prompt evaluation.
type InactivityTickMsg struct {
	Now time.Time
}

// ============================================================================
// Dashboard Messages
// ============================================================================

// DashboardDataMsg carries one dashboard refresh. FromCache is true when
// the backend was unreachable and the local archive supplied the data.
type DashboardDataMsg struct {
	User         *session.User
	Balance      int
	Transactions []api.TokenTransaction
	Leads        []api.Lead
	FromCache    bool
	Err          error
}

// ============================================================================
// Utility Messages
// ============================================================================

// ErrorMsg is a generic error message for unrecoverable errors.
type ErrorMsg struct {
	Err error
}
