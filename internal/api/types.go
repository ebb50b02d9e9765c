// Package api implements the HTTP client for the Nexus AI backend.
// This file defines the request/response payload types.
package api

import (
	"time"

	"github.com/nexus-ai/nexus/internal/session"
)

// SystemStatus reports the server-side verification enforcement flags.
type SystemStatus struct {
	AutoVerifyEnabled bool `json:"auto_verify_enabled"`
	BypassEnabled     bool `json:"bypass_enabled"`
}

// LoginResult is the response to a login attempt. Either the user/token pair
// is set, or RequiresVerification is true and both are empty.
type LoginResult struct {
	User                 *session.User `json:"user"`
	AccessToken          string        `json:"access_token"`
	RequiresVerification bool          `json:"requires_verification"`
}

// ResetTokenResult reports whether a password-reset token is still valid.
type ResetTokenResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// BusinessConfig is the tenant chat configuration (non-demo mode).
type BusinessConfig struct {
	BusinessID         int    `json:"business_id"`
	Name               string `json:"name"`
	Greeting           string `json:"greeting"`
	LeadCaptureEnabled bool   `json:"lead_capture_enabled"`
}

// HistoryEntry is one transcript message as sent with demo-mode requests.
type HistoryEntry struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatRequest is the body of POST /api/chat/.
type ChatRequest struct {
	Message    string         `json:"message"`
	History    []HistoryEntry `json:"history"`
	DemoMode   bool           `json:"demo_mode"`
	BusinessID int            `json:"business_id"`
}

// ChatResponse is the bot reply payload.
type ChatResponse struct {
	Response        string `json:"response"`
	VisualURL       string `json:"visual_url"`
	ContactWhatsapp string `json:"contact_whatsapp"`
	ContactPhone    string `json:"contact_phone"`
	ShowContact     bool   `json:"show_contact"`
}

// TokenTransaction is one entry of the token ledger history.
type TokenTransaction struct {
	ID        int       `json:"id"`
	Amount    int       `json:"amount"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Lead is a captured lead record.
type Lead struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckoutSession is the response to a payment-session creation call.
// Stripe responses carry SessionURL, Binance responses CheckoutURL.
type CheckoutSession struct {
	SessionURL  string `json:"session_url"`
	CheckoutURL string `json:"checkout_url"`
}

// URL returns whichever redirect URL the provider supplied.
func (c CheckoutSession) URL() string {
	if c.SessionURL != "" {
		return c.SessionURL
	}
	return c.CheckoutURL
}
