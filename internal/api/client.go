// Package api implements the HTTP client for the Nexus AI backend.
// This file provides the client with per-call context cancellation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nexus-ai/nexus/internal/session"
)

// Client talks to the Nexus AI backend. All calls take a context so
// in-flight requests are cancelled when the caller tears down.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   string
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer credential used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a request and decodes a 2xx JSON response into out (if non-nil).
// Non-2xx responses become *Error with the server detail extracted.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, resp.Header.Get("Content-Type"), data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SystemStatus fetches the verification enforcement flags.
func (c *Client) SystemStatus(ctx context.Context) (SystemStatus, error) {
	var out SystemStatus
	err := c.do(ctx, http.MethodGet, "/api/auth/debug/status", nil, &out)
	return out, err
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// ResendVerification asks the backend to re-send the verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/resend-verification", map[string]string{"email": email}, nil)
}

// VerifyEmail confirms an email-verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/api/auth/verify-email?token="+url.QueryEscape(token), nil, nil)
}

// VerifyResetToken checks whether a password-reset token is still valid.
func (c *Client) VerifyResetToken(ctx context.Context, token string) (ResetTokenResult, error) {
	var out ResetTokenResult
	err := c.do(ctx, http.MethodGet, "/api/auth/verify-reset-token?token="+url.QueryEscape(token), nil, &out)
	return out, err
}

// ResetPassword submits a new password for a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": newPassword,
	}, nil)
}

// Me fetches the current user record.
func (c *Client) Me(ctx context.Context) (session.User, error) {
	var out session.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out, err
}

// BusinessConfig fetches the tenant chat configuration.
func (c *Client) BusinessConfig(ctx context.Context) (BusinessConfig, error) {
	var out BusinessConfig
	err := c.do(ctx, http.MethodGet, "/api/business-config", nil, &out)
	return out, err
}

// TokenBalance fetches the remaining token balance.
func (c *Client) TokenBalance(ctx context.Context) (int, error) {
	var out struct {
		Tokens int `json:"tokens"`
	}
	err := c.do(ctx, http.MethodGet, "/api/token/balance", nil, &out)
	return out.Tokens, err
}

// DeductTokens deducts amount tokens and returns the new balance.
func (c *Client) DeductTokens(ctx context.Context, amount int) (int, error) {
	var out struct {
		Tokens int `json:"tokens"`
	}
	err := c.do(ctx, http.MethodPost, "/api/token/deduct", map[string]int{"amount": amount}, &out)
	return out.Tokens, err
}

// TokenHistory fetches the token transaction ledger.
func (c *Client) TokenHistory(ctx context.Context) ([]TokenTransaction, error) {
	var out []TokenTransaction
	err := c.do(ctx, http.MethodGet, "/api/token/history", nil, &out)
	return out, err
}

// Chat sends a chat message and returns the bot reply payload.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat/", req, &out)
	return out, err
}

// Leads fetches the captured leads.
func (c *Client) Leads(ctx context.Context) ([]Lead, error) {
	var out []Lead
	err := c.do(ctx, http.MethodGet, "/api/leads", nil, &out)
	return out, err
}

// IntegrationStatus fetches the connected state per platform.
func (c *Client) IntegrationStatus(ctx context.Context) (map[string]bool, error) {
	var out map[string]bool
	err := c.do(ctx, http.MethodGet, "/api/integrations/status", nil, &out)
	return out, err
}

// IntegrationConnectURL returns the browser URL that starts the OAuth
// connect flow for a platform. The flow itself happens outside this client.
func (c *Client) IntegrationConnectURL(platform string) string {
	return fmt.Sprintf("%s/api/integrations/%s/connect", c.baseURL, url.PathEscape(platform))
}

// DisconnectIntegration disconnects a platform.
func (c *Client) DisconnectIntegration(ctx context.Context, platform string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/integrations/%s/disconnect", url.PathEscape(platform)), struct{}{}, nil)
}

// CreateCheckoutSession creates a Stripe checkout session for a USD amount.
func (c *Client) CreateCheckoutSession(ctx context.Context, amount int) (CheckoutSession, error) {
	var out CheckoutSession
	err := c.do(ctx, http.MethodPost, "/api/payment/create-checkout-session", map[string]int{"amount": amount}, &out)
	return out, err
}

// CreateBinanceOrder creates a Binance Pay order for a USD amount.
func (c *Client) CreateBinanceOrder(ctx context.Context, amount int) (CheckoutSession, error) {
	var out CheckoutSession
	err := c.do(ctx, http.MethodPost, "/api/payment/create-binance-order", map[string]int{"amount": amount}, &out)
	return out, err
}
