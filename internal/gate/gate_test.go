package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/session"
)

func signedIn(verified bool) *session.Session {
	return &session.Session{
		User:      &session.User{Email: "owner@acme.test", IsVerified: verified},
		AuthToken: "jwt",
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		route string
		want  RouteClass
	}{
		{"/", Public},
		{"/about", Public},
		{"/pricing", Public},
		{"/login", AuthOnly},
		{"/signup", AuthOnly},
		{"/dashboard", Protected},
		{"/dashboard/leads", Protected},
		{"/settings", Protected},
		{"/verify-email", Public},
		{"/loginish", Public}, // auth routes match exactly, not by prefix
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.route), "route %s", tt.route)
	}
}

func TestEvaluatePrecedence(t *testing.T) {
	off := &api.SystemStatus{}
	bypass := &api.SystemStatus{BypassEnabled: true}
	autoVerify := &api.SystemStatus{AutoVerifyEnabled: true}

	tests := []struct {
		name  string
		route string
		sess  *session.Session
		mode  *api.SystemStatus
		want  Decision
	}{
		{"mode not loaded", "/dashboard", signedIn(true), nil, Loading},
		{"session not loaded", "/dashboard", nil, off, Loading},
		{"signed-in on auth route goes to dashboard", "/login", signedIn(true), off, RedirectDashboard},
		{"unverified signed-in on auth route still goes to dashboard", "/signup", signedIn(false), off, RedirectDashboard},
		{"signed-out on auth route renders", "/login", &session.Session{}, off, Render},
		{"signed-out on signup renders", "/signup", &session.Session{}, off, Render},
		{"public renders for anyone", "/pricing", &session.Session{}, off, Render},
		{"public renders for unverified user", "/about", signedIn(false), off, Render},
		{"signed-out on protected goes to login", "/dashboard", &session.Session{}, off, RedirectLogin},
		{"verified renders protected", "/dashboard", signedIn(true), off, Render},
		{"unverified redirects to verify", "/dashboard", signedIn(false), off, RedirectVerify},
		{"bypass admits unverified", "/dashboard", signedIn(false), bypass, Render},
		{"auto-verify admits unverified", "/settings", signedIn(false), autoVerify, Render},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.route, tt.sess, tt.mode))
		})
	}
}

func TestEffectivelyVerified(t *testing.T) {
	u := &session.User{IsVerified: false}
	v := &session.User{IsVerified: true}

	assert.False(t, EffectivelyVerified(nil, api.SystemStatus{BypassEnabled: true}))
	assert.False(t, EffectivelyVerified(u, api.SystemStatus{}))
	assert.True(t, EffectivelyVerified(v, api.SystemStatus{}))
	assert.True(t, EffectivelyVerified(u, api.SystemStatus{AutoVerifyEnabled: true}))
	assert.True(t, EffectivelyVerified(u, api.SystemStatus{BypassEnabled: true}))
}

func TestFailedStatusFetchFailsClosed(t *testing.T) {
	// A failed fetch resolves to the zero value, which enforces verification.
	var failed api.SystemStatus
	assert.Equal(t, RedirectVerify, Evaluate("/dashboard", signedIn(false), &failed))
}
