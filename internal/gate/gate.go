// Package gate decides, per route, whether the current visitor may view a
// page or must be redirected. It is a pure function of the session, the
// server-reported system mode, and the route.
package gate

import (
	"strings"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/session"
)

// RouteClass classifies a route's access requirement.
type RouteClass int

const (
	// Public routes have no restriction.
	Public RouteClass = iota
	// Protected routes require a signed-in, verified user.
	Protected
	// AuthOnly routes (login/signup) require NOT being signed in.
	AuthOnly
)

// Decision is the terminal outcome of one gate evaluation.
type Decision int

const (
	Loading Decision = iota
	Render
	RedirectLogin
	RedirectDashboard
	RedirectVerify
)

// String returns a display label for the decision.
func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-to-login"
	case RedirectDashboard:
		return "redirect-to-dashboard"
	case RedirectVerify:
		return "redirect-to-verify"
	default:
		return "unknown"
	}
}

// Route prefixes that require a signed-in, verified user.
var protectedRoutes = []string{
	"/dashboard",
	"/settings",
}

// Exact routes that require NOT being signed in.
var authRoutes = []string{
	"/login",
	"/signup",
}

// Classify maps a route path to exactly one RouteClass. Protected routes
// match by prefix, auth routes by exact path.
func Classify(route string) RouteClass {
	for _, r := range authRoutes {
		if route == r {
			return AuthOnly
		}
	}
	for _, r := range protectedRoutes {
		if strings.HasPrefix(route, r) {
			return Protected
		}
	}
	return Public
}

// EffectivelyVerified reports whether the user may pass verification
// enforcement: verified, or either relaxation flag is on.
func EffectivelyVerified(user *session.User, mode api.SystemStatus) bool {
	if user == nil {
		return false
	}
	return user.IsVerified || mode.AutoVerifyEnabled || mode.BypassEnabled
}

// Evaluate runs the gate for one route. mode is nil until the system-status
// fetch completes; a failed fetch resolves to a zero-value SystemStatus
// (both flags false), so verification is enforced by default.
//
// The precedence order is fixed: loading, then signed-in on auth-only
// routes, then public, then signed-out auth-only routes, then signed-out
// on protected routes, then verification.
func Evaluate(route string, sess *session.Session, mode *api.SystemStatus) Decision {
	if mode == nil || sess == nil {
		return Loading
	}

	class := Classify(route)

	if sess.SignedIn() && class == AuthOnly {
		return RedirectDashboard
	}
	if class == Public {
		return Render
	}
	// Auth routes render for signed-out visitors; the signed-in case was
	// already redirected above.
	if class == AuthOnly {
		return Render
	}
	if !sess.SignedIn() {
		return RedirectLogin
	}
	if EffectivelyVerified(sess.User, *mode) {
		return Render
	}
	return RedirectVerify
}
