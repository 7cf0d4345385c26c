package authz

import (
	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/internal/session"
)

// Decision is the outcome of a route guard.
type Decision int

const (
	// DecisionWait means identity resolution has not completed; the caller
	// must hold its render and must not redirect yet.
	DecisionWait Decision = iota
	DecisionAllow
	DecisionRedirect
)

// RequireAuthenticated guards routes that need any signed-in user. While the
// session state is still pending no redirect is issued, so a slow resolution
// never bounces an actually-authenticated user to the login page.
func RequireAuthenticated(state session.State) Decision {
	switch state {
	case session.StatePending:
		return DecisionWait
	case session.StateAuthenticated:
		return DecisionAllow
	default:
		return DecisionRedirect
	}
}

// RequireAdmin guards admin-only routes with the same pending semantics.
func RequireAdmin(state session.State, user *domain.User) Decision {
	if decision := RequireAuthenticated(state); decision != DecisionAllow {
		return decision
	}
	if user == nil || user.Role != domain.RoleAdmin {
		return DecisionRedirect
	}
	return DecisionAllow
}
