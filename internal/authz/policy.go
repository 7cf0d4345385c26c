package authz

import (
	"github.com/spec-kit/issuetrack/internal/domain"
)

// Capability enumerates the actions the client may surface for a user.
type Capability string

const (
	CapabilityView         Capability = "view"
	CapabilityCreate       Capability = "create"
	CapabilityEdit         Capability = "edit"
	CapabilityChangeStatus Capability = "change_status"
	CapabilityDelete       Capability = "delete"
	CapabilityExport       Capability = "export"
)

// CapabilitySet is the set of actions granted to a user for an issue.
type CapabilitySet map[Capability]struct{}

// Has reports whether the capability was granted.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func (s CapabilitySet) grant(caps ...Capability) {
	for _, c := range caps {
		s[c] = struct{}{}
	}
}

// Capabilities maps (user, issue) to the permitted actions. It is a pure
// decision function; every role-gated affordance in the client goes through
// it so the rule set lives in exactly one place.
//
// Either argument may be nil: a nil user is anonymous and gets nothing; a nil
// issue yields the role-level capabilities that do not depend on ownership.
func Capabilities(user *domain.User, issue *domain.Issue) CapabilitySet {
	caps := CapabilitySet{}
	if user == nil {
		return caps
	}

	switch user.Role {
	case domain.RoleCustomer:
		caps.grant(CapabilityCreate)
		if issue.ReportedBy(user) {
			caps.grant(CapabilityView, CapabilityEdit)
		}
	case domain.RoleTechnician:
		caps.grant(CapabilityView, CapabilityEdit, CapabilityChangeStatus)
	case domain.RoleAdmin:
		caps.grant(CapabilityView, CapabilityEdit, CapabilityChangeStatus,
			CapabilityDelete, CapabilityExport)
	}

	// reporters of any role may delete their own issue
	if issue.ReportedBy(user) {
		caps.grant(CapabilityDelete)
	}

	return caps
}

// CanView reports whether the user may view the issue.
func CanView(user *domain.User, issue *domain.Issue) bool {
	return Capabilities(user, issue).Has(CapabilityView)
}

// CanCreate reports whether the user may file a new issue.
func CanCreate(user *domain.User) bool {
	return Capabilities(user, nil).Has(CapabilityCreate)
}

// CanEdit reports whether the user may edit the issue: admin, technician, or
// the issue's reporter.
func CanEdit(user *domain.User, issue *domain.Issue) bool {
	return Capabilities(user, issue).Has(CapabilityEdit)
}

// CanDelete reports whether the user may delete the issue: admin or the
// issue's reporter. A technician alone cannot delete.
func CanDelete(user *domain.User, issue *domain.Issue) bool {
	return Capabilities(user, issue).Has(CapabilityDelete)
}

// CanChangeStatus reports whether the status field is mutable for the user.
// Customers editing their own issue keep every other field but status stays
// fixed at its current value.
func CanChangeStatus(user *domain.User) bool {
	return Capabilities(user, nil).Has(CapabilityChangeStatus)
}

// CanExport reports whether the user may export all issues to CSV.
func CanExport(user *domain.User) bool {
	return Capabilities(user, nil).Has(CapabilityExport)
}
