package authz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/issuetrack/internal/domain"
)

func user(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Username: "u" + id, Role: role}
}

func issueOf(reporterID string) *domain.Issue {
	return &domain.Issue{ID: "i1", UserID: reporterID, Status: domain.IssueStatusOpen}
}

func TestCapabilities_CustomerOwnIssue(t *testing.T) {
	u := user("42", domain.RoleCustomer)
	caps := Capabilities(u, issueOf("42"))

	assert.True(t, caps.Has(CapabilityView))
	assert.True(t, caps.Has(CapabilityEdit))
	assert.True(t, caps.Has(CapabilityDelete), "reporters may delete their own issue")
	assert.False(t, caps.Has(CapabilityChangeStatus))
	assert.False(t, caps.Has(CapabilityExport))
}

func TestCapabilities_CustomerForeignIssue(t *testing.T) {
	u := user("42", domain.RoleCustomer)
	caps := Capabilities(u, issueOf("7"))

	assert.True(t, caps.Has(CapabilityCreate))
	assert.False(t, caps.Has(CapabilityView))
	assert.False(t, caps.Has(CapabilityEdit))
	assert.False(t, caps.Has(CapabilityDelete))
}

func TestCapabilities_TechnicianForeignIssue(t *testing.T) {
	u := user("3", domain.RoleTechnician)
	caps := Capabilities(u, issueOf("7"))

	assert.True(t, caps.Has(CapabilityView))
	assert.True(t, caps.Has(CapabilityEdit))
	assert.True(t, caps.Has(CapabilityChangeStatus))
	assert.False(t, caps.Has(CapabilityDelete), "technician alone cannot delete")
	assert.False(t, caps.Has(CapabilityExport))
}

func TestCapabilities_TechnicianOwnIssue(t *testing.T) {
	u := user("3", domain.RoleTechnician)
	caps := Capabilities(u, issueOf("3"))

	assert.True(t, caps.Has(CapabilityDelete), "reporters of any role may delete their own issue")
}

func TestCapabilities_AdminRegardlessOfOwnership(t *testing.T) {
	u := user("1", domain.RoleAdmin)
	for _, reporter := range []string{"1", "99"} {
		caps := Capabilities(u, issueOf(reporter))
		assert.True(t, caps.Has(CapabilityView))
		assert.True(t, caps.Has(CapabilityEdit))
		assert.True(t, caps.Has(CapabilityDelete))
		assert.True(t, caps.Has(CapabilityChangeStatus))
		assert.True(t, caps.Has(CapabilityExport))
	}
}

func TestCapabilities_Anonymous(t *testing.T) {
	assert.Empty(t, Capabilities(nil, issueOf("7")))
	assert.Empty(t, Capabilities(nil, nil))
}

func TestCapabilities_UnknownRole(t *testing.T) {
	u := user("5", domain.Role("superuser"))
	caps := Capabilities(u, issueOf("7"))
	assert.Empty(t, caps)
}

// The delete and edit rules as truth tables over every role/ownership combo.
func TestDeleteAndEditTruthTables(t *testing.T) {
	roles := []domain.Role{domain.RoleCustomer, domain.RoleTechnician, domain.RoleAdmin}
	for _, role := range roles {
		for _, owns := range []bool{true, false} {
			u := user("10", role)
			reporter := "20"
			if owns {
				reporter = "10"
			}
			issue := issueOf(reporter)
			name := fmt.Sprintf("%s owns=%v", role, owns)

			wantDelete := role == domain.RoleAdmin || owns
			assert.Equal(t, wantDelete, CanDelete(u, issue), "CanDelete %s", name)

			wantEdit := role == domain.RoleAdmin || role == domain.RoleTechnician || owns
			assert.Equal(t, wantEdit, CanEdit(u, issue), "CanEdit %s", name)

			wantStatus := role == domain.RoleAdmin || role == domain.RoleTechnician
			assert.Equal(t, wantStatus, CanChangeStatus(u), "CanChangeStatus %s", name)
		}
	}
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(user("1", domain.RoleCustomer)))
	assert.False(t, CanCreate(user("1", domain.RoleTechnician)))
	assert.False(t, CanCreate(user("1", domain.RoleAdmin)))
	assert.False(t, CanCreate(nil))
}

func TestCanExport(t *testing.T) {
	assert.True(t, CanExport(user("1", domain.RoleAdmin)))
	assert.False(t, CanExport(user("1", domain.RoleTechnician)))
	assert.False(t, CanExport(user("1", domain.RoleCustomer)))
}
