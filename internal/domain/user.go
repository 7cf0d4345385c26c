package domain

// Role enumerates the account types the tracker recognizes.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// User is the identity decoded from a bearer token. It is never persisted on its
// own; the token is the source of truth and the backend re-checks it per request.
type User struct {
	ID          string
	Username    string
	Email       string
	PhoneNumber string
	Role        Role
}

// IsStaff reports whether the user may act on issues they did not report.
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == RoleTechnician || u.Role == RoleAdmin)
}
