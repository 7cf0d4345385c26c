package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// ValidStatus reports whether s is one of the three lifecycle states.
func ValidStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusClosed:
		return true
	}
	return false
}

// Issue mirrors a single backend record. ID and UserID are opaque strings even
// when the backend's native keys are numeric; they are compared, never parsed.
type Issue struct {
	ID              string
	Title           string
	Description     string
	Location        string
	Department      string
	Status          IssueStatus
	UserID          string
	Username        string
	UserEmail       string
	UserPhoneNumber string
	CreatedAt       time.Time
}

// ReportedBy reports whether u originally created the issue.
func (i *Issue) ReportedBy(u *User) bool {
	return i != nil && u != nil && u.ID != "" && u.ID == i.UserID
}
