package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/issuetrack/internal/domain"
)

// WireID normalizes backend identifiers to their canonical string form. The
// backend's native keys are numeric in some deployments and strings in
// others; the client only ever compares them.
type WireID string

func (w *WireID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = WireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*w = WireID(n.String())
	return nil
}

// IssueResponse mirrors one backend issue record.
type IssueResponse struct {
	ID              WireID             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Location        string             `json:"location"`
	Department      string             `json:"department"`
	Status          domain.IssueStatus `json:"status"`
	UserID          WireID             `json:"userId"`
	Username        string             `json:"username"`
	UserEmail       string             `json:"user_email"`
	UserPhoneNumber string             `json:"user_phone_number"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ToDomain converts the wire record to the domain model.
func (r IssueResponse) ToDomain() domain.Issue {
	status := r.Status
	if status == "" {
		status = domain.IssueStatusOpen
	}
	return domain.Issue{
		ID:              string(r.ID),
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		Department:      r.Department,
		Status:          status,
		UserID:          string(r.UserID),
		Username:        r.Username,
		UserEmail:       r.UserEmail,
		UserPhoneNumber: r.UserPhoneNumber,
		CreatedAt:       r.CreatedAt,
	}
}

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Location    string             `json:"location"`
	Department  string             `json:"department"`
	Status      domain.IssueStatus `json:"status"`
}

// UpdateIssueRequest payload; nil fields are omitted from the submission.
type UpdateIssueRequest struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Location    *string             `json:"location,omitempty"`
	Department  *string             `json:"department,omitempty"`
	Status      *domain.IssueStatus `json:"status,omitempty"`
}
