package events

import (
	"time"

	"github.com/spec-kit/issuetrack/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated    EventType = "issue_created"
	EventIssueUpdated    EventType = "issue_updated"
	EventIssueDeleted    EventType = "issue_deleted"
	EventCacheRefreshed  EventType = "cache_refreshed"
	EventSessionResolved EventType = "session_resolved"
	EventSessionCleared  EventType = "session_cleared"
)

// Event represents a client-side event emitted after confirmed state changes.
// The view layer subscribes to these to know when to re-render.
type Event struct {
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title      string `json:"title"`
	Department string `json:"department"`
}

// IssueUpdatedPayload payload.
type IssueUpdatedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// CacheRefreshedPayload payload.
type CacheRefreshedPayload struct {
	Count int `json:"count"`
}

// SessionResolvedPayload payload.
type SessionResolvedPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}
