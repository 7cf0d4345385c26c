package store

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issuetrack/internal/api"
	"github.com/spec-kit/issuetrack/internal/api/dto"
	"github.com/spec-kit/issuetrack/internal/authz"
	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/internal/events"
	"github.com/spec-kit/issuetrack/internal/session"
	"github.com/spec-kit/issuetrack/pkg/util"
)

// IssueStore caches the last fetched issue list and coordinates mutations.
// After every confirmed write it refreshes the whole list instead of patching
// locally, so the cache never shows a state the backend did not accept. One
// extra round trip per mutation is the accepted cost.
//
// The store assumes a single logical caller. Overlapping operations are not
// coordinated; the last response to land wins.
type IssueStore struct {
	client     api.Client
	session    *session.Manager
	dispatcher events.Dispatcher
	logger     *zap.Logger

	issues []domain.Issue
	loaded bool
}

// Dependencies bundles collaborators for the issue store.
type Dependencies struct {
	Client     api.Client
	Session    *session.Manager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CreateInput describes a new issue. Status is not a caller choice; new
// issues always start OPEN.
type CreateInput struct {
	Title       string
	Description string
	Location    string
	Department  string
}

// UpdateInput describes a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Location    *string
	Department  *string
	Status      *domain.IssueStatus
}

// NewIssueStore constructs the store with an empty cache.
func NewIssueStore(deps Dependencies) *IssueStore {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueStore{
		client:     deps.Client,
		session:    deps.Session,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List fetches every issue visible to the caller and replaces the cache
// wholesale. The backend decides visibility; the client does not re-filter.
func (s *IssueStore) List(ctx context.Context) ([]domain.Issue, error) {
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, token)
}

// Issues returns the cached list from the last successful fetch.
func (s *IssueStore) Issues() []domain.Issue {
	return s.issues
}

// Get looks up an issue in the last-loaded cache. NOT_FOUND may mean a bad
// identifier or a concurrent deletion since the last refresh.
func (s *IssueStore) Get(id string) (*domain.Issue, error) {
	for i := range s.issues {
		if s.issues[i].ID == id {
			return &s.issues[i], nil
		}
	}
	return nil, util.NewNotFound("issue", id)
}

// Create submits a new issue and refreshes the cache on success.
func (s *IssueStore) Create(ctx context.Context, input CreateInput) (*domain.Issue, error) {
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}

	created, err := s.client.CreateIssue(ctx, token, dto.CreateIssueRequest{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Department:  input.Department,
		Status:      domain.IssueStatusOpen,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.refresh(ctx, token); err != nil {
		return created, err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: created.ID,
		ActorID: s.actorID(),
		Payload: events.IssueCreatedPayload{Title: created.Title, Department: created.Department},
	})
	return created, nil
}

// Update submits an edit and refreshes the cache on success. When the acting
// user may not change status, the submitted payload carries the issue's prior
// status regardless of what the caller passed, so a customer edit can never
// move their issue's state.
func (s *IssueStore) Update(ctx context.Context, id string, input UpdateInput) (*domain.Issue, error) {
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}

	prior, err := s.lookup(ctx, token, id)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if !authz.CanChangeStatus(s.session.CurrentUser()) {
		priorStatus := prior.Status
		status = &priorStatus
	}

	updated, err := s.client.UpdateIssue(ctx, token, id, dto.UpdateIssueRequest{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Department:  input.Department,
		Status:      status,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.refresh(ctx, token); err != nil {
		return updated, err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventIssueUpdated,
		IssueID: updated.ID,
		ActorID: s.actorID(),
		Payload: events.IssueUpdatedPayload{OldStatus: prior.Status, NewStatus: updated.Status},
	})
	return updated, nil
}

// Delete removes an issue remotely and refreshes the cache on success.
func (s *IssueStore) Delete(ctx context.Context, id string) error {
	token, err := s.session.Token()
	if err != nil {
		return err
	}

	if _, err := s.lookup(ctx, token, id); err != nil {
		return err
	}

	if err := s.client.DeleteIssue(ctx, token, id); err != nil {
		return err
	}

	if _, err := s.refresh(ctx, token); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventIssueDeleted,
		IssueID: id,
		ActorID: s.actorID(),
	})
	return nil
}

// ExportCSV streams the backend's CSV rendering of all issues into w. The
// cache is left untouched; export is a read, not a mutation. Authorization is
// the backend's call, the client only pre-gates the affordance.
func (s *IssueStore) ExportCSV(ctx context.Context, w io.Writer) error {
	token, err := s.session.Token()
	if err != nil {
		return err
	}

	data, err := s.client.ExportIssuesCSV(ctx, token)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return util.NewTransportError("writing export", err)
	}
	return nil
}

// lookup finds the issue in the cache, loading the list first if this store
// has never fetched.
func (s *IssueStore) lookup(ctx context.Context, token, id string) (domain.Issue, error) {
	if !s.loaded {
		if _, err := s.refresh(ctx, token); err != nil {
			return domain.Issue{}, err
		}
	}
	issue, err := s.Get(id)
	if err != nil {
		return domain.Issue{}, err
	}
	return *issue, nil
}

func (s *IssueStore) refresh(ctx context.Context, token string) ([]domain.Issue, error) {
	issues, err := s.client.ListIssues(ctx, token)
	if err != nil {
		return nil, err
	}
	s.issues = issues
	s.loaded = true
	s.logger.Debug("issue cache refreshed", zap.Int("count", len(issues)))
	s.publish(ctx, events.Event{
		Type:    events.EventCacheRefreshed,
		ActorID: s.actorID(),
		Payload: events.CacheRefreshedPayload{Count: len(issues)},
	})
	return issues, nil
}

func (s *IssueStore) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *IssueStore) actorID() string {
	if user := s.session.CurrentUser(); user != nil {
		return user.ID
	}
	return ""
}
