package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/internal/events"
	"github.com/spec-kit/issuetrack/pkg/util"
)

// State tracks identity resolution progress. Route guards must not make a
// redirect decision while resolution is still pending.
type State int

const (
	StatePending State = iota
	StateAnonymous
	StateAuthenticated
)

// Manager owns the session lifecycle: resolving the stored token at startup,
// adopting a fresh token at login, and clearing everything at logout.
type Manager struct {
	store      *Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	state State
	user  *domain.User
	token string
}

// ManagerDependencies bundles collaborators for the session manager.
type ManagerDependencies struct {
	Store      *Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewManager constructs the manager in the pending state.
func NewManager(deps ManagerDependencies) *Manager {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
		state:      StatePending,
	}
}

// Resolve loads and decodes the stored token once at startup. A missing,
// malformed, or expired token silently clears storage and yields an anonymous
// session; an invalid token is equivalent to being logged out, not an error.
func (m *Manager) Resolve(ctx context.Context) {
	token, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to read stored token", zap.Error(err))
		m.becomeAnonymous(ctx, false)
		return
	}
	if !ok {
		m.becomeAnonymous(ctx, false)
		return
	}

	user, err := DecodeToken(token, m.now())
	if err != nil {
		m.logger.Debug("discarding stored token", zap.Error(err))
		m.becomeAnonymous(ctx, true)
		return
	}

	m.state = StateAuthenticated
	m.user = user
	m.token = token
	m.publish(ctx, events.Event{
		Type:      events.EventSessionResolved,
		ActorID:   user.ID,
		Timestamp: m.now(),
		Payload:   events.SessionResolvedPayload{Username: user.Username, Role: user.Role},
	})
}

// Login decodes and adopts a freshly issued token, persisting it for
// subsequent runs.
func (m *Manager) Login(ctx context.Context, token string) (*domain.User, error) {
	user, err := DecodeToken(token, m.now())
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(token); err != nil {
		return nil, err
	}

	m.state = StateAuthenticated
	m.user = user
	m.token = token
	m.publish(ctx, events.Event{
		Type:      events.EventSessionResolved,
		ActorID:   user.ID,
		Timestamp: m.now(),
		Payload:   events.SessionResolvedPayload{Username: user.Username, Role: user.Role},
	})
	return user, nil
}

// Logout clears the stored token and returns the session to anonymous.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Clear()
	m.state = StateAnonymous
	m.user = nil
	m.token = ""
	m.publish(ctx, events.Event{Type: events.EventSessionCleared, Timestamp: m.now()})
	return err
}

// State reports the current resolution state.
func (m *Manager) State() State {
	return m.state
}

// CurrentUser returns the authenticated identity, or nil.
func (m *Manager) CurrentUser() *domain.User {
	return m.user
}

// Token returns the bearer token for authenticated requests.
func (m *Manager) Token() (string, error) {
	if m.state != StateAuthenticated {
		return "", util.NewNotAuthenticated("")
	}
	return m.token, nil
}

func (m *Manager) becomeAnonymous(ctx context.Context, clearStorage bool) {
	if clearStorage {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear stored token", zap.Error(err))
		}
	}
	m.state = StateAnonymous
	m.user = nil
	m.token = ""
	if clearStorage {
		m.publish(ctx, events.Event{Type: events.EventSessionCleared, Timestamp: m.now()})
	}
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	_ = m.dispatcher.Publish(ctx, event)
}
