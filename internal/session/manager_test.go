package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issuetrack/internal/events"
	"github.com/spec-kit/issuetrack/pkg/util"
)

func newTestManager(t *testing.T) (*Manager, *Store) {
	t.Helper()
	s, _ := newTestTokenStore(t)
	m := NewManager(ManagerDependencies{Store: s})
	return m, s
}

func TestManager_StartsPending(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Equal(t, StatePending, m.State())
	assert.Nil(t, m.CurrentUser())
}

func TestManager_ResolveWithoutToken(t *testing.T) {
	m, _ := newTestManager(t)
	m.Resolve(context.Background())

	assert.Equal(t, StateAnonymous, m.State())
	_, err := m.Token()
	assert.Equal(t, util.CodeNotAuthenticated, util.CodeOf(err))
}

func TestManager_ResolveValidToken(t *testing.T) {
	m, s := newTestManager(t)
	token := makeToken(t, defaultClaims(time.Now().Add(time.Hour)))
	require.NoError(t, s.Save(token))

	m.Resolve(context.Background())

	assert.Equal(t, StateAuthenticated, m.State())
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, "casey", m.CurrentUser().Username)

	got, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestManager_ResolveExpiredTokenClearsStorage(t *testing.T) {
	m, s := newTestManager(t)
	require.NoError(t, s.Save(makeToken(t, defaultClaims(time.Now().Add(-100*time.Second)))))

	m.Resolve(context.Background())

	assert.Equal(t, StateAnonymous, m.State())
	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok, "expired token must be discarded from storage")
}

func TestManager_ResolveMalformedTokenClearsStorage(t *testing.T) {
	m, s := newTestManager(t)
	require.NoError(t, s.Save("not-a-token"))

	m.Resolve(context.Background())

	assert.Equal(t, StateAnonymous, m.State())
	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_LoginPersistsToken(t *testing.T) {
	m, s := newTestManager(t)
	token := makeToken(t, defaultClaims(time.Now().Add(time.Hour)))

	user, err := m.Login(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, StateAuthenticated, m.State())

	stored, ok, err := s.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, token, stored)
}

func TestManager_LoginRejectsExpiredToken(t *testing.T) {
	m, s := newTestManager(t)

	_, err := m.Login(context.Background(), makeToken(t, defaultClaims(time.Now().Add(-time.Minute))))
	require.Error(t, err)
	assert.NotEqual(t, StateAuthenticated, m.State())

	_, ok, loadErr := s.Load()
	require.NoError(t, loadErr)
	assert.False(t, ok, "rejected token is never persisted")
}

func TestManager_Logout(t *testing.T) {
	m, s := newTestManager(t)
	_, err := m.Login(context.Background(), makeToken(t, defaultClaims(time.Now().Add(time.Hour))))
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.CurrentUser())
	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_PublishesSessionEvents(t *testing.T) {
	s, _ := newTestTokenStore(t)
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	for _, et := range []events.EventType{events.EventSessionResolved, events.EventSessionCleared} {
		eventType := et
		dispatcher.Subscribe(eventType, func(ctx context.Context, ev events.Event) error {
			seen = append(seen, ev.Type)
			return nil
		})
	}

	m := NewManager(ManagerDependencies{Store: s, Dispatcher: dispatcher})
	_, err := m.Login(context.Background(), makeToken(t, defaultClaims(time.Now().Add(time.Hour))))
	require.NoError(t, err)
	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, []events.EventType{events.EventSessionResolved, events.EventSessionCleared}, seen)
}
