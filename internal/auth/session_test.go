package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/dayloop-io/dayloop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory Gateway. GetSessionWithPerson returns copies
// so tests can tell whether renewals were actually written back.
type fakeGateway struct {
	persons  map[string]*models.Person
	byEmail  map[string]string
	digests  map[string][]byte
	sessions map[string]*models.Session

	lookupErr       error
	invalidateCalls int
	renewCalls      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		persons:  make(map[string]*models.Person),
		byEmail:  make(map[string]string),
		digests:  make(map[string][]byte),
		sessions: make(map[string]*models.Session),
	}
}

func (g *fakeGateway) CreatePerson(_ context.Context, email string, digest []byte, username *string) (*models.Person, error) {
	if _, taken := g.byEmail[email]; taken {
		return nil, store.ErrDuplicateEmail
	}
	person := &models.Person{
		Key:          "person-" + email,
		Email:        email,
		Username:     username,
		UsingTagging: true,
		DateSignedUp: time.Now().UTC(),
	}
	g.persons[person.Key] = person
	g.byEmail[email] = person.Key
	g.digests[person.Key] = digest
	return person, nil
}

func (g *fakeGateway) GetPersonByEmail(_ context.Context, email string) (*models.Person, error) {
	key, ok := g.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return g.persons[key], nil
}

func (g *fakeGateway) GetPasswordDigest(_ context.Context, personKey string) ([]byte, error) {
	digest, ok := g.digests[personKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	return digest, nil
}

func (g *fakeGateway) CreateSession(_ context.Context, token, personKey string, createdAt, expiresAt time.Time) (*models.Session, error) {
	session := &models.Session{Token: token, PersonKey: personKey, CreatedAt: createdAt, ExpiresAt: expiresAt}
	g.sessions[token] = session
	copied := *session
	return &copied, nil
}

func (g *fakeGateway) GetSessionWithPerson(_ context.Context, token string) (*models.Session, *models.Person, error) {
	if g.lookupErr != nil {
		return nil, nil, g.lookupErr
	}
	session, ok := g.sessions[token]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	person, ok := g.persons[session.PersonKey]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	copied := *session
	return &copied, person, nil
}

func (g *fakeGateway) UpdateSessionExpiry(_ context.Context, token string, newExpiresAt time.Time) error {
	g.renewCalls++
	session, ok := g.sessions[token]
	if !ok {
		return store.ErrNotFound
	}
	session.ExpiresAt = newExpiresAt
	return nil
}

func (g *fakeGateway) InvalidateSession(_ context.Context, token string) error {
	g.invalidateCalls++
	delete(g.sessions, token)
	return nil
}

func (g *fakeGateway) addPerson(t *testing.T, email, password string) *models.Person {
	t.Helper()
	digest, err := HashPassword(password)
	require.NoError(t, err)
	person, err := g.CreatePerson(context.Background(), email, digest, nil)
	require.NoError(t, err)
	return person
}

// newTestService pins the clock so expiry and renewal windows are exact.
func newTestService(gateway Gateway, at time.Time) *Service {
	svc := NewService(gateway, 30*24*time.Hour, 0.5)
	svc.now = func() time.Time { return at }
	return svc
}

func (s *Service) setClock(at time.Time) {
	s.now = func() time.Time { return at }
}

func TestIssueSession(t *testing.T) {
	gateway := newFakeGateway()
	person := gateway.addPerson(t, "issue@example.com", "correct horse battery")

	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(gateway, issuedAt)

	session, err := svc.IssueSession(context.Background(), person.Key)
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, person.Key, session.PersonKey)
	assert.Equal(t, issuedAt, session.CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), session.ExpiresAt)

	// Tokens must be unguessable, so two sessions never share one.
	second, err := svc.IssueSession(context.Background(), person.Key)
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, second.Token)
}

func TestValidateSessionTokenStates(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*fakeGateway, *Service, *models.Session) {
		gateway := newFakeGateway()
		person := gateway.addPerson(t, "states@example.com", "correct horse battery")
		svc := newTestService(gateway, issuedAt)
		session, err := svc.IssueSession(context.Background(), person.Key)
		require.NoError(t, err)
		return gateway, svc, session
	}

	t.Run("NoToken", func(t *testing.T) {
		gateway, svc, _ := setup(t)
		result, err := svc.ValidateSessionToken(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, StateNoToken, result.State)
		assert.False(t, result.Authenticated())
		assert.Zero(t, gateway.invalidateCalls)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, svc, _ := setup(t)
		result, err := svc.ValidateSessionToken(context.Background(), "no-such-token")
		require.NoError(t, err)
		assert.Equal(t, StateNotFound, result.State)
		assert.False(t, result.Authenticated())
		assert.Nil(t, result.Person)
	})

	t.Run("ActiveWellBeforeRenewalWindow", func(t *testing.T) {
		gateway, svc, session := setup(t)
		// 9 days in: 21 of 30 days remain, above the half-life threshold.
		svc.setClock(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

		result, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateActive, result.State)
		assert.True(t, result.Authenticated())
		assert.Equal(t, "person-states@example.com", result.Person.Key)
		assert.Equal(t, session.ExpiresAt, result.Session.ExpiresAt)
		assert.Zero(t, gateway.renewCalls)
	})

	t.Run("RenewedInsideWindow", func(t *testing.T) {
		gateway, svc, session := setup(t)
		// 13 days remain, under the 15-day threshold: expiry slides to
		// now + 30 days.
		at := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
		svc.setClock(at)

		result, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateActiveRenewed, result.State)
		assert.True(t, result.Authenticated())

		wantExpiry := time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantExpiry, result.Session.ExpiresAt)
		assert.Equal(t, wantExpiry, gateway.sessions[session.Token].ExpiresAt, "renewal must be written back")
		assert.Equal(t, 1, gateway.renewCalls)
	})

	t.Run("RenewalThresholdBoundary", func(t *testing.T) {
		gateway, svc, session := setup(t)
		// Exactly 15 of 30 days remain: the window is inclusive.
		svc.setClock(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))

		result, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateActiveRenewed, result.State)
		assert.Equal(t, 1, gateway.renewCalls)
	})

	t.Run("RenewalIsIdempotentWhileFresh", func(t *testing.T) {
		gateway, svc, session := setup(t)
		svc.setClock(time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC))

		first, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		require.Equal(t, StateActiveRenewed, first.State)

		// Immediately after renewing, the session is young again.
		second, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateActive, second.State)
		assert.Equal(t, 1, gateway.renewCalls)
	})

	t.Run("ExpiredIsInvalidatedNotRenewed", func(t *testing.T) {
		gateway, svc, session := setup(t)
		// A day past expiry. An expired token must never be extended.
		svc.setClock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

		result, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateExpired, result.State)
		assert.False(t, result.Authenticated())
		assert.Nil(t, result.Session)
		assert.Zero(t, gateway.renewCalls)
		assert.Equal(t, 1, gateway.invalidateCalls)
		assert.NotContains(t, gateway.sessions, session.Token)

		// The row is gone, so the same token now reads as unknown.
		again, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateNotFound, again.State)
	})

	t.Run("ExpiryBoundaryIsExclusive", func(t *testing.T) {
		gateway, svc, session := setup(t)
		// A session is expired the instant now == expiresAt.
		svc.setClock(session.ExpiresAt)

		result, err := svc.ValidateSessionToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, StateExpired, result.State)
		assert.Equal(t, 1, gateway.invalidateCalls)
	})

	t.Run("GatewayFailureIsNotAuthenticated", func(t *testing.T) {
		gateway, svc, session := setup(t)
		gateway.lookupErr = errors.New("connection reset")
		svc.setClock(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

		result, err := svc.ValidateSessionToken(context.Background(), session.Token)
		assert.Error(t, err)
		assert.False(t, result.Authenticated())
	})
}

func TestInvalidateSessionIdempotent(t *testing.T) {
	gateway := newFakeGateway()
	person := gateway.addPerson(t, "invalidate@example.com", "correct horse battery")
	svc := newTestService(gateway, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	session, err := svc.IssueSession(context.Background(), person.Key)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateSession(context.Background(), session.Token))
	assert.NotContains(t, gateway.sessions, session.Token)

	// Second invalidation of the same token is a no-op, not an error.
	assert.NoError(t, svc.InvalidateSession(context.Background(), session.Token))
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(newFakeGateway(), 0, -1)
	assert.Equal(t, 30*24*time.Hour, svc.sessionDuration)
	assert.Equal(t, 15*24*time.Hour, svc.renewalThreshold)

	svc = NewService(newFakeGateway(), 10*time.Hour, 0.25)
	assert.Equal(t, 10*time.Hour, svc.sessionDuration)
	assert.Equal(t, 150*time.Minute, svc.renewalThreshold)
}
