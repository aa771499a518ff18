package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/dayloop-io/dayloop/internal/store"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a
	// wrong password alike, so sign-in failures reveal nothing about
	// which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned by SignUp when the email is already
	// registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrAuthRequired is returned by RequirePerson when no valid session
	// is attached to the request.
	ErrAuthRequired = errors.New("authentication required")
)

// Gateway is the persistence contract the session core depends on.
// *store.Store satisfies it.
type Gateway interface {
	CreatePerson(ctx context.Context, email string, digest []byte, username *string) (*models.Person, error)
	GetPersonByEmail(ctx context.Context, email string) (*models.Person, error)
	GetPasswordDigest(ctx context.Context, personKey string) ([]byte, error)
	CreateSession(ctx context.Context, token, personKey string, createdAt, expiresAt time.Time) (*models.Session, error)
	GetSessionWithPerson(ctx context.Context, token string) (*models.Session, *models.Person, error)
	UpdateSessionExpiry(ctx context.Context, token string, newExpiresAt time.Time) error
	InvalidateSession(ctx context.Context, token string) error
}

// SessionState is the outcome of validating a presented token.
type SessionState int

const (
	StateNoToken SessionState = iota
	StateNotFound
	StateExpired
	StateActive
	StateActiveRenewed
)

func (s SessionState) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateNotFound:
		return "not_found"
	case StateExpired:
		return "expired"
	case StateActive:
		return "active"
	case StateActiveRenewed:
		return "active_renewed"
	}
	return "unknown"
}

// ValidationResult is the tagged outcome of a validation call. Session and
// Person are non-nil exactly when Authenticated() is true.
type ValidationResult struct {
	State   SessionState
	Session *models.Session
	Person  *models.Person
}

// Authenticated reports whether the result carries a usable identity.
func (r ValidationResult) Authenticated() bool {
	return r.State == StateActive || r.State == StateActiveRenewed
}

func anonymous(state SessionState) ValidationResult {
	return ValidationResult{State: state}
}

// Service implements the session lifecycle: issuance, validation with
// sliding renewal, and invalidation.
type Service struct {
	gateway Gateway

	sessionDuration  time.Duration
	renewalThreshold time.Duration // window before expiry in which reads renew

	// now is swappable so expiry and renewal windows can be tested
	// without sleeping.
	now func() time.Time
}

// NewService creates a session service. renewalFraction is the portion of
// the lifetime that must have elapsed before a validation extends the
// session; 0.5 renews once half the lifetime is used.
func NewService(gateway Gateway, sessionDuration time.Duration, renewalFraction float64) *Service {
	if sessionDuration <= 0 {
		sessionDuration = 30 * 24 * time.Hour
	}
	if renewalFraction <= 0 || renewalFraction >= 1 {
		renewalFraction = 0.5
	}
	return &Service{
		gateway:          gateway,
		sessionDuration:  sessionDuration,
		renewalThreshold: time.Duration(renewalFraction * float64(sessionDuration)),
		now:              time.Now,
	}
}

// SessionDuration returns the configured session lifetime.
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// IssueSession generates an unguessable token, computes its expiry and
// persists the session row.
func (s *Service) IssueSession(ctx context.Context, personKey string) (*models.Session, error) {
	token := uuid.NewString()
	now := s.now().UTC()

	session, err := s.gateway.CreateSession(ctx, token, personKey, now, now.Add(s.sessionDuration))
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return session, nil
}

// ValidateSessionToken resolves a presented bearer token to an identity.
//
// An expired session is invalidated on the spot and never renewed. A live
// session past the renewal threshold gets a fresh expiry written back;
// callers must re-bind the client credential when State is
// StateActiveRenewed so the cookie expiry tracks the row. Gateway failures
// surface as errors and must be treated as "no session".
func (s *Service) ValidateSessionToken(ctx context.Context, token string) (ValidationResult, error) {
	if token == "" {
		return anonymous(StateNoToken), nil
	}

	session, person, err := s.gateway.GetSessionWithPerson(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return anonymous(StateNotFound), nil
	}
	if err != nil {
		return anonymous(StateNotFound), fmt.Errorf("session lookup: %w", err)
	}

	now := s.now()

	if !now.Before(session.ExpiresAt) {
		if err := s.gateway.InvalidateSession(ctx, token); err != nil {
			return anonymous(StateExpired), fmt.Errorf("invalidate expired session: %w", err)
		}
		return anonymous(StateExpired), nil
	}

	if !now.Before(session.ExpiresAt.Add(-s.renewalThreshold)) {
		newExpiresAt := now.Add(s.sessionDuration).UTC()
		if err := s.gateway.UpdateSessionExpiry(ctx, token, newExpiresAt); err != nil {
			return anonymous(StateNotFound), fmt.Errorf("renew session: %w", err)
		}
		session.ExpiresAt = newExpiresAt
		return ValidationResult{State: StateActiveRenewed, Session: session, Person: person}, nil
	}

	return ValidationResult{State: StateActive, Session: session, Person: person}, nil
}

// InvalidateSession deletes the session row for a token. Idempotent.
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	return s.gateway.InvalidateSession(ctx, token)
}
