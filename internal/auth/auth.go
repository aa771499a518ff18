package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/dayloop-io/dayloop/internal/store"
)

// SignUp registers a new person and opens their first session.
// Returns FieldErrors for malformed input and ErrEmailTaken when the
// address is already registered.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*models.Person, *models.Session, error) {
	if err := input.Validate(); err != nil {
		return nil, nil, err
	}

	digest, err := HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	person, err := s.gateway.CreatePerson(ctx, input.Email, digest, input.Username)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create person: %w", err)
	}

	session, err := s.IssueSession(ctx, person.Key)
	if err != nil {
		return nil, nil, err
	}

	return person, session, nil
}

// SignIn verifies credentials and opens a new session. Unknown email and
// wrong password produce the same ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, input SignInInput) (*models.Person, *models.Session, error) {
	if err := input.Validate(); err != nil {
		return nil, nil, err
	}

	person, err := s.gateway.GetPersonByEmail(ctx, input.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("person lookup: %w", err)
	}

	digest, err := s.gateway.GetPasswordDigest(ctx, person.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("digest lookup: %w", err)
	}

	if !VerifyPassword(input.Password, digest) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.IssueSession(ctx, person.Key)
	if err != nil {
		return nil, nil, err
	}

	return person, session, nil
}

// SignOut invalidates the session behind a presented token. Safe to call
// with an empty, unknown or already-invalidated token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.gateway.InvalidateSession(ctx, token)
}
