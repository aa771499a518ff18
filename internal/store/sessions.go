package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
)

// CreateSession persists a new session row. The insert is a single
// statement: either the row exists with all fields set, or nothing does.
func (s *Store) CreateSession(ctx context.Context, token, personKey string, createdAt, expiresAt time.Time) (*models.Session, error) {
	session := &models.Session{
		Token:     token,
		PersonKey: personKey,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}

	_, err := s.db.ExecContext(ctx, s.bind(
		"INSERT INTO sessions (token, person_key, created_at, expires_at) VALUES (?, ?, ?, ?)"),
		session.Token, session.PersonKey, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetSessionWithPerson looks up a session by token joined with its owning
// person. Returns ErrNotFound when no such session exists.
func (s *Store) GetSessionWithPerson(ctx context.Context, token string) (*models.Session, *models.Person, error) {
	session := &models.Session{}
	person := &models.Person{}

	err := s.db.QueryRowContext(ctx, s.bind(`
		SELECT s.token, s.person_key, s.created_at, s.expires_at,
			p.key, p.email, p.password, p.username, p.is_paying, p.using_tagging, p.date_signed_up
		FROM sessions s
		JOIN persons p ON s.person_key = p.key
		WHERE s.token = ?`), token,
	).Scan(
		&session.Token, &session.PersonKey, &session.CreatedAt, &session.ExpiresAt,
		&person.Key, &person.Email, &person.Password, &person.Username,
		&person.IsPaying, &person.UsingTagging, &person.DateSignedUp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return session, person, nil
}

// UpdateSessionExpiry moves a session's expiration forward
func (s *Store) UpdateSessionExpiry(ctx context.Context, token string, newExpiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, s.bind(
		"UPDATE sessions SET expires_at = ? WHERE token = ?"), newExpiresAt, token)
	return err
}

// InvalidateSession deletes a session row. Idempotent: deleting a session
// that is already gone is not an error.
func (s *Store) InvalidateSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, s.bind(
		"DELETE FROM sessions WHERE token = ?"), token)
	return err
}

// DeleteExpiredSessions removes all sessions that have passed their
// expiration time. Used by the periodic sweep; validation also cleans up
// expired sessions inline as it finds them.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := s.db.ExecContext(ctx, s.bind(
		"DELETE FROM sessions WHERE expires_at < ?"), now)
	return err
}
