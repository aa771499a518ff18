package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/google/uuid"
)

const personColumns = "key, email, password, username, is_paying, using_tagging, date_signed_up"

// CreatePerson creates a new person row. Returns ErrDuplicateEmail when the
// email is already registered.
func (s *Store) CreatePerson(ctx context.Context, email string, digest []byte, username *string) (*models.Person, error) {
	person := &models.Person{
		Key:          uuid.NewString(),
		Email:        email,
		Password:     digest,
		Username:     username,
		UsingTagging: true,
		DateSignedUp: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.bind(
		"INSERT INTO persons (key, email, password, username, is_paying, using_tagging, date_signed_up) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		person.Key, person.Email, person.Password, person.Username,
		person.IsPaying, person.UsingTagging, person.DateSignedUp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return person, nil
}

// GetPersonByEmail retrieves a person by their (normalized) email
func (s *Store) GetPersonByEmail(ctx context.Context, email string) (*models.Person, error) {
	row := s.db.QueryRowContext(ctx, s.bind(
		"SELECT "+personColumns+" FROM persons WHERE email = ?"), email)
	return scanPerson(row)
}

// GetPersonByKey retrieves a person by their key
func (s *Store) GetPersonByKey(ctx context.Context, key string) (*models.Person, error) {
	row := s.db.QueryRowContext(ctx, s.bind(
		"SELECT "+personColumns+" FROM persons WHERE key = ?"), key)
	return scanPerson(row)
}

// GetPasswordDigest returns the stored password digest for a person
func (s *Store) GetPasswordDigest(ctx context.Context, personKey string) ([]byte, error) {
	var digest []byte
	err := s.db.QueryRowContext(ctx, s.bind(
		"SELECT password FROM persons WHERE key = ?"), personKey).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return digest, nil
}

func scanPerson(row rowScanner) (*models.Person, error) {
	person := &models.Person{}
	err := row.Scan(
		&person.Key,
		&person.Email,
		&person.Password,
		&person.Username,
		&person.IsPaying,
		&person.UsingTagging,
		&person.DateSignedUp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}
