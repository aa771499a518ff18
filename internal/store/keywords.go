package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CreateKeywordMapping adds a personal bucket -> triggers mapping.
// Returns ErrDuplicateBucket when the person already has a mapping with
// the same bucket name.
func (s *Store) CreateKeywordMapping(ctx context.Context, personKey, bucket string, triggers []string) (*models.KeywordMapping, error) {
	mapping := &models.KeywordMapping{
		Key:       uuid.NewString(),
		PersonKey: personKey,
		Bucket:    bucket,
		Triggers:  triggers,
	}

	vals, err := s.arrayValue(triggers)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, s.bind(
		"INSERT INTO keyword_mappings (key, person_key, bucket, triggers) VALUES (?, ?, ?, ?)"),
		mapping.Key, mapping.PersonKey, mapping.Bucket, vals,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBucket
		}
		return nil, err
	}

	return mapping, nil
}

// GetKeywordMappings lists a person's mappings ordered by bucket name
func (s *Store) GetKeywordMappings(ctx context.Context, personKey string) ([]*models.KeywordMapping, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(
		"SELECT key, person_key, bucket, triggers FROM keyword_mappings WHERE person_key = ? ORDER BY bucket ASC"),
		personKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*models.KeywordMapping
	for rows.Next() {
		mapping, err := s.scanKeywordMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}

// DeleteKeywordMapping removes a mapping owned by the given person
func (s *Store) DeleteKeywordMapping(ctx context.Context, key, personKey string) error {
	result, err := s.db.ExecContext(ctx, s.bind(
		"DELETE FROM keyword_mappings WHERE key = ? AND person_key = ?"), key, personKey)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanKeywordMapping(row rowScanner) (*models.KeywordMapping, error) {
	mapping := &models.KeywordMapping{}
	var err error

	if s.dbType == "postgres" {
		err = row.Scan(&mapping.Key, &mapping.PersonKey, &mapping.Bucket, pq.Array(&mapping.Triggers))
	} else {
		var raw string
		err = row.Scan(&mapping.Key, &mapping.PersonKey, &mapping.Bucket, &raw)
		if err == nil {
			mapping.Triggers, err = decodeJSONArray(raw)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapping, nil
}
