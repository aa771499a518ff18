package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/lib/pq"
)

// CreateDayGoal inserts a new goal row. The key, timestamps and keywords
// must already be set by the caller.
func (s *Store) CreateDayGoal(ctx context.Context, goal *models.DayGoal) error {
	keywords, err := s.arrayValue(goal.Keywords)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.bind(
		"INSERT INTO day_goals (key, person_key, goal_date, text, sort, keywords, created_at, completed_at, archived_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		goal.Key, goal.PersonKey, goal.Date, goal.Text, goal.Sort, keywords,
		goal.CreatedAt, goal.CompletedAt, goal.ArchivedAt,
	)
	return err
}

const dayGoalColumns = "key, person_key, goal_date, text, sort, keywords, created_at, completed_at, archived_at"

// GetDayGoals lists a person's goals for one day, unarchived only,
// ordered by sort then creation time.
func (s *Store) GetDayGoals(ctx context.Context, personKey string, date time.Time) ([]*models.DayGoal, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(
		"SELECT "+dayGoalColumns+" FROM day_goals WHERE person_key = ? AND goal_date = ? AND archived_at IS NULL ORDER BY sort ASC, created_at ASC"),
		personKey, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.DayGoal
	for rows.Next() {
		goal, err := s.scanDayGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// GetAllDayGoals lists every goal a person has, archived included.
// Used by the account export.
func (s *Store) GetAllDayGoals(ctx context.Context, personKey string) ([]*models.DayGoal, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(
		"SELECT "+dayGoalColumns+" FROM day_goals WHERE person_key = ? ORDER BY goal_date ASC, sort ASC, created_at ASC"),
		personKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.DayGoal
	for rows.Next() {
		goal, err := s.scanDayGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// GetDayGoalByKey retrieves a single goal
func (s *Store) GetDayGoalByKey(ctx context.Context, key string) (*models.DayGoal, error) {
	row := s.db.QueryRowContext(ctx, s.bind(
		"SELECT "+dayGoalColumns+" FROM day_goals WHERE key = ?"), key)
	return s.scanDayGoal(row)
}

// UpdateDayGoal writes back a goal's mutable fields
func (s *Store) UpdateDayGoal(ctx context.Context, goal *models.DayGoal) error {
	keywords, err := s.arrayValue(goal.Keywords)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, s.bind(
		"UPDATE day_goals SET text = ?, sort = ?, keywords = ?, completed_at = ?, archived_at = ? WHERE key = ? AND person_key = ?"),
		goal.Text, goal.Sort, keywords, goal.CompletedAt, goal.ArchivedAt,
		goal.Key, goal.PersonKey,
	)
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

// DeleteDayGoal removes a goal owned by the given person
func (s *Store) DeleteDayGoal(ctx context.Context, key, personKey string) error {
	result, err := s.db.ExecContext(ctx, s.bind(
		"DELETE FROM day_goals WHERE key = ? AND person_key = ?"), key, personKey)
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

func (s *Store) scanDayGoal(row rowScanner) (*models.DayGoal, error) {
	goal := &models.DayGoal{}
	var err error

	if s.dbType == "postgres" {
		err = row.Scan(
			&goal.Key, &goal.PersonKey, &goal.Date, &goal.Text, &goal.Sort,
			pq.Array(&goal.Keywords), &goal.CreatedAt, &goal.CompletedAt, &goal.ArchivedAt,
		)
	} else {
		var raw string
		err = row.Scan(
			&goal.Key, &goal.PersonKey, &goal.Date, &goal.Text, &goal.Sort,
			&raw, &goal.CreatedAt, &goal.CompletedAt, &goal.ArchivedAt,
		)
		if err == nil {
			goal.Keywords, err = decodeJSONArray(raw)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if goal.Keywords == nil {
		goal.Keywords = []string{}
	}
	return goal, nil
}
