// Package goals implements the day-goal feature: per-day CRUD, keyword
// auto-tagging on creation, and tag-based invalidation of cached reads.
package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/dayloop-io/dayloop/internal/store"
	"github.com/dayloop-io/dayloop/internal/tagging"
	"github.com/google/uuid"
)

const maxGoalTextLength = 2000

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReadCache is the tag cache the list reads go through. cache.TagCache and
// cache.NoOp both satisfy it.
type ReadCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, tags ...string)
	Invalidate(tag string)
}

// Store is the persistence this service needs. *store.Store satisfies it.
type Store interface {
	CreateDayGoal(ctx context.Context, goal *models.DayGoal) error
	GetDayGoals(ctx context.Context, personKey string, date time.Time) ([]*models.DayGoal, error)
	GetAllDayGoals(ctx context.Context, personKey string) ([]*models.DayGoal, error)
	GetDayGoalByKey(ctx context.Context, key string) (*models.DayGoal, error)
	UpdateDayGoal(ctx context.Context, goal *models.DayGoal) error
	DeleteDayGoal(ctx context.Context, key, personKey string) error
	CreateKeywordMapping(ctx context.Context, personKey, bucket string, triggers []string) (*models.KeywordMapping, error)
	GetKeywordMappings(ctx context.Context, personKey string) ([]*models.KeywordMapping, error)
	DeleteKeywordMapping(ctx context.Context, key, personKey string) error
}

// Service wires the goal store, the read cache and the tagging rules.
type Service struct {
	store Store
	cache ReadCache

	now func() time.Time
}

// NewService creates a goal service.
func NewService(st Store, c ReadCache) *Service {
	return &Service{store: st, cache: c, now: time.Now}
}

// NormalizeDate truncates a timestamp to its calendar day in UTC.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayTag(personKey string, date time.Time) string {
	return "day-goals-" + personKey + "-" + date.Format("2006-01-02")
}

func personTag(personKey string) string {
	return "day-goals-" + personKey
}

func mappingsTag(personKey string) string {
	return "keyword-mappings-" + personKey
}

// CreateGoalInput is what a caller supplies to create a goal.
type CreateGoalInput struct {
	Date time.Time
	Text string
	Sort int
}

// Create stores a new goal for the person's day. When the person has
// tagging enabled, the goal text is matched against their keyword mappings
// and the detected buckets are stored with the goal.
func (s *Service) Create(ctx context.Context, person *models.Person, input CreateGoalInput) (*models.DayGoal, error) {
	if input.Text == "" {
		return nil, &ValidationError{Field: "text", Message: "goal text is required"}
	}
	if len(input.Text) > maxGoalTextLength {
		return nil, &ValidationError{Field: "text", Message: fmt.Sprintf("must be at most %d characters", maxGoalTextLength)}
	}
	if input.Sort < 0 {
		return nil, &ValidationError{Field: "sort", Message: "must not be negative"}
	}
	if input.Date.IsZero() {
		return nil, &ValidationError{Field: "date", Message: "date is required"}
	}

	keywords := []string{}
	if person.UsingTagging {
		mappings, err := s.Mappings(ctx, person.Key)
		if err != nil {
			return nil, err
		}
		keywords = tagging.Detect(input.Text, mappings)
	}

	goal := &models.DayGoal{
		Key:       uuid.NewString(),
		PersonKey: person.Key,
		Date:      NormalizeDate(input.Date),
		Text:      input.Text,
		Sort:      input.Sort,
		Keywords:  keywords,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreateDayGoal(ctx, goal); err != nil {
		return nil, err
	}

	s.cache.Invalidate(dayTag(person.Key, goal.Date))
	s.cache.Invalidate(personTag(person.Key))

	return goal, nil
}

// ListDate returns the person's unarchived goals for a calendar day,
// through the read cache.
func (s *Service) ListDate(ctx context.Context, personKey string, date time.Time) ([]*models.DayGoal, error) {
	date = NormalizeDate(date)
	cacheKey := "day-goals:" + personKey + ":" + date.Format("2006-01-02")

	if cached, ok := s.cache.Get(cacheKey); ok {
		if goals, ok := cached.([]*models.DayGoal); ok {
			return goals, nil
		}
	}

	goals, err := s.store.GetDayGoals(ctx, personKey, date)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []*models.DayGoal{}
	}

	s.cache.Set(cacheKey, goals, dayTag(personKey, date), personTag(personKey))
	return goals, nil
}

// ListToday returns the person's goals for the current day.
func (s *Service) ListToday(ctx context.Context, personKey string) ([]*models.DayGoal, error) {
	return s.ListDate(ctx, personKey, s.now())
}

// UpdateGoalInput carries the optional fields of a goal update; nil fields
// are left unchanged.
type UpdateGoalInput struct {
	Text      *string
	Sort      *int
	Completed *bool
	Archived  *bool
}

// Update applies a partial update to a goal the person owns. Returns
// store.ErrNotFound when the goal does not exist or belongs to someone
// else.
func (s *Service) Update(ctx context.Context, personKey, goalKey string, input UpdateGoalInput) (*models.DayGoal, error) {
	goal, err := s.store.GetDayGoalByKey(ctx, goalKey)
	if err != nil {
		return nil, err
	}
	if goal.PersonKey != personKey {
		return nil, store.ErrNotFound
	}

	if input.Text != nil {
		if *input.Text == "" {
			return nil, &ValidationError{Field: "text", Message: "goal text is required"}
		}
		if len(*input.Text) > maxGoalTextLength {
			return nil, &ValidationError{Field: "text", Message: fmt.Sprintf("must be at most %d characters", maxGoalTextLength)}
		}
		goal.Text = *input.Text
	}
	if input.Sort != nil {
		if *input.Sort < 0 {
			return nil, &ValidationError{Field: "sort", Message: "must not be negative"}
		}
		goal.Sort = *input.Sort
	}
	if input.Completed != nil {
		if *input.Completed {
			now := s.now().UTC()
			goal.CompletedAt = &now
		} else {
			goal.CompletedAt = nil
		}
	}
	if input.Archived != nil {
		if *input.Archived {
			now := s.now().UTC()
			goal.ArchivedAt = &now
		} else {
			goal.ArchivedAt = nil
		}
	}

	if err := s.store.UpdateDayGoal(ctx, goal); err != nil {
		return nil, err
	}

	s.cache.Invalidate(dayTag(personKey, goal.Date))
	s.cache.Invalidate(personTag(personKey))

	return goal, nil
}

// Delete removes a goal the person owns.
func (s *Service) Delete(ctx context.Context, personKey, goalKey string) error {
	goal, err := s.store.GetDayGoalByKey(ctx, goalKey)
	if err != nil {
		return err
	}
	if goal.PersonKey != personKey {
		return store.ErrNotFound
	}

	if err := s.store.DeleteDayGoal(ctx, goalKey, personKey); err != nil {
		return err
	}

	s.cache.Invalidate(dayTag(personKey, goal.Date))
	s.cache.Invalidate(personTag(personKey))

	return nil
}
