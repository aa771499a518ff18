package goals

import (
	"context"
	"strings"

	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/dayloop-io/dayloop/internal/tagging"
)

// Mappings returns the person's effective keyword mappings: the global
// table overlaid with their own rows, through the read cache.
func (s *Service) Mappings(ctx context.Context, personKey string) ([]tagging.Mapping, error) {
	cacheKey := "keyword-mappings:" + personKey

	if cached, ok := s.cache.Get(cacheKey); ok {
		if mappings, ok := cached.([]tagging.Mapping); ok {
			return mappings, nil
		}
	}

	personal, err := s.store.GetKeywordMappings(ctx, personKey)
	if err != nil {
		return nil, err
	}

	merged := tagging.Merge(personal)
	s.cache.Set(cacheKey, merged, mappingsTag(personKey))
	return merged, nil
}

// PersonalMappings returns only the person's own mapping rows.
func (s *Service) PersonalMappings(ctx context.Context, personKey string) ([]*models.KeywordMapping, error) {
	mappings, err := s.store.GetKeywordMappings(ctx, personKey)
	if err != nil {
		return nil, err
	}
	if mappings == nil {
		mappings = []*models.KeywordMapping{}
	}
	return mappings, nil
}

// AddMapping creates a personal bucket -> triggers mapping. A personal
// bucket with the same name as a global one overrides it.
func (s *Service) AddMapping(ctx context.Context, personKey, bucket string, triggers []string) (*models.KeywordMapping, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, &ValidationError{Field: "bucket", Message: "bucket name is required"}
	}

	cleaned := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		trigger = strings.TrimSpace(trigger)
		if trigger != "" {
			cleaned = append(cleaned, trigger)
		}
	}
	if len(cleaned) == 0 {
		return nil, &ValidationError{Field: "triggers", Message: "at least one trigger word is required"}
	}

	mapping, err := s.store.CreateKeywordMapping(ctx, personKey, bucket, cleaned)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(mappingsTag(personKey))
	return mapping, nil
}

// RemoveMapping deletes a personal mapping.
func (s *Service) RemoveMapping(ctx context.Context, personKey, mappingKey string) error {
	if err := s.store.DeleteKeywordMapping(ctx, mappingKey, personKey); err != nil {
		return err
	}
	s.cache.Invalidate(mappingsTag(personKey))
	return nil
}

// ExportData is the JSON document an account export uploads.
type ExportData struct {
	Person   *models.Person           `json:"person"`
	Goals    []*models.DayGoal        `json:"goals"`
	Mappings []*models.KeywordMapping `json:"keyword_mappings"`
}

// Export collects everything a person has stored.
func (s *Service) Export(ctx context.Context, person *models.Person) (*ExportData, error) {
	allGoals, err := s.store.GetAllDayGoals(ctx, person.Key)
	if err != nil {
		return nil, err
	}
	if allGoals == nil {
		allGoals = []*models.DayGoal{}
	}

	personal, err := s.PersonalMappings(ctx, person.Key)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Person:   person,
		Goals:    allGoals,
		Mappings: personal,
	}, nil
}
