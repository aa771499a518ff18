// Package tagging detects which buckets a goal's text belongs to by
// matching trigger words. It is plain substring matching on the lowercased
// text: no stemming, no word boundaries.
package tagging

import (
	"strings"

	"github.com/dayloop-io/dayloop/internal/models"
)

// Mapping associates a bucket name with the trigger words that select it.
type Mapping struct {
	Bucket   string   `json:"bucket"`
	Triggers []string `json:"triggers"`
}

// GlobalMappings are the built-in buckets every person gets.
var GlobalMappings = []Mapping{
	{
		Bucket:   "fitness",
		Triggers: []string{"workout", "gym", "exercise", "run", "walk", "yoga", "stretch", "cardio", "lift", "weights"},
	},
	{
		Bucket:   "work",
		Triggers: []string{"meeting", "project", "email", "call", "presentation", "deadline", "task", "report", "client"},
	},
	{
		Bucket:   "family",
		Triggers: []string{"mom", "dad", "kids", "children", "spouse", "family", "dinner", "call home", "wife", "husband"},
	},
	{
		Bucket:   "creative",
		Triggers: []string{"write", "draw", "paint", "music", "photo", "design", "create", "art", "craft", "journal"},
	},
	{
		Bucket:   "social",
		Triggers: []string{"friend", "coffee", "lunch", "party", "event", "network", "community", "volunteer"},
	},
	{
		Bucket:   "faith",
		Triggers: []string{"bible", "pray", "god", "christ", "jesus", "church"},
	},
}

// Merge overlays a person's own mappings onto the global table. A personal
// mapping whose bucket name matches a global one replaces it entirely.
func Merge(personal []*models.KeywordMapping) []Mapping {
	merged := make([]Mapping, 0, len(GlobalMappings)+len(personal))
	overridden := make(map[string]bool, len(personal))
	for _, m := range personal {
		overridden[m.Bucket] = true
	}

	for _, m := range GlobalMappings {
		if !overridden[m.Bucket] {
			merged = append(merged, m)
		}
	}
	for _, m := range personal {
		merged = append(merged, Mapping{Bucket: m.Bucket, Triggers: m.Triggers})
	}
	return merged
}

// Detect returns the bucket names whose triggers occur in text, in mapping
// order, each bucket at most once.
func Detect(text string, mappings []Mapping) []string {
	lowered := strings.ToLower(text)

	buckets := []string{}
	seen := make(map[string]bool)
	for _, mapping := range mappings {
		if seen[mapping.Bucket] {
			continue
		}
		for _, trigger := range mapping.Triggers {
			if trigger == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(trigger)) {
				buckets = append(buckets, mapping.Bucket)
				seen[mapping.Bucket] = true
				break
			}
		}
	}
	return buckets
}
