package models

import "time"

// Person represents an account holder.
type Person struct {
	Key          string    `json:"key" db:"key"`
	Email        string    `json:"email" db:"email"`
	Password     []byte    `json:"-" db:"password"` // bcrypt digest, never sent to clients
	Username     *string   `json:"username" db:"username"`
	IsPaying     bool      `json:"is_paying" db:"is_paying"`
	UsingTagging bool      `json:"using_tagging" db:"using_tagging"`
	DateSignedUp time.Time `json:"date_signed_up" db:"date_signed_up"`
}

// Session is a server-issued bearer credential tying a client to a person.
// The token itself is the primary key; holding it is holding the session.
type Session struct {
	Token     string    `json:"token" db:"token"`
	PersonKey string    `json:"person_key" db:"person_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// DayGoal is a single goal entry for one person on one calendar day.
type DayGoal struct {
	Key         string     `json:"key" db:"key"`
	PersonKey   string     `json:"person_key" db:"person_key"`
	Date        time.Time  `json:"date" db:"goal_date"`
	Text        string     `json:"text" db:"text"`
	Sort        int        `json:"sort" db:"sort"`
	Keywords    []string   `json:"keywords" db:"keywords"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	ArchivedAt  *time.Time `json:"archived_at" db:"archived_at"`
}

// IsCompleted reports whether the goal has been marked done.
func (g *DayGoal) IsCompleted() bool {
	return g.CompletedAt != nil
}

// IsArchived reports whether the goal has been archived off the day view.
func (g *DayGoal) IsArchived() bool {
	return g.ArchivedAt != nil
}

// KeywordMapping maps trigger words to a bucket name for one person.
// Global mappings (shared by everyone) have no row here; see the tagging
// package for the built-in table.
type KeywordMapping struct {
	Key       string   `json:"key" db:"key"`
	PersonKey string   `json:"person_key" db:"person_key"`
	Bucket    string   `json:"bucket" db:"bucket"`
	Triggers  []string `json:"triggers" db:"triggers"`
}
