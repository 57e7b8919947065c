package domain

import (
	"strings"
	"time"
)

// Difficulty selects both the content tier shown to the reader and the
// question used for the quiz.
type Difficulty string

const (
	DifficultySimple   Difficulty = "SIMPLE"
	DifficultyMedium   Difficulty = "MEDIUM"
	DifficultyAdvanced Difficulty = "ADVANCED"
)

// ParseDifficulty converts a string to a Difficulty, defaulting to MEDIUM
// for empty or unknown values.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DifficultySimple):
		return DifficultySimple
	case string(DifficultyAdvanced):
		return DifficultyAdvanced
	default:
		return DifficultyMedium
	}
}

// IsValidDifficulty reports whether s names one of the three tiers exactly.
func IsValidDifficulty(s string) bool {
	switch Difficulty(s) {
	case DifficultySimple, DifficultyMedium, DifficultyAdvanced:
		return true
	}
	return false
}

// ProgressStatus is the lifecycle state of a (user, topic) pair. UNSEEN is
// implied by the absence of a progress record.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
	ProgressCompleted  ProgressStatus = "COMPLETED"
)

// Category represents a topic category. Immutable reference data.
type Category struct {
	ID           string
	Name         string
	Slug         string
	Icon         string
	Description  string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Topic is a unit of daily learning material with one content variant per
// difficulty tier.
type Topic struct {
	ID                string
	Title             string
	CategoryID        string
	Category          *Category
	ContentSimple     string
	ContentMedium     string
	ContentAdvanced   string
	EstimatedReadTime int // minutes
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContentFor returns the content variant matching the difficulty tier.
func (t *Topic) ContentFor(difficulty Difficulty) string {
	switch difficulty {
	case DifficultySimple:
		return t.ContentSimple
	case DifficultyAdvanced:
		return t.ContentAdvanced
	default:
		return t.ContentMedium
	}
}

// Validate validates the topic
func (t *Topic) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, NewMissingFieldError("title"))
	}
	if t.CategoryID == "" {
		errs = append(errs, NewMissingFieldError("category_id"))
	}
	if t.ContentSimple == "" {
		errs = append(errs, NewMissingFieldError("content_simple"))
	}
	if t.ContentMedium == "" {
		errs = append(errs, NewMissingFieldError("content_medium"))
	}
	if t.ContentAdvanced == "" {
		errs = append(errs, NewMissingFieldError("content_advanced"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Question is a four-option multiple choice question. The reference dataset
// holds exactly one question per (topic, difficulty) pair.
type Question struct {
	ID            string
	TopicID       string
	Difficulty    Difficulty
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string // "A".."D"
	Explanation   string
	IsActive      bool
	CreatedAt     time.Time
}

// DailySetTopic is one ordered entry of a daily set.
type DailySetTopic struct {
	TopicID      string
	DisplayOrder int
	Topic        *Topic
}

// DailyTopicSet is the group of exactly three topics assigned to a user for
// one calendar day. A (user, day) pair has at most one set; the store
// enforces this with a uniqueness constraint.
type DailyTopicSet struct {
	ID               string
	UserID           string
	Day              time.Time
	CompletedCount   int
	IsFullyCompleted bool
	Topics           []DailySetTopic
	CreatedAt        time.Time
}

// UserProgress tracks a topic's journey for one user, from first access
// through quiz completion. Never deleted; it is the historical record.
type UserProgress struct {
	ID               string
	UserID           string
	TopicID          string
	Status           ProgressStatus
	DifficultyChosen Difficulty // empty until the user picks a tier
	MarkedAsReadAt   *time.Time
	QuizCompleted    bool
	QuizScore        int
	QuizCompletedAt  *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// QuizAttempt is one row of the append-only answer log.
type QuizAttempt struct {
	ID             string
	UserID         string
	QuestionID     string
	TopicID        string
	SelectedOption string
	IsCorrect      bool
	AttemptNumber  int
	CreatedAt      time.Time
}

// Clock abstracts "now" so day-boundary behavior is testable without
// touching system time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Midnight truncates t to the start of its calendar day in t's location.
// Daily sets are keyed on this value.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
