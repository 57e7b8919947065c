// Package models holds the database row structs used by the sqlx
// repositories, plus the converters between rows and domain objects.
package models

import (
	"database/sql"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/util"
)

// Category row of the categories table.
type Category struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Slug         string    `db:"slug"`
	Icon         string    `db:"icon"`
	Description  string    `db:"description"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Topic row of the topics table. The cat_* columns are filled only by
// queries that join the category in.
type Topic struct {
	ID                string    `db:"id"`
	Title             string    `db:"title"`
	CategoryID        string    `db:"category_id"`
	ContentSimple     string    `db:"content_simple"`
	ContentMedium     string    `db:"content_medium"`
	ContentAdvanced   string    `db:"content_advanced"`
	EstimatedReadTime int       `db:"estimated_read_time"`
	IsActive          bool      `db:"is_active"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`

	CatName         sql.NullString `db:"cat_name"`
	CatSlug         sql.NullString `db:"cat_slug"`
	CatIcon         sql.NullString `db:"cat_icon"`
	CatDisplayOrder sql.NullInt64  `db:"cat_display_order"`
}

// Question row of the questions table.
type Question struct {
	ID            string         `db:"id"`
	TopicID       string         `db:"topic_id"`
	Difficulty    string         `db:"difficulty"`
	QuestionText  string         `db:"question_text"`
	OptionA       string         `db:"option_a"`
	OptionB       string         `db:"option_b"`
	OptionC       string         `db:"option_c"`
	OptionD       string         `db:"option_d"`
	CorrectOption string         `db:"correct_option"`
	Explanation   sql.NullString `db:"explanation"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
}

// DailyTopicSet row of the daily_topic_sets table.
type DailyTopicSet struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	Day              time.Time `db:"day"`
	CompletedCount   int       `db:"completed_count"`
	IsFullyCompleted bool      `db:"is_fully_completed"`
	CreatedAt        time.Time `db:"created_at"`
}

// DailySetEntry is one topic of a daily set joined with its topic and
// category columns, ordered by display_order.
type DailySetEntry struct {
	SetID        string `db:"set_id"`
	TopicID      string `db:"topic_id"`
	DisplayOrder int    `db:"display_order"`
	Topic
}

// UserProgress row of the user_progress table.
type UserProgress struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	TopicID          string         `db:"topic_id"`
	Status           string         `db:"status"`
	DifficultyChosen sql.NullString `db:"difficulty_chosen"`
	MarkedAsReadAt   sql.NullTime   `db:"marked_as_read_at"`
	QuizCompleted    bool           `db:"quiz_completed"`
	QuizScore        int            `db:"quiz_score"`
	QuizCompletedAt  sql.NullTime   `db:"quiz_completed_at"`
	CompletedAt      sql.NullTime   `db:"completed_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// QuizAttempt row of the quiz_attempts table.
type QuizAttempt struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	QuestionID     string    `db:"question_id"`
	TopicID        string    `db:"topic_id"`
	SelectedOption string    `db:"selected_option"`
	IsCorrect      bool      `db:"is_correct"`
	AttemptNumber  int       `db:"attempt_number"`
	CreatedAt      time.Time `db:"created_at"`
}

// User row of the users table.
type User struct {
	ID                       string         `db:"id"`
	Email                    string         `db:"email"`
	PasswordHash             string         `db:"password_hash"`
	IsEmailVerified          bool           `db:"is_email_verified"`
	VerificationToken        sql.NullString `db:"verification_token"`
	VerificationTokenExpiry  sql.NullTime   `db:"verification_token_expiry"`
	PasswordResetToken       sql.NullString `db:"password_reset_token"`
	PasswordResetTokenExpiry sql.NullTime   `db:"password_reset_token_expiry"`
	TotalTopicsCompleted     int            `db:"total_topics_completed"`
	CurrentStreak            int            `db:"current_streak"`
	LongestStreak            int            `db:"longest_streak"`
	LastActivityDate         sql.NullTime   `db:"last_activity_date"`
	CreatedAt                time.Time      `db:"created_at"`
	UpdatedAt                time.Time      `db:"updated_at"`
	DeletedAt                sql.NullTime   `db:"deleted_at"`
}

// ToDomainCategory converts a category row to the domain object.
func ToDomainCategory(m *Category) *domain.Category {
	return &domain.Category{
		ID:           m.ID,
		Name:         m.Name,
		Slug:         m.Slug,
		Icon:         m.Icon,
		Description:  m.Description,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToDomainTopic converts a topic row to the domain object. When the row was
// produced by a category join, the category is attached.
func ToDomainTopic(m *Topic) *domain.Topic {
	t := &domain.Topic{
		ID:                m.ID,
		Title:             m.Title,
		CategoryID:        m.CategoryID,
		ContentSimple:     m.ContentSimple,
		ContentMedium:     m.ContentMedium,
		ContentAdvanced:   m.ContentAdvanced,
		EstimatedReadTime: m.EstimatedReadTime,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.CatName.Valid {
		t.Category = &domain.Category{
			ID:           m.CategoryID,
			Name:         m.CatName.String,
			Slug:         m.CatSlug.String,
			Icon:         m.CatIcon.String,
			DisplayOrder: int(m.CatDisplayOrder.Int64),
		}
	}
	return t
}

// ToDomainQuestion converts a question row to the domain object.
func ToDomainQuestion(m *Question) *domain.Question {
	return &domain.Question{
		ID:            m.ID,
		TopicID:       m.TopicID,
		Difficulty:    domain.Difficulty(m.Difficulty),
		QuestionText:  m.QuestionText,
		OptionA:       m.OptionA,
		OptionB:       m.OptionB,
		OptionC:       m.OptionC,
		OptionD:       m.OptionD,
		CorrectOption: m.CorrectOption,
		Explanation:   m.Explanation.String,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainProgress converts a progress row to the domain object.
func ToDomainProgress(m *UserProgress) *domain.UserProgress {
	return &domain.UserProgress{
		ID:               m.ID,
		UserID:           m.UserID,
		TopicID:          m.TopicID,
		Status:           domain.ProgressStatus(m.Status),
		DifficultyChosen: domain.Difficulty(m.DifficultyChosen.String),
		MarkedAsReadAt:   util.NullTimeToTimePtr(m.MarkedAsReadAt),
		QuizCompleted:    m.QuizCompleted,
		QuizScore:        m.QuizScore,
		QuizCompletedAt:  util.NullTimeToTimePtr(m.QuizCompletedAt),
		CompletedAt:      util.NullTimeToTimePtr(m.CompletedAt),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ToDomainUser converts a user row to the domain object.
func ToDomainUser(m *User) *domain.User {
	return &domain.User{
		ID:                       m.ID,
		Email:                    m.Email,
		PasswordHash:             m.PasswordHash,
		IsEmailVerified:          m.IsEmailVerified,
		VerificationToken:        m.VerificationToken.String,
		VerificationTokenExpiry:  util.NullTimeToTimePtr(m.VerificationTokenExpiry),
		PasswordResetToken:       m.PasswordResetToken.String,
		PasswordResetTokenExpiry: util.NullTimeToTimePtr(m.PasswordResetTokenExpiry),
		TotalTopicsCompleted:     m.TotalTopicsCompleted,
		CurrentStreak:            m.CurrentStreak,
		LongestStreak:            m.LongestStreak,
		LastActivityDate:         util.NullTimeToTimePtr(m.LastActivityDate),
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
		DeletedAt:                util.NullTimeToTimePtr(m.DeletedAt),
	}
}

// FromDomainUser converts a domain user to its row representation.
func FromDomainUser(u *domain.User) *User {
	return &User{
		ID:                       u.ID,
		Email:                    u.Email,
		PasswordHash:             u.PasswordHash,
		IsEmailVerified:          u.IsEmailVerified,
		VerificationToken:        util.StringToNullString(u.VerificationToken),
		VerificationTokenExpiry:  util.TimePtrToNullTime(u.VerificationTokenExpiry),
		PasswordResetToken:       util.StringToNullString(u.PasswordResetToken),
		PasswordResetTokenExpiry: util.TimePtrToNullTime(u.PasswordResetTokenExpiry),
		TotalTopicsCompleted:     u.TotalTopicsCompleted,
		CurrentStreak:            u.CurrentStreak,
		LongestStreak:            u.LongestStreak,
		LastActivityDate:         util.TimePtrToNullTime(u.LastActivityDate),
		CreatedAt:                u.CreatedAt,
		UpdatedAt:                u.UpdatedAt,
	}
}
