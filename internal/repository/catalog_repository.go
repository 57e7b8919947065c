package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/repository/models"
	"daily-spark/internal/util"

	"github.com/jmoiron/sqlx"
)

const topicColumns = `t.id, t.title, t.category_id, t.content_simple, t.content_medium,
	t.content_advanced, t.estimated_read_time, t.is_active, t.created_at, t.updated_at,
	c.name AS cat_name, c.slug AS cat_slug, c.icon AS cat_icon, c.display_order AS cat_display_order`

// CatalogDatabaseAdapter implements domain.CatalogRepository using sqlx.
type CatalogDatabaseAdapter struct {
	db *sqlx.DB
}

// NewCatalogDatabaseAdapter creates a new instance of CatalogDatabaseAdapter.
func NewCatalogDatabaseAdapter(db *sqlx.DB) domain.CatalogRepository {
	return &CatalogDatabaseAdapter{db: db}
}

// GetCategories returns all categories ordered for display.
func (a *CatalogDatabaseAdapter) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	executor := GetExecutor(ctx, a.db)

	var rows []models.Category
	query := `SELECT id, name, slug, icon, description, display_order, created_at, updated_at
		FROM categories
		ORDER BY display_order, name`
	if err := executor.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	categories := make([]*domain.Category, len(rows))
	for i := range rows {
		categories[i] = models.ToDomainCategory(&rows[i])
	}
	return categories, nil
}

// GetTopicByID returns one topic with its category preloaded, or nil when
// no such topic exists.
func (a *CatalogDatabaseAdapter) GetTopicByID(ctx context.Context, topicID string) (*domain.Topic, error) {
	executor := GetExecutor(ctx, a.db)

	var row models.Topic
	query := `SELECT ` + topicColumns + `
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		WHERE t.id = $1`
	err := executor.GetContext(ctx, &row, query, topicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic %s: %w", topicID, err)
	}
	return models.ToDomainTopic(&row), nil
}

// GetAllTopics returns every topic, active or not, with categories preloaded.
func (a *CatalogDatabaseAdapter) GetAllTopics(ctx context.Context) ([]*domain.Topic, error) {
	query := `SELECT ` + topicColumns + `
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		ORDER BY c.display_order, t.title`
	return a.selectTopics(ctx, query)
}

// GetActiveTopics returns every active topic in stable order.
func (a *CatalogDatabaseAdapter) GetActiveTopics(ctx context.Context) ([]*domain.Topic, error) {
	query := `SELECT ` + topicColumns + `
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		WHERE t.is_active = TRUE
		ORDER BY t.id`
	return a.selectTopics(ctx, query)
}

// GetActiveTopicsByCategories returns the active topics belonging to any of
// the given categories, in stable order.
func (a *CatalogDatabaseAdapter) GetActiveTopicsByCategories(ctx context.Context, categoryIDs []string) ([]*domain.Topic, error) {
	if len(categoryIDs) == 0 {
		return []*domain.Topic{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+topicColumns+`
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		WHERE t.is_active = TRUE AND t.category_id IN (?)
		ORDER BY t.id`, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build topics-by-categories query: %w", err)
	}
	return a.selectTopics(ctx, a.db.Rebind(query), args...)
}

func (a *CatalogDatabaseAdapter) selectTopics(ctx context.Context, query string, args ...interface{}) ([]*domain.Topic, error) {
	executor := GetExecutor(ctx, a.db)

	var rows []models.Topic
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select topics: %w", err)
	}

	topics := make([]*domain.Topic, len(rows))
	for i := range rows {
		topics[i] = models.ToDomainTopic(&rows[i])
	}
	return topics, nil
}

// GetQuestions returns the active questions for one (topic, difficulty)
// pair. The reference dataset carries exactly one per pair, but the query
// tolerates more.
func (a *CatalogDatabaseAdapter) GetQuestions(ctx context.Context, topicID string, difficulty domain.Difficulty) ([]*domain.Question, error) {
	executor := GetExecutor(ctx, a.db)

	var rows []models.Question
	query := `SELECT id, topic_id, difficulty, question_text, option_a, option_b,
			option_c, option_d, correct_option, explanation, is_active, created_at
		FROM questions
		WHERE topic_id = $1 AND difficulty = $2 AND is_active = TRUE
		ORDER BY created_at`
	if err := executor.SelectContext(ctx, &rows, query, topicID, string(difficulty)); err != nil {
		return nil, fmt.Errorf("failed to get questions for topic %s: %w", topicID, err)
	}

	questions := make([]*domain.Question, len(rows))
	for i := range rows {
		questions[i] = models.ToDomainQuestion(&rows[i])
	}
	return questions, nil
}

// CreateTopic persists a new topic and fills in its generated fields.
func (a *CatalogDatabaseAdapter) CreateTopic(ctx context.Context, topic *domain.Topic) error {
	executor := GetExecutor(ctx, a.db)

	topic.ID = util.NewULID()
	topic.CreatedAt = time.Now()
	topic.UpdatedAt = topic.CreatedAt

	query := `INSERT INTO topics (id, title, category_id, content_simple, content_medium,
			content_advanced, estimated_read_time, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := executor.ExecContext(ctx, query,
		topic.ID,
		topic.Title,
		topic.CategoryID,
		topic.ContentSimple,
		topic.ContentMedium,
		topic.ContentAdvanced,
		topic.EstimatedReadTime,
		topic.IsActive,
		topic.CreatedAt,
		topic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}
