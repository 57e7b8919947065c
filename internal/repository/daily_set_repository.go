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

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// pgUniqueViolation is the Postgres error code for unique constraint hits.
const pgUniqueViolation = "23505"

// DailySetDatabaseAdapter implements domain.DailySetRepository using sqlx.
type DailySetDatabaseAdapter struct {
	db *sqlx.DB
}

// NewDailySetDatabaseAdapter creates a new instance of DailySetDatabaseAdapter.
func NewDailySetDatabaseAdapter(db *sqlx.DB) domain.DailySetRepository {
	return &DailySetDatabaseAdapter{db: db}
}

// GetByUserAndDay returns the set assigned to the user for the given day, or
// nil when none exists. Entries come back ordered by display order with
// topics and categories preloaded.
func (a *DailySetDatabaseAdapter) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.DailyTopicSet, error) {
	executor := GetExecutor(ctx, a.db)

	var setRow models.DailyTopicSet
	query := `SELECT id, user_id, day, completed_count, is_fully_completed, created_at
		FROM daily_topic_sets
		WHERE user_id = $1 AND day = $2`
	err := executor.GetContext(ctx, &setRow, query, userID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily set: %w", err)
	}

	var entryRows []models.DailySetEntry
	entryQuery := `SELECT dst.set_id, dst.topic_id, dst.display_order, ` + topicColumns + `
		FROM daily_set_topics dst
		JOIN topics t ON t.id = dst.topic_id
		JOIN categories c ON c.id = t.category_id
		WHERE dst.set_id = $1
		ORDER BY dst.display_order`
	if err := executor.SelectContext(ctx, &entryRows, entryQuery, setRow.ID); err != nil {
		return nil, fmt.Errorf("failed to get daily set topics: %w", err)
	}

	set := &domain.DailyTopicSet{
		ID:               setRow.ID,
		UserID:           setRow.UserID,
		Day:              setRow.Day,
		CompletedCount:   setRow.CompletedCount,
		IsFullyCompleted: setRow.IsFullyCompleted,
		CreatedAt:        setRow.CreatedAt,
		Topics:           make([]domain.DailySetTopic, len(entryRows)),
	}
	for i := range entryRows {
		set.Topics[i] = domain.DailySetTopic{
			TopicID:      entryRows[i].TopicID,
			DisplayOrder: entryRows[i].DisplayOrder,
			Topic:        models.ToDomainTopic(&entryRows[i].Topic),
		}
	}
	return set, nil
}

// Create persists a new set with display orders 1..len(topicIDs). It returns
// domain.ErrDuplicateDailySet when another writer already owns the
// (user, day) slot; the caller then re-reads the winner's set.
func (a *DailySetDatabaseAdapter) Create(ctx context.Context, userID string, day time.Time, topicIDs []string) (*domain.DailyTopicSet, error) {
	executor := GetExecutor(ctx, a.db)

	set := &domain.DailyTopicSet{
		ID:        util.NewULID(),
		UserID:    userID,
		Day:       day,
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO daily_topic_sets (id, user_id, day, completed_count, is_fully_completed, created_at)
		VALUES ($1, $2, $3, 0, FALSE, $4)`
	_, err := executor.ExecContext(ctx, query, set.ID, set.UserID, set.Day, set.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrDuplicateDailySet
		}
		return nil, fmt.Errorf("failed to create daily set: %w", err)
	}

	entryQuery := `INSERT INTO daily_set_topics (set_id, topic_id, display_order)
		VALUES ($1, $2, $3)`
	for i, topicID := range topicIDs {
		order := i + 1
		if _, err := executor.ExecContext(ctx, entryQuery, set.ID, topicID, order); err != nil {
			return nil, fmt.Errorf("failed to create daily set topic: %w", err)
		}
		set.Topics = append(set.Topics, domain.DailySetTopic{TopicID: topicID, DisplayOrder: order})
	}
	return set, nil
}

// Delete removes a malformed set so it can be rebuilt. Entries go with it
// via ON DELETE CASCADE.
func (a *DailySetDatabaseAdapter) Delete(ctx context.Context, userID string, day time.Time) error {
	executor := GetExecutor(ctx, a.db)

	query := `DELETE FROM daily_topic_sets WHERE user_id = $1 AND day = $2`
	if _, err := executor.ExecContext(ctx, query, userID, day); err != nil {
		return fmt.Errorf("failed to delete daily set: %w", err)
	}
	return nil
}

// UpdateCompletion stores the recomputed completion counters on the set.
func (a *DailySetDatabaseAdapter) UpdateCompletion(ctx context.Context, setID string, completedCount int, isFullyCompleted bool) error {
	executor := GetExecutor(ctx, a.db)

	query := `UPDATE daily_topic_sets SET completed_count = $1, is_fully_completed = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, completedCount, isFullyCompleted, setID)
	if err != nil {
		return fmt.Errorf("failed to update daily set completion: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
