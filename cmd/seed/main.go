package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"daily-spark/internal/config"
	"daily-spark/internal/database"
	"daily-spark/internal/logger"
	"daily-spark/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const seedFilePath = "config/seed_data/initial_topics.json"

// Seed file structures.

type SeedQuestion struct {
	Difficulty    string            `json:"difficulty"`
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option"`
	Explanation   string            `json:"explanation"`
}

type SeedTopic struct {
	Title             string         `json:"title"`
	EstimatedReadTime int            `json:"estimated_read_time"`
	ContentSimple     string         `json:"content_simple"`
	ContentMedium     string         `json:"content_medium"`
	ContentAdvanced   string         `json:"content_advanced"`
	Questions         []SeedQuestion `json:"questions"`
}

type SeedCategory struct {
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Icon         string      `json:"icon"`
	Description  string      `json:"description"`
	DisplayOrder int         `json:"display_order"`
	Topics       []SeedTopic `json:"topics"`
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding")
	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seedCategories []SeedCategory
	if err := json.Unmarshal(byteValue, &seedCategories); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Seed data loaded", zap.Int("categories", len(seedCategories)))

	for _, sc := range seedCategories {
		if err := seedCategoryData(ctx, db, log, sc); err != nil {
			log.Error("Error seeding category, transaction rolled back",
				zap.String("category", sc.Name), zap.Error(err))
		}
	}
	log.Info("Initial data seeding completed")
}

func seedCategoryData(ctx context.Context, db *sqlx.DB, log *zap.Logger, sc SeedCategory) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for category %s: %w", sc.Name, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		} else {
			err = tx.Commit()
		}
	}()

	categoryID, err := ensureCategory(ctx, tx, sc)
	if err != nil {
		return err
	}
	log.Info("Category ready", zap.String("id", categoryID), zap.String("name", sc.Name))

	for _, st := range sc.Topics {
		topicID, created, topicErr := ensureTopic(ctx, tx, categoryID, st)
		if topicErr != nil {
			return topicErr
		}
		if !created {
			log.Info("Topic exists, skipping", zap.String("title", st.Title))
			continue
		}
		log.Info("Created topic", zap.String("id", topicID), zap.String("title", st.Title))

		for _, sq := range st.Questions {
			if qErr := insertQuestion(ctx, tx, topicID, sq); qErr != nil {
				return fmt.Errorf("failed to insert question for topic %s: %w", st.Title, qErr)
			}
		}
	}
	return nil
}

func ensureCategory(ctx context.Context, tx *sqlx.Tx, sc SeedCategory) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, "SELECT id FROM categories WHERE slug = $1", sc.Slug)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("error checking category %s: %w", sc.Slug, err)
	}

	id = util.NewULID()
	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, icon, description, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		id, sc.Name, sc.Slug, sc.Icon, sc.Description, sc.DisplayOrder, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert category %s: %w", sc.Slug, err)
	}
	return id, nil
}

func ensureTopic(ctx context.Context, tx *sqlx.Tx, categoryID string, st SeedTopic) (string, bool, error) {
	var id string
	err := tx.GetContext(ctx, &id,
		"SELECT id FROM topics WHERE category_id = $1 AND title = $2", categoryID, st.Title)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("error checking topic %s: %w", st.Title, err)
	}

	id = util.NewULID()
	readTime := st.EstimatedReadTime
	if readTime <= 0 {
		readTime = 5
	}
	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO topics (
			id, category_id, title, content_simple, content_medium, content_advanced,
			estimated_read_time, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8)`,
		id, categoryID, st.Title, st.ContentSimple, st.ContentMedium, st.ContentAdvanced,
		readTime, now,
	)
	if err != nil {
		return "", false, fmt.Errorf("failed to insert topic %s: %w", st.Title, err)
	}
	return id, true, nil
}

func insertQuestion(ctx context.Context, tx *sqlx.Tx, topicID string, sq SeedQuestion) error {
	for _, key := range []string{"A", "B", "C", "D"} {
		if _, ok := sq.Options[key]; !ok {
			return fmt.Errorf("question %q is missing option %s", sq.QuestionText, key)
		}
	}

	now := time.Now()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO questions (
			id, topic_id, difficulty, question_text,
			option_a, option_b, option_c, option_d,
			correct_option, explanation, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11)`,
		util.NewULID(), topicID, sq.Difficulty, sq.QuestionText,
		sq.Options["A"], sq.Options["B"], sq.Options["C"], sq.Options["D"],
		sq.CorrectOption, sq.Explanation, now,
	)
	return err
}
