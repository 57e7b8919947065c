package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DailySetSize is the number of topics assigned per user per calendar day.
const DailySetSize = 3

// RotationService produces and persists the daily topic set.
type RotationService interface {
	// GetDailyTopics returns today's set, generating it on first call of the
	// day. Idempotent for the remainder of the day.
	GetDailyTopics(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error)
	// RefreshDailyTopics discards today's set and generates a fresh one.
	RefreshDailyTopics(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error)
}

type rotationService struct {
	catalogRepo  domain.CatalogRepository
	progressRepo domain.ProgressRepository
	dailySetRepo domain.DailySetRepository
	userRepo     domain.UserRepository
	clock        domain.Clock
	poolSize     int

	// rng is shared across requests; fiber handlers run concurrently.
	rngMu sync.Mutex
	rng   *rand.Rand

	// group collapses concurrent first-requests-of-the-day per user before
	// they race on the store's uniqueness constraint.
	group singleflight.Group
}

// NewRotationService creates a new RotationService. The rand source is
// injected so selection is reproducible under test.
func NewRotationService(
	catalogRepo domain.CatalogRepository,
	progressRepo domain.ProgressRepository,
	dailySetRepo domain.DailySetRepository,
	userRepo domain.UserRepository,
	clock domain.Clock,
	rng *rand.Rand,
	poolSize int,
) RotationService {
	if poolSize <= 0 {
		poolSize = 20
	}
	return &rotationService{
		catalogRepo:  catalogRepo,
		progressRepo: progressRepo,
		dailySetRepo: dailySetRepo,
		userRepo:     userRepo,
		clock:        clock,
		rng:          rng,
		poolSize:     poolSize,
	}
}

// GetDailyTopics implements RotationService.
func (s *rotationService) GetDailyTopics(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error) {
	today := domain.Midnight(s.clock.Now())

	key := userID + "|" + today.Format("2006-01-02")
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.getOrCreateSet(ctx, userID, today)
	})
	if err != nil {
		return nil, err
	}
	return toDailyTopicsResponse(result.(*domain.DailyTopicSet)), nil
}

// RefreshDailyTopics implements RotationService.
func (s *rotationService) RefreshDailyTopics(ctx context.Context, userID string) (*dto.DailyTopicsResponse, error) {
	today := domain.Midnight(s.clock.Now())

	if err := s.dailySetRepo.Delete(ctx, userID, today); err != nil {
		return nil, domain.NewInternalError("Failed to discard daily set", err)
	}
	logger.Get().Info("Daily set discarded for refresh",
		zap.String("userID", userID),
		zap.Time("day", today))

	set, err := s.generateSet(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	return toDailyTopicsResponse(set), nil
}

// getOrCreateSet returns the existing well-formed set for the day, healing a
// malformed one by regenerating it.
func (s *rotationService) getOrCreateSet(ctx context.Context, userID string, day time.Time) (*domain.DailyTopicSet, error) {
	set, err := s.dailySetRepo.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get daily set", err)
	}
	if set != nil {
		if len(set.Topics) == DailySetSize {
			return set, nil
		}
		// Partial write from an earlier failure. Heal silently.
		logger.Get().Warn("Malformed daily set found, regenerating",
			zap.String("userID", userID),
			zap.String("setID", set.ID),
			zap.Int("topicCount", len(set.Topics)))
		if err := s.dailySetRepo.Delete(ctx, userID, day); err != nil {
			return nil, domain.NewInternalError("Failed to delete malformed daily set", err)
		}
	}
	return s.generateSet(ctx, userID, day)
}

// generateSet runs the selection ladder and persists the result. When the
// store reports another writer already owns the (user, day) slot, the
// winner's set is read back and returned.
func (s *rotationService) generateSet(ctx context.Context, userID string, day time.Time) (*domain.DailyTopicSet, error) {
	topicIDs, err := s.selectTopics(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, err = s.dailySetRepo.Create(ctx, userID, day, topicIDs)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDailySet) {
			winner, readErr := s.dailySetRepo.GetByUserAndDay(ctx, userID, day)
			if readErr != nil {
				return nil, domain.NewInternalError("Failed to read daily set after create conflict", readErr)
			}
			if winner == nil {
				return nil, domain.NewInternalError("Daily set vanished after create conflict", nil)
			}
			return winner, nil
		}
		return nil, domain.NewInternalError("Failed to create daily set", err)
	}

	// Re-read so topics and categories come back preloaded in display order.
	created, err := s.dailySetRepo.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, domain.NewInternalError("Failed to read created daily set", err)
	}
	if created == nil {
		return nil, domain.NewInternalError("Created daily set not found on re-read", nil)
	}

	logger.Get().Info("Daily set generated",
		zap.String("userID", userID),
		zap.Time("day", day),
		zap.Strings("topicIDs", topicIDs))
	return created, nil
}

// selectTopics runs the selection ladder:
//
//  1. interest-scoped active topics, excluding completed ones
//  2. all active topics, excluding completed ones
//  3. all active topics, allowing completed ones to repeat
//
// Each step draws a shuffled candidate pool and fills up to three. When the
// whole active catalog holds fewer than three topics, it fails with a
// catalog-too-small error instead of returning a short set.
func (s *rotationService) selectTopics(ctx context.Context, userID string) ([]string, error) {
	interests, err := s.userRepo.GetInterestCategoryIDs(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user interests", err)
	}
	completedIDs, err := s.progressRepo.GetCompletedTopicIDs(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get completed topics", err)
	}
	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	selected := make([]string, 0, DailySetSize)
	chosen := make(map[string]bool, DailySetSize)

	// Step 1: interest-scoped, never repeating completed topics.
	if len(interests) > 0 {
		topics, err := s.catalogRepo.GetActiveTopicsByCategories(ctx, interests)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get interest topics", err)
		}
		selected = s.fill(selected, chosen, topics, func(t *domain.Topic) bool {
			return !completed[t.ID]
		})
	}

	var allActive []*domain.Topic
	if len(selected) < DailySetSize {
		allActive, err = s.catalogRepo.GetActiveTopics(ctx)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get active topics", err)
		}
	}

	// Step 2: whole catalog, still excluding completed topics.
	if len(selected) < DailySetSize {
		selected = s.fill(selected, chosen, allActive, func(t *domain.Topic) bool {
			return !completed[t.ID]
		})
	}

	// Step 3: the uncompleted catalog is exhausted; repetition beats a short
	// set.
	if len(selected) < DailySetSize {
		selected = s.fill(selected, chosen, allActive, func(*domain.Topic) bool { return true })
	}

	// Step 4: the catalog itself cannot supply three topics.
	if len(selected) < DailySetSize {
		return nil, domain.NewCatalogTooSmallError(len(allActive))
	}
	return selected, nil
}

// fill shuffles the eligible candidates, caps the pool, and appends topic
// IDs until the set is full.
func (s *rotationService) fill(selected []string, chosen map[string]bool, topics []*domain.Topic, eligible func(*domain.Topic) bool) []string {
	candidates := make([]string, 0, len(topics))
	for _, t := range topics {
		if !chosen[t.ID] && eligible(t) {
			candidates = append(candidates, t.ID)
		}
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	s.rngMu.Unlock()

	if len(candidates) > s.poolSize {
		candidates = candidates[:s.poolSize]
	}
	for _, id := range candidates {
		if len(selected) >= DailySetSize {
			break
		}
		selected = append(selected, id)
		chosen[id] = true
	}
	return selected
}

func toDailyTopicsResponse(set *domain.DailyTopicSet) *dto.DailyTopicsResponse {
	resp := &dto.DailyTopicsResponse{
		Date:             set.Day,
		CompletedCount:   set.CompletedCount,
		IsFullyCompleted: set.IsFullyCompleted,
		Topics:           make([]dto.DailyTopicItem, 0, len(set.Topics)),
	}
	for _, entry := range set.Topics {
		item := dto.DailyTopicItem{
			ID:           entry.TopicID,
			DisplayOrder: entry.DisplayOrder,
		}
		if entry.Topic != nil {
			item.Title = entry.Topic.Title
			item.EstimatedReadTime = entry.Topic.EstimatedReadTime
			if entry.Topic.Category != nil {
				item.Category = dto.CategoryInfo{
					Name: entry.Topic.Category.Name,
					Icon: entry.Topic.Category.Icon,
				}
			}
		}
		resp.Topics = append(resp.Topics, item)
	}
	return resp
}
