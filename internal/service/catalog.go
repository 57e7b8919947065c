package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"daily-spark/internal/cache"
	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/logger"

	"go.uber.org/zap"
)

// catalogCacheTTL bounds how long the immutable-ish catalog lists live in
// Redis before a forced re-read.
const catalogCacheTTL = 12 * time.Hour

// CatalogService exposes the content catalog: categories, topic listings,
// topic creation and user interest selection.
type CatalogService interface {
	GetCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	GetTopics(ctx context.Context) ([]dto.TopicSummary, error)
	CreateTopic(ctx context.Context, req *dto.CreateTopicRequest) (*dto.TopicSummary, error)
	UpdateInterests(ctx context.Context, userID string, categoryIDs []string) error
}

type catalogService struct {
	catalogRepo domain.CatalogRepository
	userRepo    domain.UserRepository
	txManager   domain.TransactionManager
	cache       domain.Cache
}

// NewCatalogService creates a new CatalogService. The cache may be nil;
// every cache failure degrades to the database silently.
func NewCatalogService(
	catalogRepo domain.CatalogRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	cacheClient domain.Cache,
) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		cache:       cacheClient,
	}
}

// GetCategories implements CatalogService.
func (s *catalogService) GetCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	key := cache.CategoryListKey()

	var cached []dto.CategoryResponse
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	categories, err := s.catalogRepo.GetCategories(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get categories", err)
	}

	resp := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, dto.CategoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			Icon:         c.Icon,
			Description:  c.Description,
			DisplayOrder: c.DisplayOrder,
		})
	}
	s.cachePut(ctx, key, resp)
	return resp, nil
}

// GetTopics implements CatalogService.
func (s *catalogService) GetTopics(ctx context.Context) ([]dto.TopicSummary, error) {
	key := cache.TopicListKey()

	var cached []dto.TopicSummary
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	topics, err := s.catalogRepo.GetAllTopics(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get topics", err)
	}

	resp := make([]dto.TopicSummary, 0, len(topics))
	for _, t := range topics {
		resp = append(resp, toTopicSummary(t))
	}
	s.cachePut(ctx, key, resp)
	return resp, nil
}

// CreateTopic implements CatalogService. Creation invalidates the cached
// topic list so readers see the new entry on the next pull.
func (s *catalogService) CreateTopic(ctx context.Context, req *dto.CreateTopicRequest) (*dto.TopicSummary, error) {
	topic := &domain.Topic{
		Title:             req.Title,
		CategoryID:        req.CategoryID,
		ContentSimple:     req.ContentSimple,
		ContentMedium:     req.ContentMedium,
		ContentAdvanced:   req.ContentAdvanced,
		EstimatedReadTime: req.EstimatedReadTime,
		IsActive:          true,
	}
	if topic.EstimatedReadTime <= 0 {
		topic.EstimatedReadTime = 5
	}
	if err := topic.Validate(); err != nil {
		return nil, err
	}

	if err := s.catalogRepo.CreateTopic(ctx, topic); err != nil {
		return nil, domain.NewInternalError("Failed to create topic", err)
	}
	s.cacheDelete(ctx, cache.TopicListKey())

	summary := toTopicSummary(topic)
	return &summary, nil
}

// UpdateInterests implements CatalogService. The replacement is atomic:
// either the whole new set lands or the old one stays.
func (s *catalogService) UpdateInterests(ctx context.Context, userID string, categoryIDs []string) error {
	categories, err := s.catalogRepo.GetCategories(ctx)
	if err != nil {
		return domain.NewInternalError("Failed to get categories", err)
	}
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	for _, id := range categoryIDs {
		if !known[id] {
			return domain.NewNotFoundError("Unknown category: " + id)
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.userRepo.ReplaceInterests(txCtx, userID, categoryIDs)
	})
	if err != nil {
		return domain.NewInternalError("Failed to update interests", err)
	}
	return nil
}

func toTopicSummary(t *domain.Topic) dto.TopicSummary {
	summary := dto.TopicSummary{
		ID:                t.ID,
		Title:             t.Title,
		EstimatedReadTime: t.EstimatedReadTime,
		IsActive:          t.IsActive,
	}
	if t.Category != nil {
		summary.Category = dto.CategoryInfo{Name: t.Category.Name, Icon: t.Category.Icon}
	}
	return summary
}

// cacheGet loads and unmarshals a cached value. Any failure other than a
// miss is logged and treated as a miss.
func (s *catalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Cache read failed, falling back to database",
				zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Get().Warn("Cache entry corrupt, falling back to database",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *catalogService) cachePut(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Get().Warn("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), catalogCacheTTL); err != nil {
		logger.Get().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *catalogService) cacheDelete(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Warn("Cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
