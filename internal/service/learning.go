package service

import (
	"context"
	"math"
	"time"

	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
	"daily-spark/internal/logger"

	"go.uber.org/zap"
)

// passThreshold is the fraction of correct answers needed to pass a quiz.
const passThreshold = 0.7

// LearningService governs a topic's lifecycle for one user: content access,
// the read gate, quiz serving and grading, and the statistics that follow.
type LearningService interface {
	GetTopicContent(ctx context.Context, userID, topicID, difficulty string) (*dto.TopicContentResponse, error)
	MarkTopicAsRead(ctx context.Context, userID, topicID, difficulty string) (*dto.MessageResponse, error)
	GetQuiz(ctx context.Context, userID, topicID string) (*dto.QuizResponse, error)
	SubmitQuiz(ctx context.Context, userID, topicID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
	GetUserProgress(ctx context.Context, userID string) (*dto.UserProgressResponse, error)
}

type learningService struct {
	catalogRepo  domain.CatalogRepository
	progressRepo domain.ProgressRepository
	dailySetRepo domain.DailySetRepository
	attemptRepo  domain.AttemptRepository
	userRepo     domain.UserRepository
	txManager    domain.TransactionManager
	clock        domain.Clock
}

// NewLearningService creates a new LearningService.
func NewLearningService(
	catalogRepo domain.CatalogRepository,
	progressRepo domain.ProgressRepository,
	dailySetRepo domain.DailySetRepository,
	attemptRepo domain.AttemptRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	clock domain.Clock,
) LearningService {
	return &learningService{
		catalogRepo:  catalogRepo,
		progressRepo: progressRepo,
		dailySetRepo: dailySetRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		clock:        clock,
	}
}

// GetTopicContent implements LearningService. First access lazily creates
// the progress record in IN_PROGRESS with the requested tier.
func (s *learningService) GetTopicContent(ctx context.Context, userID, topicID, difficulty string) (*dto.TopicContentResponse, error) {
	tier := domain.ParseDifficulty(difficulty)

	topic, err := s.catalogRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get topic", err)
	}
	if topic == nil {
		return nil, domain.NewTopicNotFoundError(topicID)
	}

	progress, err := s.progressRepo.GetProgress(ctx, userID, topicID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get progress", err)
	}
	if progress == nil {
		progress = &domain.UserProgress{
			UserID:           userID,
			TopicID:          topicID,
			Status:           domain.ProgressInProgress,
			DifficultyChosen: tier,
		}
		if err := s.progressRepo.CreateProgress(ctx, progress); err != nil {
			return nil, domain.NewInternalError("Failed to create progress", err)
		}
	}

	resp := &dto.TopicContentResponse{
		ID:                topic.ID,
		Title:             topic.Title,
		Content:           topic.ContentFor(tier),
		Difficulty:        string(tier),
		EstimatedReadTime: topic.EstimatedReadTime,
		Progress: dto.ProgressSnapshot{
			Status:           string(progress.Status),
			DifficultyChosen: string(progress.DifficultyChosen),
			MarkedAsReadAt:   progress.MarkedAsReadAt,
		},
	}
	if topic.Category != nil {
		resp.Category = dto.CategoryInfo{Name: topic.Category.Name, Icon: topic.Category.Icon}
	}
	return resp, nil
}

// MarkTopicAsRead implements LearningService. Idempotent; opens the quiz
// gate. A supplied difficulty overwrites the chosen tier.
func (s *learningService) MarkTopicAsRead(ctx context.Context, userID, topicID, difficulty string) (*dto.MessageResponse, error) {
	var tier domain.Difficulty
	if difficulty != "" {
		if !domain.IsValidDifficulty(difficulty) {
			return nil, domain.NewError(domain.CodeValidation,
				"difficulty must be one of SIMPLE, MEDIUM, ADVANCED", nil)
		}
		tier = domain.Difficulty(difficulty)
	}

	topic, err := s.catalogRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get topic", err)
	}
	if topic == nil {
		return nil, domain.NewTopicNotFoundError(topicID)
	}

	if err := s.progressRepo.MarkAsRead(ctx, userID, topicID, tier, s.clock.Now()); err != nil {
		return nil, domain.NewInternalError("Failed to mark topic as read", err)
	}
	return &dto.MessageResponse{Message: "Topic marked as read"}, nil
}

// GetQuiz implements LearningService. Requires the read gate to have been
// passed; serves the question for the chosen tier with the correct option
// stripped.
func (s *learningService) GetQuiz(ctx context.Context, userID, topicID string) (*dto.QuizResponse, error) {
	progress, err := s.progressRepo.GetProgress(ctx, userID, topicID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get progress", err)
	}
	if progress == nil || progress.MarkedAsReadAt == nil {
		return nil, domain.NewPreconditionFailedError("Topic must be marked as read before taking the quiz")
	}

	tier := progress.DifficultyChosen
	if tier == "" {
		tier = domain.DifficultyMedium
	}

	questions, err := s.catalogRepo.GetQuestions(ctx, topicID, tier)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questions", err)
	}
	if len(questions) == 0 {
		return nil, domain.NewQuizNotFoundError(topicID, tier)
	}

	resp := &dto.QuizResponse{
		TopicID:    topicID,
		Difficulty: string(tier),
		Questions:  make([]dto.QuizQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, dto.QuizQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options: map[string]string{
				"A": q.OptionA,
				"B": q.OptionB,
				"C": q.OptionC,
				"D": q.OptionD,
			},
		})
	}
	return resp, nil
}

// SubmitQuiz implements LearningService. One submission per (user, topic)
// is terminal, pass or fail: completion, statistics and the daily set's
// completed count are all updated even on a failing score.
func (s *learningService) SubmitQuiz(ctx context.Context, userID, topicID string, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	if req == nil || len(req.Answers) == 0 {
		return nil, domain.NewError(domain.CodeValidation, "answers must be a non-empty list", nil)
	}

	progress, err := s.progressRepo.GetProgress(ctx, userID, topicID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get progress", err)
	}
	if progress == nil || progress.MarkedAsReadAt == nil {
		return nil, domain.NewPreconditionFailedError("Topic must be marked as read before submitting the quiz")
	}
	if progress.QuizCompleted {
		return nil, domain.NewQuizAlreadyCompletedError(topicID)
	}

	tier := progress.DifficultyChosen
	if tier == "" {
		tier = domain.DifficultyMedium
	}
	questions, err := s.catalogRepo.GetQuestions(ctx, topicID, tier)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questions", err)
	}
	if len(questions) == 0 {
		return nil, domain.NewQuizNotFoundError(topicID, tier)
	}
	served := make(map[string]*domain.Question, len(questions))
	for _, q := range questions {
		served[q.ID] = q
	}

	priorAttempts, err := s.attemptRepo.CountByUserAndTopic(ctx, userID, topicID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to count quiz attempts", err)
	}

	// Grade before writing anything: a malformed answer leaves no trace.
	score := 0
	results := make([]dto.AnswerResult, 0, len(req.Answers))
	attempts := make([]*domain.QuizAttempt, 0, len(req.Answers))
	for i, answer := range req.Answers {
		question, ok := served[answer.QuestionID]
		if !ok {
			return nil, domain.NewError(domain.CodeValidation,
				"answer references a question that is not part of this quiz", nil)
		}
		isCorrect := answer.SelectedOption == question.CorrectOption
		if isCorrect {
			score++
		}
		results = append(results, dto.AnswerResult{
			QuestionID:     question.ID,
			SelectedOption: answer.SelectedOption,
			CorrectOption:  question.CorrectOption,
			IsCorrect:      isCorrect,
			Explanation:    question.Explanation,
		})
		attempts = append(attempts, &domain.QuizAttempt{
			UserID:         userID,
			QuestionID:     question.ID,
			TopicID:        topicID,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      isCorrect,
			AttemptNumber:  priorAttempts + i + 1,
		})
	}

	total := len(req.Answers)
	percentage := int(math.Round(float64(score*100) / float64(total)))
	passed := score >= int(math.Ceil(passThreshold*float64(total)))
	now := s.clock.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, attempt := range attempts {
			if err := s.attemptRepo.CreateAttempt(txCtx, attempt); err != nil {
				return err
			}
		}
		if err := s.progressRepo.CompleteQuiz(txCtx, userID, topicID, score, now); err != nil {
			return err
		}
		if err := s.userRepo.RecordCompletion(txCtx, userID, now); err != nil {
			return err
		}
		return s.recomputeDailySet(txCtx, userID, now)
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to record quiz submission", err)
	}

	logger.Get().Info("Quiz submitted",
		zap.String("userID", userID),
		zap.String("topicID", topicID),
		zap.Int("score", score),
		zap.Int("total", total),
		zap.Bool("passed", passed))

	return &dto.SubmitQuizResponse{
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
		Passed:         passed,
		Results:        results,
	}, nil
}

// recomputeDailySet re-derives the daily set's completed count from progress
// rows. Recompute-on-write keeps the denormalized counters from drifting.
func (s *learningService) recomputeDailySet(ctx context.Context, userID string, now time.Time) error {
	set, err := s.dailySetRepo.GetByUserAndDay(ctx, userID, domain.Midnight(now))
	if err != nil {
		return err
	}
	if set == nil {
		return nil
	}

	topicIDs := make([]string, 0, len(set.Topics))
	for _, entry := range set.Topics {
		topicIDs = append(topicIDs, entry.TopicID)
	}
	completed, err := s.progressRepo.CountCompleted(ctx, userID, topicIDs)
	if err != nil {
		return err
	}
	return s.dailySetRepo.UpdateCompletion(ctx, set.ID, completed, completed >= len(set.Topics) && len(set.Topics) > 0)
}

// GetUserProgress implements LearningService.
func (s *learningService) GetUserProgress(ctx context.Context, userID string) (*dto.UserProgressResponse, error) {
	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user stats", err)
	}
	if stats == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	resp := &dto.UserProgressResponse{
		CurrentStreak:        stats.CurrentStreak,
		LongestStreak:        stats.LongestStreak,
		TotalTopicsCompleted: stats.TotalTopicsCompleted,
		LastActivityDate:     stats.LastActivityDate,
	}

	set, err := s.dailySetRepo.GetByUserAndDay(ctx, userID, domain.Midnight(s.clock.Now()))
	if err != nil {
		return nil, domain.NewInternalError("Failed to get daily set", err)
	}
	if set != nil {
		resp.TodayProgress = &dto.TodayProgress{
			CompletedCount:   set.CompletedCount,
			TotalCount:       len(set.Topics),
			IsFullyCompleted: set.IsFullyCompleted,
		}
	}
	return resp, nil
}
