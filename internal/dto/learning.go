package dto

import "time"

// CategoryInfo is the category slice embedded in topic responses.
type CategoryInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// DailyTopicItem is one entry of a daily set, in display order.
type DailyTopicItem struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Category          CategoryInfo `json:"category"`
	EstimatedReadTime int          `json:"estimatedReadTime"`
	DisplayOrder      int          `json:"displayOrder"`
}

// DailyTopicsResponse is the payload of GET /daily and POST /daily/refresh.
type DailyTopicsResponse struct {
	Date             time.Time        `json:"date"`
	CompletedCount   int              `json:"completedCount"`
	IsFullyCompleted bool             `json:"isFullyCompleted"`
	Topics           []DailyTopicItem `json:"topics"`
}

// ProgressSnapshot is the per-topic progress embedded in content responses.
type ProgressSnapshot struct {
	Status           string     `json:"status"`
	DifficultyChosen string     `json:"difficultyChosen,omitempty"`
	MarkedAsReadAt   *time.Time `json:"markedAsReadAt"`
}

// TopicContentResponse is the payload of GET /topic/:topicId.
type TopicContentResponse struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Content           string           `json:"content"`
	Difficulty        string           `json:"difficulty"`
	Category          CategoryInfo     `json:"category"`
	EstimatedReadTime int              `json:"estimatedReadTime"`
	Progress          ProgressSnapshot `json:"progress"`
}

// MarkReadRequest is the body of POST /topic/:topicId/mark-read.
type MarkReadRequest struct {
	Difficulty string `json:"difficulty,omitempty"`
}

// MessageResponse is a generic acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// QuizQuestion is a question with the correct option stripped.
type QuizQuestion struct {
	ID           string            `json:"id"`
	QuestionText string            `json:"questionText"`
	Options      map[string]string `json:"options"`
}

// QuizResponse is the payload of GET /quiz/:topicId.
type QuizResponse struct {
	TopicID    string         `json:"topicId"`
	Difficulty string         `json:"difficulty"`
	Questions  []QuizQuestion `json:"questions"`
}

// QuizAnswer is one submitted answer.
type QuizAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// SubmitQuizRequest is the body of POST /quiz/:topicId/submit.
type SubmitQuizRequest struct {
	Answers []QuizAnswer `json:"answers"`
}

// AnswerResult is the graded outcome of one answer.
type AnswerResult struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	CorrectOption  string `json:"correctOption"`
	IsCorrect      bool   `json:"isCorrect"`
	Explanation    string `json:"explanation"`
}

// SubmitQuizResponse is the payload of POST /quiz/:topicId/submit.
type SubmitQuizResponse struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	Passed         bool           `json:"passed"`
	Results        []AnswerResult `json:"results"`
}

// TodayProgress summarizes the current daily set inside the progress payload.
type TodayProgress struct {
	CompletedCount   int  `json:"completedCount"`
	TotalCount       int  `json:"totalCount"`
	IsFullyCompleted bool `json:"isFullyCompleted"`
}

// UserProgressResponse is the payload of GET /progress.
type UserProgressResponse struct {
	CurrentStreak        int            `json:"currentStreak"`
	LongestStreak        int            `json:"longestStreak"`
	TotalTopicsCompleted int            `json:"totalTopicsCompleted"`
	LastActivityDate     *time.Time     `json:"lastActivityDate"`
	TodayProgress        *TodayProgress `json:"todayProgress"`
}

// CategoryResponse is one entry of GET /categories.
type CategoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Icon         string `json:"icon,omitempty"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

// TopicSummary is one entry of GET /topics.
type TopicSummary struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Category          CategoryInfo `json:"category"`
	EstimatedReadTime int          `json:"estimatedReadTime"`
	IsActive          bool         `json:"isActive"`
}

// CreateTopicRequest is the body of POST /topics.
type CreateTopicRequest struct {
	Title             string `json:"title"`
	CategoryID        string `json:"categoryId"`
	ContentSimple     string `json:"contentSimple"`
	ContentMedium     string `json:"contentMedium"`
	ContentAdvanced   string `json:"contentAdvanced"`
	EstimatedReadTime int    `json:"estimatedReadTime,omitempty"`
}

// UpdateInterestsRequest is the body of PUT /users/me/interests.
type UpdateInterestsRequest struct {
	CategoryIDs []string `json:"categoryIds"`
}
