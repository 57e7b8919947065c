package validation

import (
	"regexp"
	"strings"

	"daily-spark/internal/domain"
	"daily-spark/internal/dto"
)

const maxAnswersPerSubmission = 20

// Validator provides request validation functionality.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTopicID validates a topic path parameter.
func (v *Validator) ValidateTopicID(topicID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(topicID) == "" {
		errors = append(errors, domain.NewMissingFieldError("topicId"))
	} else if !isValidULID(topicID) {
		errors = append(errors, domain.NewInvalidFormatError("topicId", topicID))
	}

	return errors
}

// ValidateDifficulty validates an optional difficulty parameter. An empty
// value is allowed; callers fall back to their own default.
func (v *Validator) ValidateDifficulty(difficulty string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if difficulty != "" && !domain.IsValidDifficulty(difficulty) {
		errors = append(errors, domain.NewInvalidFormatError("difficulty", difficulty))
	}

	return errors
}

// ValidateSubmitQuizRequest validates a quiz submission body.
func (v *Validator) ValidateSubmitQuizRequest(req *dto.SubmitQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.Answers) == 0 {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}
	if len(req.Answers) > maxAnswersPerSubmission {
		errors = append(errors, domain.NewOutOfRangeError("answers", len(req.Answers), 1, maxAnswersPerSubmission))
	}

	for _, answer := range req.Answers {
		if strings.TrimSpace(answer.QuestionID) == "" {
			errors = append(errors, domain.NewMissingFieldError("questionId"))
		} else if !isValidULID(answer.QuestionID) {
			errors = append(errors, domain.NewInvalidFormatError("questionId", answer.QuestionID))
		}
		if strings.TrimSpace(answer.SelectedOption) == "" {
			errors = append(errors, domain.NewMissingFieldError("selectedOption"))
		}
	}

	return errors
}

// ValidateInterests validates the interest category list.
func (v *Validator) ValidateInterests(categoryIDs []string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	for _, id := range categoryIDs {
		if !isValidULID(id) {
			errors = append(errors, domain.NewInvalidFormatError("categoryIds", id))
		}
	}

	return errors
}

// isValidULID checks if the string is a valid ULID format.
func isValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
