package domain

import (
	"time"
)

// User represents a domain user object. Identity fields are owned by the
// auth flow; the statistics fields are mutated only when a quiz completes.
type User struct {
	ID                       string
	Email                    string
	PasswordHash             string
	IsEmailVerified          bool
	VerificationToken        string
	VerificationTokenExpiry  *time.Time
	PasswordResetToken       string
	PasswordResetTokenExpiry *time.Time
	TotalTopicsCompleted     int
	CurrentStreak            int
	LongestStreak            int
	LastActivityDate         *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
	DeletedAt                *time.Time
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.Email == "" {
		errs = append(errs, NewMissingFieldError("email"))
	}
	if u.PasswordHash == "" {
		errs = append(errs, NewMissingFieldError("password"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UserStats is the statistics slice of a user record.
type UserStats struct {
	CurrentStreak        int
	LongestStreak        int
	TotalTopicsCompleted int
	LastActivityDate     *time.Time
}

// NextStreak computes the streak values after a completion at now, given the
// previous stats. A completion on the same calendar day leaves the streak
// unchanged; one on the following day extends it; anything else restarts it.
func (s UserStats) NextStreak(now time.Time) (current, longest int) {
	today := Midnight(now)
	current = 1
	if s.LastActivityDate != nil {
		// The stored timestamp may come back in a different location than
		// now; compare calendar days in now's location, not instants.
		last := Midnight(s.LastActivityDate.In(now.Location()))
		switch {
		case last.Equal(today):
			current = s.CurrentStreak
			if current == 0 {
				current = 1
			}
		case last.Equal(today.AddDate(0, 0, -1)):
			current = s.CurrentStreak + 1
		}
	}
	longest = s.LongestStreak
	if current > longest {
		longest = current
	}
	return current, longest
}
