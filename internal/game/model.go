package game

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinNumber = 1
	MaxNumber = 100

	// LeaderboardLimit caps the weekly board regardless of how many users
	// settled this week.
	LeaderboardLimit = 50

	// FallbackNameLen is how much of an opaque user id is shown when no
	// display name resolves.
	FallbackNameLen = 8
)

var (
	ErrInvalidNumber     = errors.New("number must be between 1 and 100")
	ErrAlreadyPicked     = errors.New("already picked a number today")
	ErrAlreadySettled    = errors.New("date already settled")
	ErrNoSubmissions     = errors.New("no submissions for date")
	ErrPartialSettlement = errors.New("settlement results written but marker missing; needs operator reconciliation")
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]{3,24}$`)

func ValidateNumber(n int) error {
	if n < MinNumber || n > MaxNumber {
		return ErrInvalidNumber
	}
	return nil
}

// FallbackName truncates an opaque identifier for display when the profile
// provider has no name for it.
func FallbackName(userID string) string {
	if len(userID) <= FallbackNameLen {
		return userID
	}
	return userID[:FallbackNameLen]
}

func usernameFromEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "player"
	}
	return sanitizeUsername(local)
}

func sanitizeUsername(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "player"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	res := strings.Trim(string(out), "_")
	if len(res) < 3 {
		res = "player_" + res
	}
	if len(res) > 24 {
		res = res[:24]
	}
	return res
}
