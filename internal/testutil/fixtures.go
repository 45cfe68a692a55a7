package testutil

import (
	"time"

	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/pkg/config"
)

// TestSessionSecret is a deterministic 32-byte signing secret for tests.
var TestSessionSecret = []byte("0123456789abcdef0123456789abcdef")

// SessionConfig returns a session configuration suitable for tests.
func SessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		Secret: TestSessionSecret,
		Expiry: time.Hour,
	}
}

// Session returns a populated session for the given subject.
func Session(subject string) *models.Session {
	return &models.Session{
		Subject: subject,
		Email:   "user@example.com",
		Name:    "Test User",
		Picture: "https://example.com/avatar.png",
	}
}

// Accounts returns a small upstream user list.
func Accounts() []models.Account {
	return []models.Account{
		{
			UserID:      "auth0|alice",
			Email:       "alice@example.com",
			Name:        "Alice",
			CreatedAt:   "2024-01-01T09:30:00.000Z",
			LoginsCount: 5,
			LastLogin:   "2024-06-01T10:00:00.000Z",
		},
		{
			UserID:      "auth0|bob",
			Email:       "bob@example.com",
			Name:        "Bob",
			CreatedAt:   "2024-02-15T12:00:00.000Z",
			LoginsCount: 12,
			LastLogin:   "2024-06-02T08:45:00.000Z",
		},
	}
}

// DailyStats returns a 7-entry login time series ending at the given
// day marker with the given counts (oldest first).
func DailyStats(markers []string, logins []int64) []models.DailyStat {
	stats := make([]models.DailyStat, len(markers))
	for i := range markers {
		stats[i] = models.DailyStat{Date: markers[i], Logins: logins[i]}
	}
	return stats
}
