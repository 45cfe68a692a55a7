package services

import (
	"context"
	"time"

	"github.com/ieraasyl/userboard/internal/models"
)

// statsWindowDays is the trailing window for the active-user average.
// The average always divides by this constant, even when the upstream
// series returns fewer entries (e.g. a new tenant): an intentional
// understatement carried over from the original behavior.
const statsWindowDays = 7

// StatsClient defines the upstream operations the statistics snapshot
// needs. Satisfied by the management client; abstracted for testing.
type StatsClient interface {
	CountUsers(ctx context.Context) (int, error)
	DailyStats(ctx context.Context, from string) ([]models.DailyStat, error)
}

// StatisticsService computes the signup/login statistics snapshot from
// upstream data. Every call recomputes from scratch.
type StatisticsService struct {
	client StatsClient
	now    func() time.Time // Injectable clock for tests
}

// NewStatisticsService creates a statistics service backed by the given
// upstream client.
func NewStatisticsService(client StatsClient) *StatisticsService {
	return &StatisticsService{
		client: client,
		now:    time.Now,
	}
}

// Snapshot computes the three dashboard statistics:
//
//   - TotalUsers: the total count reported by a zero-size page with
//     totals included (0 if the upstream omits it).
//   - ActiveUsers: the login count of the series entry whose date equals
//     today at midnight, compared as a full timestamp string; 0 when no
//     entry matches exactly.
//   - AverageActiveUsers: the sum of every returned entry's logins
//     divided by the 7-day window constant, regardless of how many
//     entries came back.
func (s *StatisticsService) Snapshot(ctx context.Context) (*models.Statistic, error) {
	total, err := s.client.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := now.AddDate(0, 0, -statsWindowDays).Format("20060102")

	series, err := s.client.DailyStats(ctx, from)
	if err != nil {
		return nil, err
	}

	today := DayStart(now)

	var sum int64
	var active int64
	for _, entry := range series {
		sum += entry.Logins
		if entry.Date == today {
			active = entry.Logins
		}
	}

	return &models.Statistic{
		TotalUsers:         total,
		ActiveUsers:        active,
		AverageActiveUsers: float64(sum) / statsWindowDays,
	}, nil
}

// DayStart returns the given moment's local midnight as a full UTC ISO
// timestamp with millisecond precision, matching the day markers of the
// upstream daily series.
//
// Example:
//
//	services.DayStart(time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC))
//	// "2024-06-01T00:00:00.000Z"
func DayStart(now time.Time) string {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
