package services

import (
	"context"

	"github.com/ieraasyl/userboard/internal/models"
)

// AccountLister defines the upstream operation the dashboard needs.
// Satisfied by the management client; abstracted for testing.
type AccountLister interface {
	ListUsers(ctx context.Context) ([]models.Account, error)
}

// DashboardService derives display rows from the upstream user list.
// Rows are recomputed fresh on every call; nothing is cached.
type DashboardService struct {
	client AccountLister
}

// NewDashboardService creates a dashboard service backed by the given
// upstream client.
func NewDashboardService(client AccountLister) *DashboardService {
	return &DashboardService{client: client}
}

// Rows fetches the upstream user list and maps each record to a display
// row. Order follows the upstream response, and the signup/last-login
// timestamps are passed through without reformatting; rendering decides
// how to display them.
func (s *DashboardService) Rows(ctx context.Context) ([]models.DashboardRow, error) {
	accounts, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.DashboardRow, len(accounts))
	for i, account := range accounts {
		rows[i] = models.DashboardRow{
			Email:      account.Email,
			Name:       account.Name,
			SignupDate: account.CreatedAt,
			LoginCount: account.LoginsCount,
			LastLogin:  account.LastLogin,
		}
	}

	return rows, nil
}
