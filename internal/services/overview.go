package services

import (
	"context"

	"github.com/ieraasyl/userboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// RowSource produces dashboard rows. Satisfied by DashboardService.
type RowSource interface {
	Rows(ctx context.Context) ([]models.DashboardRow, error)
}

// SnapshotSource produces a statistics snapshot. Satisfied by
// StatisticsService.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*models.Statistic, error)
}

// OverviewService performs the combined dashboard-plus-statistics fetch
// the presentation layer renders from. The two upstream fetches run
// concurrently; if either fails the whole fetch fails, with no partial
// result.
type OverviewService struct {
	dashboard  RowSource
	statistics SnapshotSource
}

// NewOverviewService creates an overview service over the two
// aggregation sources.
func NewOverviewService(dashboard RowSource, statistics SnapshotSource) *OverviewService {
	return &OverviewService{
		dashboard:  dashboard,
		statistics: statistics,
	}
}

// Fetch runs both aggregations concurrently and joins the results.
// All-or-nothing: the first error cancels the sibling fetch's context
// and is returned as the error of the whole operation.
func (s *OverviewService) Fetch(ctx context.Context) (*models.Overview, error) {
	var (
		rows []models.DashboardRow
		stat *models.Statistic
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.dashboard.Rows(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stat, err = s.statistics.Snapshot(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Overview{
		Dashboard: rows,
		Statistic: stat,
	}, nil
}
