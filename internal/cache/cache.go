package cache

import (
	"context"

	"wadash-backend/internal/models"
)

// AnalyticsCache snapshots the dashboard analytics rollup. Implementations
// are advisory only: a miss or failure always falls back to a recompute.
type AnalyticsCache interface {
	Get(ctx context.Context) (*models.AnalyticsResponse, bool, error)
	Store(ctx context.Context, snapshot *models.AnalyticsResponse) error
}
