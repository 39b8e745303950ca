package admin

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
)

// Repository defines the aggregate reads behind the dashboard.
type Repository interface {
	CountTitles(ctx context.Context) (int64, error)
	SumTotalCopies(ctx context.Context) (int64, error)
	CountMembers(ctx context.Context) (int64, error)
	CountActiveLoans(ctx context.Context) (int64, error)
	CountActiveReservations(ctx context.Context) (int64, error)
	SumFinePayments(ctx context.Context) (decimal.Decimal, error)
	RecentLoans(ctx context.Context, limit int) ([]models.Loan, error)
	RecentReservations(ctx context.Context, limit int) ([]models.Reservation, error)
}

// Service defines the dashboard operations.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityDTO, error)
}
