package admin

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dashboard repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountTitles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error
	return count, err
}

func (r *repository) SumTotalCopies(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("COALESCE(SUM(total_copies), 0)").
		Scan(&total).Error
	return total, err
}

// CountMembers counts patron and librarian accounts. Admin accounts are
// operators, not patrons, and stay out of the headline number.
func (r *repository) CountMembers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("role <> ?", enums.MemberRoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *repository) CountActiveLoans(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status IN ?", enums.ActiveLoanStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) CountActiveReservations(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", enums.ReservationStatusActive).
		Count(&count).Error
	return count, err
}

func (r *repository) SumFinePayments(ctx context.Context) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.FinePayment{}).
		Select("CAST(SUM(amount) AS TEXT)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repository) RecentLoans(ctx context.Context, limit int) ([]models.Loan, error) {
	var records []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Order("updated_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) RecentReservations(ctx context.Context, limit int) ([]models.Reservation, error) {
	var records []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		Order("updated_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
