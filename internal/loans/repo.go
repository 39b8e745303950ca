package loans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

var loanSortColumns = map[string]string{
	"issue_date": "issue_date",
	"due_date":   "due_date",
	"status":     "status",
	"fine":       "fine",
}

const loanDefaultOrder = "issue_date DESC"

type repository struct {
	db *gorm.DB
}

// NewRepository builds a loans repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("id = ?", id).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *repository) FindActiveByMemberAndBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND book_id = ? AND status IN ?", memberID, bookID, enums.ActiveLoanStatuses).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Loan, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.MemberID != nil {
		query = query.Where("member_id = ?", *filters.MemberID)
	}
	if filters.BookID != nil {
		query = query.Where("book_id = ?", *filters.BookID)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.Loan
	err := query.
		Preload("Book").
		Order(params.OrderClause(loanSortColumns, loanDefaultOrder)).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) ([]models.Loan, int64, error) {
	return r.List(ctx, params, ListFilters{MemberID: &memberID})
}

func (r *repository) ListOutstandingFines(ctx context.Context, memberID *uuid.UUID, params pagination.Params) ([]models.Loan, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Loan{}).Where("fine > 0")
	if memberID != nil {
		query = query.Where("member_id = ?", *memberID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.Loan
	err := query.
		Preload("Book").
		Order("fine DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) FindOverdue(ctx context.Context, cutoff time.Time) ([]models.Loan, error) {
	var records []models.Loan
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?", enums.ActiveLoanStatuses, cutoff).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateActive applies updates only while the loan is still in an
// active status and, when expectedFine is set, only while the fine
// still matches what the caller read. The guard in the WHERE clause is
// what keeps settle, return, and the sweep from clobbering each other:
// zero rows affected means the loan moved underneath the caller.
func (r *repository) UpdateActive(ctx context.Context, id uuid.UUID, expectedFine *decimal.Decimal, updates map[string]any) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status IN ?", id, enums.ActiveLoanStatuses)
	if expectedFine != nil {
		query = query.Where("fine = ?", *expectedFine)
	}
	res := query.Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) CountActiveByBook(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("book_id = ? AND status IN ?", bookID, enums.ActiveLoanStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) SumOutstandingFines(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_id = ? AND fine > 0", memberID).
		Select("CAST(SUM(fine) AS TEXT)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
