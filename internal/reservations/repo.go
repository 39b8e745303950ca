package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

var reservationSortColumns = map[string]string{
	"reserved_date": "reserved_date",
	"expiry_date":   "expiry_date",
	"status":        "status",
}

const reservationDefaultOrder = "reserved_date DESC"

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var record models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindActiveByMemberAndBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.Reservation, error) {
	var record models.Reservation
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND book_id = ? AND status = ?", memberID, bookID, enums.ReservationStatusActive).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Reservation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.MemberID != nil {
		query = query.Where("member_id = ?", *filters.MemberID)
	}
	if filters.BookID != nil {
		query = query.Where("book_id = ?", *filters.BookID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.Reservation
	err := query.
		Preload("Book").
		Order(params.OrderClause(reservationSortColumns, reservationDefaultOrder)).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CompleteActive runs inside the issue transaction: if the member held
// an active reservation on the title, the checkout consumes it.
func (r *repository) CompleteActive(ctx context.Context, tx *gorm.DB, memberID, bookID uuid.UUID) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("member_id = ? AND book_id = ? AND status = ?", memberID, bookID, enums.ReservationStatusActive).
		Update("status", enums.ReservationStatusCompleted).Error
}

// ExpireLapsed cancels every active reservation whose pickup window has
// closed. One bulk update keeps the sweep idempotent.
func (r *repository) ExpireLapsed(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ? AND expiry_date < ?", enums.ReservationStatusActive, cutoff).
		Update("status", enums.ReservationStatusCancelled)
	return res.RowsAffected, res.Error
}
