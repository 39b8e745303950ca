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

// Repository defines persistence operations for the reservations table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	FindActiveByMemberAndBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Reservation, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CompleteActive(ctx context.Context, tx *gorm.DB, memberID, bookID uuid.UUID) error
	ExpireLapsed(ctx context.Context, cutoff time.Time) (int64, error)
}

// ListFilters describe the inputs supported by the reservation list.
type ListFilters struct {
	Status   *enums.ReservationStatus
	MemberID *uuid.UUID
	BookID   *uuid.UUID
}

type memberFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// activeLoanChecker reports whether a member already has a copy of a
// title out. Satisfied by the loans repository.
type activeLoanChecker interface {
	FindActiveByMemberAndBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.Loan, error)
}

// Service defines hold lifecycle operations.
type Service interface {
	Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error)
	Cancel(ctx context.Context, input CancelInput) (*ReservationDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReservationList, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*ReservationList, error)
	ExpireLapsed(ctx context.Context) (int64, error)
}
