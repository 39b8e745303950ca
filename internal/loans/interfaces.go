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

// Repository defines persistence operations for the loans table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, loan *models.Loan) (*models.Loan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	FindActiveByMemberAndBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.Loan, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Loan, int64, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) ([]models.Loan, int64, error)
	ListOutstandingFines(ctx context.Context, memberID *uuid.UUID, params pagination.Params) ([]models.Loan, int64, error)
	FindOverdue(ctx context.Context, cutoff time.Time) ([]models.Loan, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateActive(ctx context.Context, id uuid.UUID, expectedFine *decimal.Decimal, updates map[string]any) (int64, error)
	CountActiveByBook(ctx context.Context, bookID uuid.UUID) (int64, error)
	SumOutstandingFines(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)
}

// ListFilters describe the inputs supported by the loan list.
type ListFilters struct {
	Status   *enums.LoanStatus
	MemberID *uuid.UUID
	BookID   *uuid.UUID
	DueFrom  *time.Time
	DueTo    *time.Time
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type memberFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// ReservationCompleter marks a member's active hold on a title as
// completed once the copy is actually issued to them.
type ReservationCompleter interface {
	CompleteActive(ctx context.Context, tx *gorm.DB, memberID, bookID uuid.UUID) error
}

// Service defines loan lifecycle operations.
type Service interface {
	Issue(ctx context.Context, input IssueInput) (*LoanDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*LoanDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LoanDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*LoanList, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*LoanList, error)
	OutstandingFines(ctx context.Context, memberID *uuid.UUID, params pagination.Params) (*LoanList, error)
	MarkOverdue(ctx context.Context) (OverdueResult, error)
}
