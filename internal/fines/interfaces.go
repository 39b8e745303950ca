package fines

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

// Repository defines persistence operations for the fine_payments table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.FinePayment) (*models.FinePayment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.FinePayment, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.FinePayment, int64, error)
}

// ListFilters describe the inputs supported by the payment history list.
type ListFilters struct {
	MemberID *uuid.UUID
	LoanID   *uuid.UUID
	Method   *enums.PaymentMethod
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type memberFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// Service defines fine settlement operations.
type Service interface {
	Settle(ctx context.Context, input SettleInput) (*PaymentDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentDTO, error)
	History(ctx context.Context, params pagination.Params, filters ListFilters) (*PaymentList, error)
	PaymentsByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*PaymentList, error)
}
