// Package fines settles overdue charges. Settlement is the only path
// back to the shelf for a loan carrying a fine: the payment record,
// the zeroed fine, the return, and the stock increment commit as one
// transaction.
package fines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/internal/inventory"
	"github.com/mehtakaran9/librarium-backend/internal/loans"
	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

type service struct {
	repo    Repository
	loans   loans.Repository
	members memberFinder
	tx      txRunner
	now     func() time.Time
}

// NewService builds a fine settlement service with the required dependencies.
func NewService(repo Repository, loanRepo loans.Repository, members memberFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fine payments repository required")
	}
	if loanRepo == nil {
		return nil, fmt.Errorf("loans repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("member finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		loans:   loanRepo,
		members: members,
		tx:      tx,
		now:     time.Now,
	}, nil
}

// Settle accepts exact payment for a loan's outstanding fine, records
// it, and completes the return.
func (s *service) Settle(ctx context.Context, input SettleInput) (*PaymentDTO, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if input.LoanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan id required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	if _, err := s.members.FindByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	loan, err := s.loans.FindByID(ctx, input.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan")
	}
	if loan.MemberID != input.MemberID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found for member")
	}
	if !loan.Fine.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeNothingDue, "loan has no outstanding fine")
	}
	if !input.Amount.Equal(loan.Fine) {
		return nil, pkgerrors.New(pkgerrors.CodeAmountMismatch,
			fmt.Sprintf("amount %s does not match outstanding fine %s", input.Amount, loan.Fine))
	}

	now := s.now().UTC()
	payment := &models.FinePayment{
		ID:          uuid.New(),
		MemberID:    input.MemberID,
		LoanID:      loan.ID,
		Amount:      input.Amount,
		Method:      input.Method,
		PaymentDate: now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fine payment")
		}
		// the update is guarded on the fine read above: if another
		// settlement or the sweep moved the loan in the meantime, zero
		// rows come back, the payment rolls back with the transaction,
		// and the copy is not credited twice
		rows, err := s.loans.WithTx(tx).UpdateActive(ctx, loan.ID, &loan.Fine, map[string]any{
			"fine":        decimal.Zero,
			"status":      enums.LoanStatusReturned,
			"return_date": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle loan")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNothingDue, "fine already settled or changed")
		}
		return inventory.ReleaseCopy(ctx, tx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}

	dto := newPaymentDTO(*payment)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	dto := newPaymentDTO(*record)
	return &dto, nil
}

func (s *service) History(ctx context.Context, params pagination.Params, filters ListFilters) (*PaymentList, error) {
	params = params.Normalize("-payment_date")
	records, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return newPaymentList(records, params.MetaFor(total)), nil
}

func (s *service) PaymentsByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*PaymentList, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.History(ctx, params, ListFilters{MemberID: &memberID})
}
