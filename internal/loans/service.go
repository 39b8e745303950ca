// Package loans implements the checkout lifecycle: issuing copies,
// status transitions, the overdue sweep, and fine accrual.
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/internal/inventory"
	"github.com/mehtakaran9/librarium-backend/pkg/config"
	"github.com/mehtakaran9/librarium-backend/pkg/db"
	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

type service struct {
	repo         Repository
	tx           txRunner
	members      memberFinder
	books        bookFinder
	reservations ReservationCompleter
	rules        config.CirculationConfig
	fineRate     decimal.Decimal
	log          *logger.Logger
	now          func() time.Time
}

// NewService builds a loan service with the required dependencies.
func NewService(repo Repository, tx txRunner, members memberFinder, books bookFinder, reservations ReservationCompleter, rules config.CirculationConfig, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loans repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if members == nil {
		return nil, fmt.Errorf("member finder required")
	}
	if books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if reservations == nil {
		return nil, fmt.Errorf("reservation completer required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		members:      members,
		books:        books,
		reservations: reservations,
		rules:        rules,
		fineRate:     decimal.NewFromInt(int64(rules.FineRatePerDay)),
		log:          log,
		now:          time.Now,
	}, nil
}

// Issue checks a copy out to a member. The stock decrement, the loan
// row, and the reservation completion commit or roll back together.
func (s *service) Issue(ctx context.Context, input IssueInput) (*LoanDTO, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if input.BookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	days := s.rules.DefaultLoanDays
	if input.Days != nil {
		days = *input.Days
	}
	if days < s.rules.MinLoanDays || days > s.rules.MaxLoanDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("loan period must be between %d and %d days", s.rules.MinLoanDays, s.rules.MaxLoanDays))
	}

	if _, err := s.members.FindByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	book, err := s.books.FindByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	if _, err := s.repo.FindActiveByMemberAndBook(ctx, input.MemberID, input.BookID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateLoan, "member already has this title checked out")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active loans")
	}

	now := s.now().UTC()
	loan := &models.Loan{
		ID:        uuid.New(),
		MemberID:  input.MemberID,
		BookID:    input.BookID,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, days),
		Status:    enums.LoanStatusIssued,
		Fine:      decimal.Zero,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := inventory.ReserveCopy(ctx, tx, input.BookID); err != nil {
			return err
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, loan); err != nil {
			// the partial unique index on active (member, book) pairs
			// catches the race two concurrent issues can slip past the
			// read above
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeDuplicateLoan, "member already has this title checked out")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create loan")
		}
		return s.reservations.CompleteActive(ctx, tx, input.MemberID, input.BookID)
	})
	if err != nil {
		return nil, err
	}

	loan.Book = book
	dto := newLoanDTO(*loan)
	return &dto, nil
}

// UpdateStatus moves a loan between issued, late, and returned.
// Returned is terminal, and a loan carrying an unpaid fine cannot be
// returned until the fine is settled.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*LoanDTO, error) {
	if input.LoanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid loan status")
	}

	loan, err := s.repo.FindByID(ctx, input.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan")
	}

	if loan.Status == enums.LoanStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "loan already returned")
	}
	if loan.Status == input.Status {
		dto := newLoanDTO(*loan)
		return &dto, nil
	}

	if input.Status != enums.LoanStatusReturned {
		// guard on active status so a concurrent return cannot be
		// flipped back to issued or late
		rows, err := s.repo.UpdateActive(ctx, loan.ID, nil, map[string]any{"status": input.Status})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update loan status")
		}
		if rows == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "loan already returned")
		}
		loan.Status = input.Status
		dto := newLoanDTO(*loan)
		return &dto, nil
	}

	if loan.Fine.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeFineOutstanding, "outstanding fine must be settled before return")
	}

	returnedAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// the fine guard re-checks the read above inside the
		// transaction: if the sweep charged the loan or a settlement
		// already returned it, zero rows come back and nothing commits
		zero := decimal.Zero
		rows, err := s.repo.WithTx(tx).UpdateActive(ctx, loan.ID, &zero, map[string]any{
			"status":      enums.LoanStatusReturned,
			"return_date": returnedAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update loan status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "loan changed before return could complete")
		}
		return inventory.ReleaseCopy(ctx, tx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}

	loan.Status = enums.LoanStatusReturned
	loan.ReturnDate = &returnedAt
	dto := newLoanDTO(*loan)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*LoanDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan id required")
	}
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan")
	}
	dto := newLoanDTO(*loan)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*LoanList, error) {
	params = params.Normalize("-issue_date")
	records, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list loans")
	}
	return newLoanList(records, params.MetaFor(total)), nil
}

func (s *service) ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*LoanList, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	params = params.Normalize("-issue_date")
	records, total, err := s.repo.ListByMember(ctx, memberID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list member loans")
	}
	return newLoanList(records, params.MetaFor(total)), nil
}

func (s *service) OutstandingFines(ctx context.Context, memberID *uuid.UUID, params pagination.Params) (*LoanList, error) {
	params = params.Normalize("-fine")
	records, total, err := s.repo.ListOutstandingFines(ctx, memberID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list outstanding fines")
	}
	return newLoanList(records, params.MetaFor(total)), nil
}

// MarkOverdue is the hourly sweep. For every active loan past its due
// date it sets status to late and recomputes the fine from scratch, so
// a rerun after a crash converges to the same totals instead of
// double-charging. A failed loan is logged and skipped; the pass keeps
// going.
func (s *service) MarkOverdue(ctx context.Context) (OverdueResult, error) {
	now := s.now().UTC()
	overdue, err := s.repo.FindOverdue(ctx, now)
	if err != nil {
		return OverdueResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find overdue loans")
	}

	result := OverdueResult{Scanned: len(overdue)}
	for _, loan := range overdue {
		fine := s.fineFor(loan.DueDate, now)
		updates := map[string]any{}
		if loan.Status != enums.LoanStatusLate {
			updates["status"] = enums.LoanStatusLate
		}
		if !loan.Fine.Equal(fine) {
			updates["fine"] = fine
		}
		if len(updates) == 0 {
			continue
		}
		rows, err := s.repo.UpdateActive(ctx, loan.ID, nil, updates)
		if err != nil {
			s.log.Error(s.log.WithField(ctx, "loan_id", loan.ID.String()), "overdue sweep: update loan", err)
			result.Skipped++
			continue
		}
		if rows == 0 {
			// returned or settled since the scan; nothing to charge
			continue
		}
		if _, ok := updates["status"]; ok {
			result.MarkedLate++
		}
		if _, ok := updates["fine"]; ok {
			result.FineUpdates++
		}
	}
	return result, nil
}

// fineFor charges the daily rate per whole day late. A loan less than
// 24 hours past due is late but owes nothing yet.
func (s *service) fineFor(due, now time.Time) decimal.Decimal {
	if !now.After(due) {
		return decimal.Zero
	}
	wholeDays := int64(now.Sub(due) / (24 * time.Hour))
	if wholeDays < 1 {
		return decimal.Zero
	}
	return s.fineRate.Mul(decimal.NewFromInt(wholeDays))
}
