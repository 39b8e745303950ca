// Package reservations implements holds: placing, cancelling, and the
// expiry sweep that closes lapsed pickup windows.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/config"
	"github.com/mehtakaran9/librarium-backend/pkg/db"
	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

type service struct {
	repo    Repository
	members memberFinder
	books   bookFinder
	loans   activeLoanChecker
	rules   config.CirculationConfig
	now     func() time.Time
}

// NewService builds a reservation service with the required dependencies.
func NewService(repo Repository, members memberFinder, books bookFinder, loans activeLoanChecker, rules config.CirculationConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("member finder required")
	}
	if books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if loans == nil {
		return nil, fmt.Errorf("loan checker required")
	}
	return &service{
		repo:    repo,
		members: members,
		books:   books,
		loans:   loans,
		rules:   rules,
		now:     time.Now,
	}, nil
}

// Reserve places a hold on a title. A member may hold at most one
// active reservation per title, and cannot reserve a title they
// already have checked out.
func (s *service) Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if input.BookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
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
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyReserved, "member already holds this title")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active reservations")
	}
	if _, err := s.loans.FindActiveByMemberAndBook(ctx, input.MemberID, input.BookID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyBorrowed, "member already has this title checked out")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active loans")
	}

	now := s.now().UTC()
	record := &models.Reservation{
		ID:           uuid.New(),
		MemberID:     input.MemberID,
		BookID:       input.BookID,
		ReservedDate: now,
		ExpiryDate:   now.AddDate(0, 0, s.rules.ReservationWindowDays),
		Status:       enums.ReservationStatusActive,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		// the partial unique index on active (member, book) holds
		// catches the race two concurrent reserves can slip past the
		// read above
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyReserved, "member already holds this title")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}

	record.Book = book
	dto := newReservationDTO(*record)
	return &dto, nil
}

// Cancel closes an active hold. Terminal reservations stay as they are.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*ReservationDTO, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	record, err := s.repo.FindByID(ctx, input.ReservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if input.MemberID != nil && record.MemberID != *input.MemberID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reservation belongs to another member")
	}
	if record.Status != enums.ReservationStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "reservation is not active")
	}

	if err := s.repo.Update(ctx, record.ID, map[string]any{"status": enums.ReservationStatusCancelled}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel reservation")
	}

	record.Status = enums.ReservationStatusCancelled
	dto := newReservationDTO(*record)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	dto := newReservationDTO(*record)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReservationList, error) {
	params = params.Normalize("-reserved_date")
	records, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return newReservationList(records, params.MetaFor(total)), nil
}

func (s *service) ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*ReservationList, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.List(ctx, params, ListFilters{MemberID: &memberID})
}

// ExpireLapsed is the hourly sweep closing holds whose window passed.
func (s *service) ExpireLapsed(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireLapsed(ctx, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire reservations")
	}
	return expired, nil
}
