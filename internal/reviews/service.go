// Package reviews lets members rate titles they have read. One review
// per member per title; members edit and delete only their own.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/db"
	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

const (
	minRating = 1
	maxRating = 5
)

type service struct {
	repo    Repository
	members memberFinder
	books   bookFinder
}

// NewService builds a review service with the required dependencies.
func NewService(repo Repository, members memberFinder, books bookFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("member finder required")
	}
	if books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	return &service{repo: repo, members: members, books: books}, nil
}

// Add records a member's review of a title.
func (s *service) Add(ctx context.Context, input AddInput) (*ReviewDTO, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if input.BookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}

	member, err := s.members.FindByID(ctx, input.MemberID)
	if err != nil {
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

	if _, err := s.repo.FindByMemberAndBook(ctx, input.MemberID, input.BookID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member already reviewed this title")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	record := &models.Review{
		ID:       uuid.New(),
		MemberID: input.MemberID,
		BookID:   input.BookID,
		Rating:   input.Rating,
		Comment:  strings.TrimSpace(input.Comment),
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "member already reviewed this title")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	record.Member = member
	record.Book = book
	dto := newReviewDTO(*record)
	return &dto, nil
}

// Update edits a review's rating or comment.
func (s *service) Update(ctx context.Context, input UpdateInput) (*ReviewDTO, error) {
	if input.ReviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id required")
	}
	if input.Rating == nil && input.Comment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if input.Rating != nil && (*input.Rating < minRating || *input.Rating > maxRating) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}

	record, err := s.repo.FindByID(ctx, input.ReviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if input.MemberID != nil && record.MemberID != *input.MemberID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another member")
	}

	updates := map[string]any{}
	if input.Rating != nil {
		updates["rating"] = *input.Rating
		record.Rating = *input.Rating
	}
	if input.Comment != nil {
		comment := strings.TrimSpace(*input.Comment)
		updates["comment"] = comment
		record.Comment = comment
	}
	if err := s.repo.Update(ctx, record.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}

	dto := newReviewDTO(*record)
	return &dto, nil
}

// Delete removes a review.
func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.ReviewID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "review id required")
	}

	record, err := s.repo.FindByID(ctx, input.ReviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if input.MemberID != nil && record.MemberID != *input.MemberID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another member")
	}

	if err := s.repo.Delete(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReviewList, error) {
	params = params.Normalize("-created_at")
	records, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return newReviewList(records, params.MetaFor(total)), nil
}

func (s *service) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	return s.List(ctx, params, ListFilters{BookID: &bookID})
}

func (s *service) ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.List(ctx, params, ListFilters{MemberID: &memberID})
}
