// Package books manages the catalog. Copy counters are owned by the
// inventory ledger; catalog edits go through AdjustTotalCopies so a
// shrink can never strand copies that are out on loan.
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/internal/inventory"
	"github.com/mehtakaran9/librarium-backend/pkg/db"
	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

type service struct {
	repo  Repository
	tx    txRunner
	loans activeLoanCounter
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, loans activeLoanCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if loans == nil {
		return nil, fmt.Errorf("loan counter required")
	}
	return &service{repo: repo, tx: tx, loans: loans}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BookDTO, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Author) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author required")
	}
	if strings.TrimSpace(input.ISBN) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn required")
	}
	if input.TotalCopies < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_copies cannot be negative")
	}

	book := &models.Book{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(input.Title),
		Author:          strings.TrimSpace(input.Author),
		Publisher:       input.Publisher,
		ISBN:            strings.TrimSpace(input.ISBN),
		Genre:           input.Genre,
		PublicationYear: input.PublicationYear,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		ShelfLocation:   input.ShelfLocation,
		Summary:         input.Summary,
	}
	if _, err := s.repo.Create(ctx, book); err != nil {
		if db.IsUniqueViolation(err, "isbn") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a title with this isbn already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
	}

	dto := newBookDTO(*book)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*BookDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	dto := newBookDTO(*book)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error) {
	params = params.Normalize("title")
	records, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return newBookList(records, params.MetaFor(total)), nil
}

// Update applies a partial catalog edit. A total_copies change routes
// through the ledger so the shelf count moves with it atomically.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BookDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		if strings.TrimSpace(*input.Author) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "author cannot be empty")
		}
		updates["author"] = strings.TrimSpace(*input.Author)
	}
	if input.Publisher != nil {
		updates["publisher"] = *input.Publisher
	}
	if input.Genre != nil {
		updates["genre"] = *input.Genre
	}
	if input.PublicationYear != nil {
		updates["publication_year"] = *input.PublicationYear
	}
	if input.ShelfLocation != nil {
		updates["shelf_location"] = *input.ShelfLocation
	}
	if input.Summary != nil {
		updates["summary"] = *input.Summary
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
			}
		}
		if input.TotalCopies != nil {
			return inventory.AdjustTotalCopies(ctx, tx, id, *input.TotalCopies)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a title. Copies out with members block the delete.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	outstanding, err := s.loans.CountActiveByBook(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active loans")
	}
	if outstanding > 0 {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation, "title has copies on loan")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
	}
	return nil
}
