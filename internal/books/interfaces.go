package books

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

// Repository defines persistence operations for the books table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Book, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilters describe the catalog search inputs.
type ListFilters struct {
	Query  string
	Author string
	Genre  string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// activeLoanCounter reports how many copies of a title are currently
// out. Satisfied by the loans repository.
type activeLoanCounter interface {
	CountActiveByBook(ctx context.Context, bookID uuid.UUID) (int64, error)
}

// Service defines catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BookDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BookDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BookDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
