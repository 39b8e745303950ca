package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

// Repository defines persistence operations for the reviews table.
type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByMemberAndBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.Review, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Review, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilters describe the inputs supported by the review list.
type ListFilters struct {
	MemberID *uuid.UUID
	BookID   *uuid.UUID
}

type memberFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Service defines review operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*ReviewDTO, error)
	Update(ctx context.Context, input UpdateInput) (*ReviewDTO, error)
	Delete(ctx context.Context, input DeleteInput) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReviewList, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*ReviewList, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, params pagination.Params) (*ReviewList, error)
}
