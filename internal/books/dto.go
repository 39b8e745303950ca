package books

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

// CreateInput captures a new catalog title.
type CreateInput struct {
	Title           string
	Author          string
	Publisher       *string
	ISBN            string
	Genre           *string
	PublicationYear *int
	TotalCopies     int
	ShelfLocation   *string
	Summary         *string
}

// UpdateInput carries a partial catalog edit. Nil fields are untouched.
type UpdateInput struct {
	Title           *string
	Author          *string
	Publisher       *string
	Genre           *string
	PublicationYear *int
	TotalCopies     *int
	ShelfLocation   *string
	Summary         *string
}

// BookDTO is the API shape of a catalog title.
type BookDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       *string   `json:"publisher,omitempty"`
	ISBN            string    `json:"isbn"`
	Genre           *string   `json:"genre,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	ShelfLocation   *string   `json:"shelf_location,omitempty"`
	Summary         *string   `json:"summary,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookList wraps a page of titles plus pagination metadata.
type BookList struct {
	Books []BookDTO      `json:"books"`
	Meta  types.PageMeta `json:"meta"`
}

func newBookDTO(book models.Book) BookDTO {
	return BookDTO{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Publisher:       book.Publisher,
		ISBN:            book.ISBN,
		Genre:           book.Genre,
		PublicationYear: book.PublicationYear,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		ShelfLocation:   book.ShelfLocation,
		Summary:         book.Summary,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func newBookList(records []models.Book, meta types.PageMeta) *BookList {
	list := &BookList{
		Books: make([]BookDTO, 0, len(records)),
		Meta:  meta,
	}
	for _, record := range records {
		list.Books = append(list.Books, newBookDTO(record))
	}
	return list
}
