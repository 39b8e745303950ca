package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

// AddInput captures a new review.
type AddInput struct {
	MemberID uuid.UUID
	BookID   uuid.UUID
	Rating   int
	Comment  string
}

// UpdateInput edits an existing review. MemberID, when set, restricts
// the edit to the review's author.
type UpdateInput struct {
	ReviewID uuid.UUID
	MemberID *uuid.UUID
	Rating   *int
	Comment  *string
}

// DeleteInput removes a review. MemberID, when set, restricts the
// delete to the review's author.
type DeleteInput struct {
	ReviewID uuid.UUID
	MemberID *uuid.UUID
}

// MemberSummary is the directory slice embedded in review responses.
type MemberSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReviewDTO is the API shape of a review.
type ReviewDTO struct {
	ID        uuid.UUID      `json:"id"`
	MemberID  uuid.UUID      `json:"member_id"`
	BookID    uuid.UUID      `json:"book_id"`
	Rating    int            `json:"rating"`
	Comment   string         `json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
	Member    *MemberSummary `json:"member,omitempty"`
	Book      *BookSummary   `json:"book,omitempty"`
}

// BookSummary is the catalog slice embedded in review responses.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}

// ReviewList wraps a page of reviews plus pagination metadata.
type ReviewList struct {
	Reviews []ReviewDTO    `json:"reviews"`
	Meta    types.PageMeta `json:"meta"`
}

func newReviewDTO(record models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        record.ID,
		MemberID:  record.MemberID,
		BookID:    record.BookID,
		Rating:    record.Rating,
		Comment:   record.Comment,
		CreatedAt: record.CreatedAt,
	}
	if record.Member != nil {
		dto.Member = &MemberSummary{ID: record.Member.ID, Name: record.Member.Name}
	}
	if record.Book != nil {
		dto.Book = &BookSummary{
			ID:     record.Book.ID,
			Title:  record.Book.Title,
			Author: record.Book.Author,
			ISBN:   record.Book.ISBN,
		}
	}
	return dto
}

func newReviewList(records []models.Review, meta types.PageMeta) *ReviewList {
	list := &ReviewList{
		Reviews: make([]ReviewDTO, 0, len(records)),
		Meta:    meta,
	}
	for _, record := range records {
		list.Reviews = append(list.Reviews, newReviewDTO(record))
	}
	return list
}
