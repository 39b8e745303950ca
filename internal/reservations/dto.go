package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

// ReserveInput captures the data required to place a hold.
type ReserveInput struct {
	MemberID uuid.UUID
	BookID   uuid.UUID
}

// CancelInput carries a cancellation request. MemberID, when set,
// restricts the cancel to the reservation's owner.
type CancelInput struct {
	ReservationID uuid.UUID
	MemberID      *uuid.UUID
}

// BookSummary is the catalog slice embedded in reservation responses.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}

// ReservationDTO is the API shape of a hold.
type ReservationDTO struct {
	ID           uuid.UUID               `json:"id"`
	MemberID     uuid.UUID               `json:"member_id"`
	BookID       uuid.UUID               `json:"book_id"`
	ReservedDate time.Time               `json:"reserved_date"`
	ExpiryDate   time.Time               `json:"expiry_date"`
	Status       enums.ReservationStatus `json:"status"`
	Book         *BookSummary            `json:"book,omitempty"`
}

// ReservationList wraps a page of holds plus pagination metadata.
type ReservationList struct {
	Reservations []ReservationDTO `json:"reservations"`
	Meta         types.PageMeta   `json:"meta"`
}

func newReservationDTO(record models.Reservation) ReservationDTO {
	dto := ReservationDTO{
		ID:           record.ID,
		MemberID:     record.MemberID,
		BookID:       record.BookID,
		ReservedDate: record.ReservedDate,
		ExpiryDate:   record.ExpiryDate,
		Status:       record.Status,
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

func newReservationList(records []models.Reservation, meta types.PageMeta) *ReservationList {
	list := &ReservationList{
		Reservations: make([]ReservationDTO, 0, len(records)),
		Meta:         meta,
	}
	for _, record := range records {
		list.Reservations = append(list.Reservations, newReservationDTO(record))
	}
	return list
}
