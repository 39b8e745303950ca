package admin

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatsDTO is the dashboard headline block.
type StatsDTO struct {
	TotalTitles        int64           `json:"total_titles"`
	TotalCopies        int64           `json:"total_copies"`
	TotalMembers       int64           `json:"total_members"`
	ActiveLoans        int64           `json:"active_loans"`
	ActiveReservations int64           `json:"active_reservations"`
	FinesCollected     decimal.Decimal `json:"fines_collected"`
}

// Activity types shown on the dashboard feed.
const (
	ActivityBorrow      = "borrow"
	ActivityReturn      = "return"
	ActivityReservation = "reservation"
)

// ActivityDTO is one row of the recent-activity feed.
type ActivityDTO struct {
	Type       string    `json:"type"`
	At         time.Time `json:"at"`
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name,omitempty"`
	BookID     uuid.UUID `json:"book_id"`
	BookTitle  string    `json:"book_title,omitempty"`
}
