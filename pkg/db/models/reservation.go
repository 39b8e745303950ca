package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/pkg/enums"
)

// Reservation is a hold on a title with a fixed pickup window.
type Reservation struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID     uuid.UUID               `gorm:"column:member_id;type:uuid;not null;index"`
	BookID       uuid.UUID               `gorm:"column:book_id;type:uuid;not null;index"`
	ReservedDate time.Time               `gorm:"column:reserved_date;not null"`
	ExpiryDate   time.Time               `gorm:"column:expiry_date;not null"`
	Status       enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'active'"`
	Member       *Member                 `gorm:"foreignKey:MemberID"`
	Book         *Book                   `gorm:"foreignKey:BookID"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
