package models

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog title. AvailableCopies is the circulation ledger:
// it only moves through the conditional updates in internal/inventory.
type Book struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string    `gorm:"column:title;not null"`
	Author          string    `gorm:"column:author;not null"`
	Publisher       *string   `gorm:"column:publisher"`
	ISBN            string    `gorm:"column:isbn;type:text;not null;uniqueIndex"`
	Genre           *string   `gorm:"column:genre"`
	PublicationYear *int      `gorm:"column:publication_year"`
	TotalCopies     int       `gorm:"column:total_copies;not null;default:0"`
	AvailableCopies int       `gorm:"column:available_copies;not null;default:0"`
	ShelfLocation   *string   `gorm:"column:shelf_location"`
	Summary         *string   `gorm:"column:summary"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
