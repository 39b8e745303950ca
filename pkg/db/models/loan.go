package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehtakaran9/librarium-backend/pkg/enums"
)

// Loan records one copy out with one member. At most one loan per
// (member, book) may sit in an active status at a time.
type Loan struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID   uuid.UUID        `gorm:"column:member_id;type:uuid;not null;index"`
	BookID     uuid.UUID        `gorm:"column:book_id;type:uuid;not null;index"`
	IssueDate  time.Time        `gorm:"column:issue_date;not null"`
	DueDate    time.Time        `gorm:"column:due_date;not null"`
	ReturnDate *time.Time       `gorm:"column:return_date"`
	Status     enums.LoanStatus `gorm:"column:status;type:loan_status;not null;default:'issued'"`
	Fine       decimal.Decimal  `gorm:"column:fine;type:numeric(10,2);not null;default:0"`
	Member     *Member          `gorm:"foreignKey:MemberID"`
	Book       *Book            `gorm:"foreignKey:BookID"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
