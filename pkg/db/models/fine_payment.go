package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehtakaran9/librarium-backend/pkg/enums"
)

// FinePayment is an immutable settlement record for one loan's fine.
type FinePayment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID    uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	LoanID      uuid.UUID           `gorm:"column:loan_id;type:uuid;not null;index"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Method      enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	PaymentDate time.Time           `gorm:"column:payment_date;not null"`
	Loan        *Loan               `gorm:"foreignKey:LoanID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
