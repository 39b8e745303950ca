package fines

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

// SettleInput captures a fine settlement request.
type SettleInput struct {
	MemberID uuid.UUID
	LoanID   uuid.UUID
	Amount   decimal.Decimal
	Method   enums.PaymentMethod
}

// PaymentDTO is the API shape of a settlement record.
type PaymentDTO struct {
	ID          uuid.UUID           `json:"id"`
	MemberID    uuid.UUID           `json:"member_id"`
	LoanID      uuid.UUID           `json:"loan_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Method      enums.PaymentMethod `json:"method"`
	PaymentDate time.Time           `json:"payment_date"`
}

// PaymentList wraps a page of settlements plus pagination metadata.
type PaymentList struct {
	Payments []PaymentDTO   `json:"payments"`
	Meta     types.PageMeta `json:"meta"`
}

func newPaymentDTO(record models.FinePayment) PaymentDTO {
	return PaymentDTO{
		ID:          record.ID,
		MemberID:    record.MemberID,
		LoanID:      record.LoanID,
		Amount:      record.Amount,
		Method:      record.Method,
		PaymentDate: record.PaymentDate,
	}
}

func newPaymentList(records []models.FinePayment, meta types.PageMeta) *PaymentList {
	list := &PaymentList{
		Payments: make([]PaymentDTO, 0, len(records)),
		Meta:     meta,
	}
	for _, record := range records {
		list.Payments = append(list.Payments, newPaymentDTO(record))
	}
	return list
}
