package loans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

// IssueInput captures the data required to check a copy out.
type IssueInput struct {
	MemberID uuid.UUID
	BookID   uuid.UUID
	Days     *int
}

// UpdateStatusInput carries a requested loan state change.
type UpdateStatusInput struct {
	LoanID uuid.UUID
	Status enums.LoanStatus
}

// OverdueResult summarizes one overdue sweep pass.
type OverdueResult struct {
	Scanned     int `json:"scanned"`
	MarkedLate  int `json:"marked_late"`
	FineUpdates int `json:"fine_updates"`
	Skipped     int `json:"skipped"`
}

// BookSummary is the catalog slice embedded in loan responses.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}

// LoanDTO is the API shape of a loan.
type LoanDTO struct {
	ID         uuid.UUID        `json:"id"`
	MemberID   uuid.UUID        `json:"member_id"`
	BookID     uuid.UUID        `json:"book_id"`
	IssueDate  time.Time        `json:"issue_date"`
	DueDate    time.Time        `json:"due_date"`
	ReturnDate *time.Time       `json:"return_date,omitempty"`
	Status     enums.LoanStatus `json:"status"`
	Fine       decimal.Decimal  `json:"fine"`
	Book       *BookSummary     `json:"book,omitempty"`
}

// LoanList wraps a page of loans plus pagination metadata.
type LoanList struct {
	Loans []LoanDTO      `json:"loans"`
	Meta  types.PageMeta `json:"meta"`
}

func newLoanDTO(loan models.Loan) LoanDTO {
	dto := LoanDTO{
		ID:         loan.ID,
		MemberID:   loan.MemberID,
		BookID:     loan.BookID,
		IssueDate:  loan.IssueDate,
		DueDate:    loan.DueDate,
		ReturnDate: loan.ReturnDate,
		Status:     loan.Status,
		Fine:       loan.Fine,
	}
	if loan.Book != nil {
		dto.Book = &BookSummary{
			ID:     loan.Book.ID,
			Title:  loan.Book.Title,
			Author: loan.Book.Author,
			ISBN:   loan.Book.ISBN,
		}
	}
	return dto
}

func newLoanList(records []models.Loan, meta types.PageMeta) *LoanList {
	list := &LoanList{
		Loans: make([]LoanDTO, 0, len(records)),
		Meta:  meta,
	}
	for _, record := range records {
		list.Loans = append(list.Loans, newLoanDTO(record))
	}
	return list
}
