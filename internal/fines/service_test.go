package fines

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/internal/loans"
	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type dbMemberFinder struct {
	db *gorm.DB
}

func (f dbMemberFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := f.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

type fixture struct {
	db  *gorm.DB
	svc *service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:fines_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	members := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'member',
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	books := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  publisher TEXT,
  isbn TEXT NOT NULL UNIQUE,
  genre TEXT,
  publication_year INTEGER,
  total_copies INTEGER NOT NULL DEFAULT 0,
  available_copies INTEGER NOT NULL DEFAULT 0,
  shelf_location TEXT,
  summary TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	loanRows := `
CREATE TABLE IF NOT EXISTS loans (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  issue_date DATETIME NOT NULL,
  due_date DATETIME NOT NULL,
  return_date DATETIME,
  status TEXT NOT NULL DEFAULT 'issued',
  fine NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS fine_payments (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  loan_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  method TEXT NOT NULL,
  payment_date DATETIME NOT NULL,
  created_at DATETIME
);`
	for _, stmt := range []string{members, books, loanRows, payments} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	svc, err := NewService(NewRepository(db), loans.NewRepository(db), dbMemberFinder{db: db}, testTxRunner{db: db})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{db: db, svc: svc.(*service)}
}

// seedLateLoan creates a member, a fully checked-out book, and a late
// loan carrying the given fine.
func (f *fixture) seedLateLoan(t *testing.T, fine decimal.Decimal) (models.Member, models.Book, models.Loan) {
	t.Helper()
	member := models.Member{
		ID:           uuid.New(),
		Name:         "Priya Iyer",
		Email:        uuid.NewString() + "@example.org",
		Role:         enums.MemberRoleMember,
		PasswordHash: "x",
	}
	if err := f.db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	book := models.Book{
		ID:              uuid.New(),
		Title:           "The God of Small Things",
		Author:          "Arundhati Roy",
		ISBN:            uuid.NewString(),
		TotalCopies:     1,
		AvailableCopies: 0,
	}
	if err := f.db.Create(&book).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	issued := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	loan := models.Loan{
		ID:        uuid.New(),
		MemberID:  member.ID,
		BookID:    book.ID,
		IssueDate: issued,
		DueDate:   issued.AddDate(0, 0, 14),
		Status:    enums.LoanStatusLate,
		Fine:      fine,
	}
	if err := f.db.Create(&loan).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return member, book, loan
}

func TestSettle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	member, book, loan := f.seedLateLoan(t, decimal.NewFromInt(30))

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return paidAt }

	dto, err := f.svc.Settle(ctx, SettleInput{
		MemberID: member.ID,
		LoanID:   loan.ID,
		Amount:   decimal.NewFromInt(30),
		Method:   enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !dto.Amount.Equal(decimal.NewFromInt(30)) || dto.Method != enums.PaymentMethodCard {
		t.Fatalf("unexpected payment: %+v", dto)
	}
	if !dto.PaymentDate.Equal(paidAt) {
		t.Fatalf("payment date %v", dto.PaymentDate)
	}

	var got models.Loan
	if err := f.db.First(&got, "id = ?", loan.ID).Error; err != nil {
		t.Fatalf("load loan: %v", err)
	}
	if got.Status != enums.LoanStatusReturned || !got.Fine.IsZero() || got.ReturnDate == nil {
		t.Fatalf("loan not settled: status=%s fine=%s", got.Status, got.Fine)
	}

	var shelf models.Book
	if err := f.db.First(&shelf, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("load book: %v", err)
	}
	if shelf.AvailableCopies != 1 {
		t.Fatalf("copy not released: %d", shelf.AvailableCopies)
	}

	// second settle finds nothing due
	_, err = f.svc.Settle(ctx, SettleInput{
		MemberID: member.ID,
		LoanID:   loan.ID,
		Amount:   decimal.NewFromInt(30),
		Method:   enums.PaymentMethodCard,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNothingDue) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSettleAmountMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	member, _, loan := f.seedLateLoan(t, decimal.NewFromInt(30))

	for _, amount := range []int64{10, 40} {
		_, err := f.svc.Settle(ctx, SettleInput{
			MemberID: member.ID,
			LoanID:   loan.ID,
			Amount:   decimal.NewFromInt(amount),
			Method:   enums.PaymentMethodCash,
		})
		if !pkgerrors.IsCode(err, pkgerrors.CodeAmountMismatch) {
			t.Fatalf("amount=%d: unexpected error %v", amount, err)
		}
	}

	// partial payments must leave the loan untouched
	var got models.Loan
	if err := f.db.First(&got, "id = ?", loan.ID).Error; err != nil {
		t.Fatalf("load loan: %v", err)
	}
	if got.Status != enums.LoanStatusLate || !got.Fine.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("loan mutated: status=%s fine=%s", got.Status, got.Fine)
	}
}

func TestSettleWrongMember(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	_, _, loan := f.seedLateLoan(t, decimal.NewFromInt(20))

	stranger := models.Member{
		ID:           uuid.New(),
		Name:         "Dev Kapoor",
		Email:        uuid.NewString() + "@example.org",
		Role:         enums.MemberRoleMember,
		PasswordHash: "x",
	}
	if err := f.db.Create(&stranger).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	_, err := f.svc.Settle(ctx, SettleInput{
		MemberID: stranger.ID,
		LoanID:   loan.ID,
		Amount:   decimal.NewFromInt(20),
		Method:   enums.PaymentMethodOnline,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSettleValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	member, _, loan := f.seedLateLoan(t, decimal.NewFromInt(20))

	cases := []SettleInput{
		{MemberID: member.ID, LoanID: loan.ID, Amount: decimal.NewFromInt(20), Method: "cheque"},
		{MemberID: member.ID, LoanID: loan.ID, Amount: decimal.Zero, Method: enums.PaymentMethodCash},
		{MemberID: member.ID, LoanID: loan.ID, Amount: decimal.NewFromInt(-5), Method: enums.PaymentMethodCash},
	}
	for i, input := range cases {
		if _, err := f.svc.Settle(ctx, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
	}
}

func TestPaymentsByMember(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	member, _, loan := f.seedLateLoan(t, decimal.NewFromInt(50))

	if _, err := f.svc.Settle(ctx, SettleInput{
		MemberID: member.ID,
		LoanID:   loan.ID,
		Amount:   decimal.NewFromInt(50),
		Method:   enums.PaymentMethodOnline,
	}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	list, err := f.svc.PaymentsByMember(ctx, member.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	if len(list.Payments) != 1 || list.Meta.Total != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if !list.Payments[0].Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("amount %s", list.Payments[0].Amount)
	}

	other, err := f.svc.PaymentsByMember(ctx, uuid.New(), pagination.Params{})
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	if len(other.Payments) != 0 {
		t.Fatalf("expected empty history, got %d", len(other.Payments))
	}
}

// staleLoanRepo serves a snapshot of the loan taken before a concurrent
// settlement committed; writes still hit the real repository.
type staleLoanRepo struct {
	loans.Repository
	snapshot models.Loan
}

func (r staleLoanRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	if id == r.snapshot.ID {
		stale := r.snapshot
		return &stale, nil
	}
	return r.Repository.FindByID(ctx, id)
}

func TestSettleStaleReadCannotDoubleSettle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	member, book, loan := f.seedLateLoan(t, decimal.NewFromInt(30))

	input := SettleInput{
		MemberID: member.ID,
		LoanID:   loan.ID,
		Amount:   decimal.NewFromInt(30),
		Method:   enums.PaymentMethodCard,
	}
	if _, err := f.svc.Settle(ctx, input); err != nil {
		t.Fatalf("settle: %v", err)
	}

	// a second cashier whose read of the loan predates the first
	// settlement: the checks above the transaction all pass, so only
	// the guarded update can stop the double payment
	stale, err := NewService(
		NewRepository(f.db),
		staleLoanRepo{Repository: loans.NewRepository(f.db), snapshot: loan},
		dbMemberFinder{db: f.db},
		testTxRunner{db: f.db},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := stale.Settle(ctx, input); !pkgerrors.IsCode(err, pkgerrors.CodeNothingDue) {
		t.Fatalf("unexpected error: %v", err)
	}

	var payments int64
	if err := f.db.Model(&models.FinePayment{}).Where("loan_id = ?", loan.ID).Count(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if payments != 1 {
		t.Fatalf("expected one payment, got %d", payments)
	}

	var shelf models.Book
	if err := f.db.First(&shelf, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("load book: %v", err)
	}
	if shelf.AvailableCopies != 1 {
		t.Fatalf("copy credited twice: %d available", shelf.AvailableCopies)
	}
}
