// Package inventory owns the available_copies ledger on books. Every
// checkout and return funnels through the conditional updates here so
// the count can never go below zero or above total_copies, regardless
// of how many requests race on the same title.
package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
)

// ReserveCopy takes one copy of the book off the shelf. The guard in
// the WHERE clause is the linearization point: of N concurrent calls
// against a single remaining copy, exactly one update matches a row.
// Returns CodeOutOfStock when no copy is available.
func ReserveCopy(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for copy reservation")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET available_copies = available_copies - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_copies > 0
	`, bookID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve copy")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "no copies available")
	}
	return nil
}

// ReleaseCopy puts one copy back. The guard keeps available_copies
// from ever exceeding total_copies; tripping it means a copy was
// returned that was never checked out.
func ReleaseCopy(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for copy release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET available_copies = available_copies + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_copies < total_copies
	`, bookID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release copy")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation, "all copies already on shelf")
	}
	return nil
}

// AdjustTotalCopies resizes the print run for a title while keeping
// available_copies consistent: the delta between old and new totals is
// applied to available_copies, and the update only matches when the
// result stays within [0, total]. A shrink below the number of copies
// currently out the door does not match any row.
func AdjustTotalCopies(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, newTotal int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for total adjustment")
	}
	if newTotal < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "total_copies cannot be negative")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET available_copies = available_copies + (? - total_copies),
			total_copies = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_copies + (? - total_copies) >= 0
	`, newTotal, newTotal, bookID, newTotal)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust total copies")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation, "total_copies below copies currently on loan")
	}
	return nil
}
