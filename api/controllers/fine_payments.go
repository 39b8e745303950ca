package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehtakaran9/librarium-backend/api/responses"
	"github.com/mehtakaran9/librarium-backend/api/validators"
	finesvc "github.com/mehtakaran9/librarium-backend/internal/fines"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
)

type settleFineRequest struct {
	LoanID uuid.UUID       `json:"loan_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required"`
	// MemberID is staff-only; members always settle their own fines.
	MemberID *uuid.UUID `json:"member_id,omitempty"`
}

// FineSettle records an exact payment and closes the loan in one transaction.
func FineSettle(svc finesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fine service unavailable"))
			return
		}

		var payload settleFineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		memberID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.MemberID != nil && *payload.MemberID != memberID {
			if !actorIsStaff(r) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "members can only settle their own fines"))
				return
			}
			memberID = *payload.MemberID
		}

		payment, err := svc.Settle(r.Context(), finesvc.SettleInput{
			MemberID: memberID,
			LoanID:   payload.LoanID,
			Amount:   payload.Amount,
			Method:   method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

func FinePaymentDetail(svc finesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fine service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireSelfOrStaff(r, payment.MemberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payment)
	}
}

// FinePaymentHistory pages through all settlements with member, loan, and
// method filters.
func FinePaymentHistory(svc finesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fine service unavailable"))
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters finesvc.ListFilters
		if filters.MemberID, err = validators.ParseQueryUUID(r, "member_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.LoanID, err = validators.ParseQueryUUID(r, "loan_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("method")); raw != "" {
			method, err := enums.ParsePaymentMethod(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method filter"))
				return
			}
			filters.Method = &method
		}

		list, err := svc.History(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// FinePaymentsByMember lists one member's settlements. Members can only read
// their own.
func FinePaymentsByMember(svc finesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fine service unavailable"))
			return
		}

		memberID, err := pathUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireSelfOrStaff(r, memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.PaymentsByMember(r.Context(), memberID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
