package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeOutOfStock, status: http.StatusConflict, publicMsg: "no available copies"},
		{code: CodeDuplicateLoan, status: http.StatusConflict, publicMsg: "book already borrowed by this member"},
		{code: CodeAlreadyReserved, status: http.StatusConflict, publicMsg: "book already reserved by this member"},
		{code: CodeInvalidTransition, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeFineOutstanding, status: http.StatusUnprocessableEntity, publicMsg: "outstanding fine must be settled first", detailsOK: true},
		{code: CodeNothingDue, status: http.StatusUnprocessableEntity, publicMsg: "no outstanding fine"},
		{code: CodeAmountMismatch, status: http.StatusUnprocessableEntity, publicMsg: "payment must match the outstanding fine exactly", detailsOK: true},
		{code: CodeInvariantViolation, status: http.StatusUnprocessableEntity, publicMsg: "write would break a data invariant", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	cause := stdErrors.New("root cause")
	wrapped := Wrap(CodeDependency, cause, "db down")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("wrapped error should unwrap to its cause")
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: db down" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}

	if Wrap(CodeNotFound, nil, "gone").Unwrap() != nil {
		t.Fatal("wrapping nil should produce no cause")
	}
}

func TestAsAndIsCode(t *testing.T) {
	err := New(CodeFineOutstanding, "fine of 60 must be paid before return")
	if As(err) == nil {
		t.Fatal("expected typed error")
	}
	if !IsCode(err, CodeFineOutstanding) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodeNothingDue) {
		t.Fatal("IsCode matched wrong code")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors should not convert")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatal("nil should never match")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeAmountMismatch, "full fine amount required").
		WithDetails(map[string]any{"outstanding": "60"})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["outstanding"] != "60" {
		t.Fatalf("unexpected details %v", details)
	}
}
