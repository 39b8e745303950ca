package enums

import "fmt"

// LoanStatus tracks the lifecycle of a loan.
type LoanStatus string

const (
	LoanStatusIssued   LoanStatus = "issued"
	LoanStatusLate     LoanStatus = "late"
	LoanStatusReturned LoanStatus = "returned"
)

var validLoanStatuses = []LoanStatus{
	LoanStatusIssued,
	LoanStatusLate,
	LoanStatusReturned,
}

// ActiveLoanStatuses are the states in which a copy is still out with a member.
var ActiveLoanStatuses = []LoanStatus{LoanStatusIssued, LoanStatusLate}

// String implements fmt.Stringer.
func (s LoanStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LoanStatus.
func (s LoanStatus) IsValid() bool {
	for _, candidate := range validLoanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether a loan in this status still holds a copy.
func (s LoanStatus) IsActive() bool {
	return s == LoanStatusIssued || s == LoanStatusLate
}

// ParseLoanStatus converts raw input into a LoanStatus.
func ParseLoanStatus(value string) (LoanStatus, error) {
	for _, candidate := range validLoanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan status %q", value)
}
