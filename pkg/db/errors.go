package db

import "strings"

// IsUniqueViolation reports whether err is a unique constraint failure.
// When constraintName is provided the error text must reference that
// constraint; otherwise any unique violation matches. Both the Postgres
// and sqlite message shapes are recognized so the check behaves the same
// against the test DB.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
