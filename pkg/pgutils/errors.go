// Package pgutils contains small PostgreSQL helpers shared by repositories.
package pgutils

import (
	"strings"
)

// PostgreSQL error codes, class 23 (integrity constraint violation).
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// IsUniqueViolation checks if the error is a unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return containsErrorCode(err, CodeUniqueViolation)
}

// IsForeignKeyViolation checks if the error is a foreign key violation (23503).
func IsForeignKeyViolation(err error) bool {
	return containsErrorCode(err, CodeForeignKeyViolation)
}

// containsErrorCode checks if the error message carries a PostgreSQL error
// code. The drivers in use surface codes as "SQLSTATE <code>" in the message.
func containsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), code)
}
