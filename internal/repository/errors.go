package repository

import (
	"errors"

	"github.com/lib/pq"
)

// pq unique_violation class code.
const uniqueViolationCode = "23505"

// ErrDraftApplication is returned when a review operation targets a row
// that is still a draft. Distinct from sql.ErrNoRows so a missing id and a
// draft target map to different HTTP errors.
var ErrDraftApplication = errors.New("application is still a draft")

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. Callers use it to retry reference number generation and to
// map duplicate emails to conflicts.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
