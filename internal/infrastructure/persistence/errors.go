package persistence

import (
	"errors"
	"strings"

	"github.com/payops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation. The GORM postgres driver translates these to ErrDuplicatedKey
// when TranslateError is enabled; the raw SQLSTATE check covers connections
// opened without translation (migrations, test mocks).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// mapNotFound converts gorm's record-not-found sentinel into the domain one.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
