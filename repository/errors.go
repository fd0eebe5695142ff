package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicatePayment is returned when a payment id was already applied to a project
	ErrDuplicatePayment = errors.New("payment already applied to project")
	// ErrDuplicateEmail is returned when a unique email is reused
	ErrDuplicateEmail = errors.New("email already in use")
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation.
// Drivers without error translation are matched on their message.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	// postgres 23505
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		return true
	}
	// sqlite 2067
	return strings.Contains(msg, "UNIQUE constraint failed")
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
