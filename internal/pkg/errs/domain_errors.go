package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidToken        = errors.New("invalid reservation token")

	// Validation errors
	ErrDomainValidationFailed = errors.New("domain validation failed")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
	ErrNotificationFailed      = errors.New("notification delivery failed")
)
