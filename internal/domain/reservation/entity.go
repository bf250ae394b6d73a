package reservation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingGuestName  = errors.New("guest name is required")
	ErrMissingGuestEmail = errors.New("guest email is required")
	ErrMissingGuestPhone = errors.New("guest phone is required")
	ErrMissingDate       = errors.New("date is required")
	ErrMissingTime       = errors.New("time is required")
	ErrMissingDiners     = errors.New("diners is required")
	ErrMissingSeating    = errors.New("seating is required")
	ErrMissingPickup     = errors.New("pickup is required")
	ErrInvalidDateFormat = errors.New("date must be formatted as YYYY-MM-DD")
	ErrAlreadyDecided    = errors.New("reservation is already decided")
	ErrMissingReason     = errors.New("denial reason is required")
)

const dateLayout = "2006-01-02"

// Details carries the customer-supplied booking fields. The workflow treats
// them as opaque beyond presence; semantic validation belongs to the intake
// form, not here.
type Details struct {
	Name    string
	Email   string
	Phone   string
	Date    string
	Time    string
	Diners  string
	Seating string
	Pickup  string
}

type Reservation struct {
	id           uuid.UUID
	token        uuid.UUID
	details      Details
	status       Status
	denialReason *string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewReservation builds a Pending reservation with a fresh ID and an opaque
// rebooking token. The date must parse so the operator summary and the list
// ordering stay sane; everything else is presence-checked only.
func NewReservation(details Details) (*Reservation, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	return &Reservation{
		id:      uuid.New(),
		token:   uuid.New(),
		details: details,
		status:  StatusPending,
	}, nil
}

func ReconstructReservation(
	id, token uuid.UUID,
	details Details,
	status Status,
	denialReason *string,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:           id,
		token:        token,
		details:      details,
		status:       status,
		denialReason: denialReason,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func validateDetails(d Details) error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return ErrMissingGuestName
	case strings.TrimSpace(d.Email) == "":
		return ErrMissingGuestEmail
	case strings.TrimSpace(d.Phone) == "":
		return ErrMissingGuestPhone
	case strings.TrimSpace(d.Date) == "":
		return ErrMissingDate
	case strings.TrimSpace(d.Time) == "":
		return ErrMissingTime
	case strings.TrimSpace(d.Diners) == "":
		return ErrMissingDiners
	case strings.TrimSpace(d.Seating) == "":
		return ErrMissingSeating
	case strings.TrimSpace(d.Pickup) == "":
		return ErrMissingPickup
	}

	if _, err := time.Parse(dateLayout, d.Date); err != nil {
		return ErrInvalidDateFormat
	}
	return nil
}

// Confirm moves a Pending reservation to Confirmed.
func (r *Reservation) Confirm() error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return ErrAlreadyDecided
	}
	r.status = StatusConfirmed
	return nil
}

// Deny moves a Pending reservation to Denied and attaches the operator's
// reason verbatim.
func (r *Reservation) Deny(reason string) error {
	if !r.status.CanTransitionTo(StatusDenied) {
		return ErrAlreadyDecided
	}
	if reason == "" {
		return ErrMissingReason
	}
	r.status = StatusDenied
	r.denialReason = &reason
	return nil
}

func (r *Reservation) IsPending() bool {
	return r.status == StatusPending
}

func (r *Reservation) ID() uuid.UUID         { return r.id }
func (r *Reservation) Token() uuid.UUID      { return r.token }
func (r *Reservation) Details() Details      { return r.details }
func (r *Reservation) Status() Status        { return r.status }
func (r *Reservation) DenialReason() *string { return r.denialReason }
func (r *Reservation) CreatedAt() time.Time  { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time  { return r.updatedAt }
