package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type ReservationRM struct {
	ID           uuid.UUID `json:"id"`
	Token        uuid.UUID `json:"-"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Diners       string    `json:"diners"`
	Seating      string    `json:"seating"`
	Pickup       string    `json:"pickup"`
	Status       string    `json:"status"`
	DenialReason *string   `json:"denialReason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReservationListRM struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Date   string    `json:"date"`
	Time   string    `json:"time"`
	Diners string    `json:"diners"`
	Status string    `json:"status"`
}
