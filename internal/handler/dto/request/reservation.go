package request

import (
	"strings"

	"casita-reservations/internal/usecase"
)

// CreateReservationRequest carries the customer-submitted booking form.
// Presence is enforced here; the date format check lives in the domain.
type CreateReservationRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	Diners  string `json:"diners" binding:"required"`
	Seating string `json:"seating" binding:"required"`
	Pickup  string `json:"pickup" binding:"required"`
}

func (r CreateReservationRequest) ToInput() usecase.CreateReservationInput {
	return usecase.CreateReservationInput{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Date:    strings.TrimSpace(r.Date),
		Time:    strings.TrimSpace(r.Time),
		Diners:  strings.TrimSpace(r.Diners),
		Seating: strings.TrimSpace(r.Seating),
		Pickup:  strings.TrimSpace(r.Pickup),
	}
}
