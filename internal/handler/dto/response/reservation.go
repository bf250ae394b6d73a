package response

import (
	"time"

	"casita-reservations/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type CreateReservationResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ReservationResponse struct {
	ID           uuid.UUID `json:"id"`
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

type ReservationListResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Date   string    `json:"date"`
	Time   string    `json:"time"`
	Diners string    `json:"diners"`
	Status string    `json:"status"`
}

func FromReservationRM(rm *readmodel.ReservationRM) *ReservationResponse {
	return &ReservationResponse{
		ID:           rm.ID,
		Name:         rm.Name,
		Email:        rm.Email,
		Phone:        rm.Phone,
		Date:         rm.Date,
		Time:         rm.Time,
		Diners:       rm.Diners,
		Seating:      rm.Seating,
		Pickup:       rm.Pickup,
		Status:       rm.Status,
		DenialReason: rm.DenialReason,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

func FromReservationListRM(rm *readmodel.ReservationListRM) *ReservationListResponse {
	return &ReservationListResponse{
		ID:     rm.ID,
		Name:   rm.Name,
		Date:   rm.Date,
		Time:   rm.Time,
		Diners: rm.Diners,
		Status: rm.Status,
	}
}
