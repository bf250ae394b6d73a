package usecase

import (
	"context"

	"casita-reservations/internal/domain/approval"
	domain "casita-reservations/internal/domain/reservation"
	"casita-reservations/internal/usecase/readmodel"

	"github.com/google/uuid"
)

// ReservationRepository is the durable record of reservations. Writes are
// atomic per reservation; UpdateStatus only lands on rows still Pending.
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*readmodel.ReservationRM, error)
	FindByID(ctx context.Context, id uuid.UUID) (*readmodel.ReservationRM, error)
	List(ctx context.Context) ([]*readmodel.ReservationListRM, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, denialReason *string) error
}

// OperatorNotifier is the interactive operator console. Every method is a
// delivery attempt: failures are surfaced to the caller but must never undo
// a committed state transition.
type OperatorNotifier interface {
	NotifyNewReservation(ctx context.Context, rm *readmodel.ReservationRM) (approval.MessageRef, error)
	PromptDenialReason(ctx context.Context, prompt approval.MessageRef) error
	MarkProcessingDenial(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM) error
	MarkAccepted(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM) error
	MarkDenied(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM, reason string) error
	RestorePrompt(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM) error
	AnswerAction(ctx context.Context, actionID, text string) error
}

// CustomerMailer delivers the customer-facing outcome emails. Same contract
// as OperatorNotifier: failures are logged, never rolled back into state.
type CustomerMailer interface {
	SendReceived(ctx context.Context, rm *readmodel.ReservationRM) error
	SendConfirmed(ctx context.Context, rm *readmodel.ReservationRM) error
	SendDenied(ctx context.Context, rm *readmodel.ReservationRM, reason, rebookURL string) error
}
