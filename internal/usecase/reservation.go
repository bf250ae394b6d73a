package usecase

import (
	"context"
	"log/slog"

	"casita-reservations/internal/domain/approval"
	domain "casita-reservations/internal/domain/reservation"
	"casita-reservations/internal/infra"
	"casita-reservations/internal/pkg/errs"
	"casita-reservations/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type CreateReservationInput struct {
	Name    string
	Email   string
	Phone   string
	Date    string
	Time    string
	Diners  string
	Seating string
	Pickup  string
}

type ReservationCommands interface {
	// Create persists a Pending reservation, registers its pending decision
	// and pushes the accept/deny prompt to the operator console. Notification
	// failures are logged; only a store failure aborts the submission.
	Create(ctx context.Context, input CreateReservationInput) (*readmodel.ReservationRM, error)
}

type ReservationQueries interface {
	GetByToken(ctx context.Context, id uuid.UUID, token string) (*readmodel.ReservationRM, error)
	List(ctx context.Context) ([]*readmodel.ReservationListRM, error)
}

type reservationCommandsImpl struct {
	repo     ReservationRepository
	pending  *approval.Table
	notifier OperatorNotifier
	mailer   CustomerMailer
	logger   *slog.Logger
}

func NewReservationCommands(
	repo ReservationRepository,
	pending *approval.Table,
	notifier OperatorNotifier,
	mailer CustomerMailer,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		repo:     repo,
		pending:  pending,
		notifier: notifier,
		mailer:   mailer,
		logger:   logger,
	}
}

func (c *reservationCommandsImpl) Create(ctx context.Context, input CreateReservationInput) (*readmodel.ReservationRM, error) {
	res, err := domain.NewReservation(domain.Details{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Date:    input.Date,
		Time:    input.Time,
		Diners:  input.Diners,
		Seating: input.Seating,
		Pickup:  input.Pickup,
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidationFailed)
	}

	rm, err := c.repo.Create(ctx, res)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	c.pending.Register(rm.ID)

	prompt, err := c.notifier.NotifyNewReservation(ctx, rm)
	if err != nil {
		// The reservation is durable; the prompt can be re-sent by hand if
		// the console is down.
		c.logger.Error("failed to deliver operator prompt", "error", err, "reservation_id", rm.ID)
	} else {
		c.pending.AttachPrompt(rm.ID, prompt)
	}

	if err := c.mailer.SendReceived(ctx, rm); err != nil {
		c.logger.Error("failed to send intake acknowledgment email", "error", err, "reservation_id", rm.ID)
	}

	return rm, nil
}

type reservationQueriesImpl struct {
	repo   ReservationRepository
	logger *slog.Logger
}

func NewReservationQueries(repo ReservationRepository, logger *slog.Logger) ReservationQueries {
	return &reservationQueriesImpl{
		repo:   repo,
		logger: logger,
	}
}

func (q *reservationQueriesImpl) GetByToken(ctx context.Context, id uuid.UUID, token string) (*readmodel.ReservationRM, error) {
	rm, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrReservationNotFound
		}
		return nil, errs.Wrap(err, "failed to find reservation")
	}

	if rm.Token.String() != token {
		return nil, errs.ErrInvalidToken
	}
	return rm, nil
}

func (q *reservationQueriesImpl) List(ctx context.Context) ([]*readmodel.ReservationListRM, error) {
	items, err := q.repo.List(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list reservations")
	}
	return items, nil
}
