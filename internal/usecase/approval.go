package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"casita-reservations/internal/domain/approval"
	domain "casita-reservations/internal/domain/reservation"
	"casita-reservations/internal/infra"
	"casita-reservations/internal/pkg/clock"
	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/pkg/errs"

	"github.com/google/uuid"
)

type ActionKind string

const (
	ActionAccept ActionKind = "accept"
	ActionDeny   ActionKind = "deny"
)

// OperatorAction is a button press on an approval prompt.
type OperatorAction struct {
	Kind          ActionKind
	ReservationID uuid.UUID
	// ActionID is the opaque handle used to acknowledge the press back to
	// the console.
	ActionID string
	// Prompt is the message the buttons live on; its conversation is the
	// one a denial reason will be awaited from.
	Prompt approval.MessageRef
}

// OperatorReply is a free-text message from an operator conversation. It only
// means something when that conversation holds a live awaiting-reason
// binding; otherwise it is chat noise.
type OperatorReply struct {
	Conversation approval.ConversationRef
	Text         string
}

type ApprovalCommands interface {
	HandleAction(ctx context.Context, action OperatorAction) error
	HandleReply(ctx context.Context, reply OperatorReply) error
	// ExpireStale releases awaiting-reason bindings whose deadline passed
	// and restores the accept/deny prompt for each.
	ExpireStale(ctx context.Context)
}

type approvalCommandsImpl struct {
	repo     ReservationRepository
	pending  *approval.Table
	locks    *approval.KeyedMutex
	notifier OperatorNotifier
	mailer   CustomerMailer
	clock    clock.Clock
	cfg      config.ApprovalConfig
	logger   *slog.Logger
}

func NewApprovalCommands(
	repo ReservationRepository,
	pending *approval.Table,
	notifier OperatorNotifier,
	mailer CustomerMailer,
	clk clock.Clock,
	cfg config.ApprovalConfig,
	logger *slog.Logger,
) ApprovalCommands {
	return &approvalCommandsImpl{
		repo:     repo,
		pending:  pending,
		locks:    approval.NewKeyedMutex(),
		notifier: notifier,
		mailer:   mailer,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
	}
}

func (c *approvalCommandsImpl) HandleAction(ctx context.Context, action OperatorAction) error {
	if _, ok := c.pending.Get(action.ReservationID); !ok {
		return c.handleStaleAction(ctx, action)
	}
	c.answer(ctx, action.ActionID, "Processing your request...")

	unlock := c.locks.Lock(action.ReservationID)
	defer unlock()

	switch action.Kind {
	case ActionAccept:
		return c.accept(ctx, action)
	case ActionDeny:
		return c.beginDeny(ctx, action)
	default:
		return errs.New("unknown operator action: " + string(action.Kind))
	}
}

// handleStaleAction covers button presses with no pending decision: either
// the reservation was already decided (idempotent no-op) or the ID is
// unknown.
func (c *approvalCommandsImpl) handleStaleAction(ctx context.Context, action OperatorAction) error {
	if _, err := c.repo.FindByID(ctx, action.ReservationID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.answer(ctx, action.ActionID, "Unknown reservation.")
			return errs.Mark(err, errs.ErrReservationNotFound)
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	c.answer(ctx, action.ActionID, "This reservation was already handled.")
	return nil
}

func (c *approvalCommandsImpl) accept(ctx context.Context, action OperatorAction) error {
	id := action.ReservationID
	if _, ok := c.pending.Get(id); !ok {
		// Lost the race to a concurrent decision.
		return nil
	}

	if err := c.repo.UpdateStatus(ctx, id, domain.StatusConfirmed, nil); err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			c.pending.Resolve(id)
			return errs.Mark(err, errs.ErrReservationNotFound)
		case infra.IsKind(err, infra.KindConflict):
			// Store row is already terminal; drop the orphaned entry.
			c.pending.Resolve(id)
			return nil
		default:
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	// Commit point: later actions on this reservation are stale.
	decision, _ := c.pending.Resolve(id)

	rm, err := c.repo.FindByID(ctx, id)
	if err != nil {
		c.logger.Error("confirmed reservation could not be re-read for notifications", "error", err, "reservation_id", id)
		return nil
	}

	if err := c.notifier.MarkAccepted(ctx, decision.Prompt, rm); err != nil {
		c.logger.Error("failed to update operator prompt after accept", "error", err, "reservation_id", id)
	}
	if err := c.mailer.SendConfirmed(ctx, rm); err != nil {
		c.logger.Error("failed to send confirmation email", "error", err, "reservation_id", id)
	}
	return nil
}

func (c *approvalCommandsImpl) beginDeny(ctx context.Context, action OperatorAction) error {
	id := action.ReservationID
	if _, ok := c.pending.Get(id); !ok {
		return nil
	}

	rm, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.pending.Resolve(id)
			return errs.Mark(err, errs.ErrReservationNotFound)
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	conv := action.Prompt.Conversation
	deadline := c.clock.Now().Add(c.cfg.ReasonTimeout)

	superseded, ok := c.pending.BeginAwaitReason(id, conv, deadline)
	if !ok {
		return nil
	}
	if superseded != nil {
		c.logger.Warn("deny superseded an older awaiting-reason binding",
			"conversation", conv,
			"superseded_reservation_id", superseded.ReservationID,
			"reservation_id", id)
		c.restorePrompt(ctx, *superseded)
	}

	if err := c.notifier.MarkProcessingDenial(ctx, action.Prompt, rm); err != nil {
		c.logger.Error("failed to mark prompt as processing", "error", err, "reservation_id", id)
	}
	if err := c.notifier.PromptDenialReason(ctx, action.Prompt); err != nil {
		// Binding stays armed; the sweeper releases it if no reply arrives.
		c.logger.Error("failed to prompt for denial reason", "error", err, "reservation_id", id)
		return errs.Mark(err, errs.ErrNotificationFailed)
	}
	return nil
}

func (c *approvalCommandsImpl) HandleReply(ctx context.Context, reply OperatorReply) error {
	decision, ok := c.pending.ReasonBinding(reply.Conversation, c.clock.Now())
	if !ok {
		// Ordinary chat noise, not a denial reason.
		return nil
	}

	unlock := c.locks.Lock(decision.ReservationID)
	defer unlock()

	decision, ok = c.pending.ReasonBinding(reply.Conversation, c.clock.Now())
	if !ok {
		return nil
	}
	id := decision.ReservationID

	reason := strings.TrimSpace(reply.Text)
	if reason == "" {
		reason = "No reason provided"
	}

	if err := c.repo.UpdateStatus(ctx, id, domain.StatusDenied, &reason); err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			c.pending.Resolve(id)
			return errs.Mark(err, errs.ErrReservationNotFound)
		case infra.IsKind(err, infra.KindConflict):
			c.pending.Resolve(id)
			return nil
		default:
			// Binding stays; the operator can send the reason again.
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	c.pending.Resolve(id)

	rm, err := c.repo.FindByID(ctx, id)
	if err != nil {
		c.logger.Error("denied reservation could not be re-read for notifications", "error", err, "reservation_id", id)
		return nil
	}

	if err := c.notifier.MarkDenied(ctx, decision.Prompt, rm, reason); err != nil {
		c.logger.Error("failed to update operator prompt after deny", "error", err, "reservation_id", id)
	}
	if err := c.mailer.SendDenied(ctx, rm, reason, c.rebookURL(rm.ID, rm.Token)); err != nil {
		c.logger.Error("failed to send denial email", "error", err, "reservation_id", id)
	}
	return nil
}

func (c *approvalCommandsImpl) ExpireStale(ctx context.Context) {
	released := c.pending.ReleaseExpired(c.clock.Now())
	for _, d := range released {
		c.logger.Info("deny prompt expired without a reason; decision must be re-initiated",
			"reservation_id", d.ReservationID,
			"conversation", d.Conversation)
		c.restorePrompt(ctx, d)
	}
}

func (c *approvalCommandsImpl) restorePrompt(ctx context.Context, d approval.Decision) {
	rm, err := c.repo.FindByID(ctx, d.ReservationID)
	if err != nil {
		c.logger.Error("failed to re-read reservation for prompt restore", "error", err, "reservation_id", d.ReservationID)
		return
	}
	if err := c.notifier.RestorePrompt(ctx, d.Prompt, rm); err != nil {
		c.logger.Error("failed to restore operator prompt", "error", err, "reservation_id", d.ReservationID)
	}
}

func (c *approvalCommandsImpl) answer(ctx context.Context, actionID, text string) {
	if actionID == "" {
		return
	}
	if err := c.notifier.AnswerAction(ctx, actionID, text); err != nil {
		c.logger.Error("failed to acknowledge operator action", "error", err)
	}
}

func (c *approvalCommandsImpl) rebookURL(id, token uuid.UUID) string {
	return fmt.Sprintf("%s?reservation_id=%s&token=%s", c.cfg.RebookBaseURL, id, token)
}
