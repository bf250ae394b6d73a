package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"casita-reservations/internal/domain/approval"
	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/pkg/errs"
	"casita-reservations/internal/usecase/readmodel"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	CallbackAccept = "accept"
	CallbackDeny   = "deny"
)

// OperatorConsole delivers approval prompts to the operator chat and keeps
// the prompt message in sync with the decision. Sends are retried with capped
// exponential backoff; a send that still fails is the caller's to log, never
// to roll back.
type OperatorConsole struct {
	client     *Client
	chatID     string
	maxRetries uint64
	logger     *slog.Logger
}

func NewOperatorConsole(client *Client, cfg config.Config, logger *slog.Logger) *OperatorConsole {
	return &OperatorConsole{
		client:     client,
		chatID:     cfg.Telegram.ChatID,
		maxRetries: cfg.Approval.MaxSendRetries,
		logger:     logger,
	}
}

func (o *OperatorConsole) NotifyNewReservation(ctx context.Context, rm *readmodel.ReservationRM) (approval.MessageRef, error) {
	params := SendMessageParams{
		ChatID:      o.chatID,
		Text:        summaryText(rm),
		ReplyMarkup: decisionKeyboard(rm.ID),
	}

	var msg *Message
	err := o.retry(ctx, func() error {
		var sendErr error
		msg, sendErr = o.client.SendMessage(ctx, params)
		return sendErr
	})
	if err != nil {
		return approval.MessageRef{}, errs.Wrap(err, "failed to notify operator of new reservation")
	}

	return approval.MessageRef{
		Conversation: approval.ConversationRef(strconv.FormatInt(msg.Chat.ID, 10)),
		MessageID:    strconv.FormatInt(msg.MessageID, 10),
	}, nil
}

func (o *OperatorConsole) PromptDenialReason(ctx context.Context, prompt approval.MessageRef) error {
	replyTo, err := messageID(prompt)
	if err != nil {
		return err
	}

	return o.retry(ctx, func() error {
		_, sendErr := o.client.SendMessage(ctx, SendMessageParams{
			ChatID:           string(prompt.Conversation),
			Text:             "Please provide a reason for denial:",
			ReplyToMessageID: replyTo,
			ReplyMarkup:      ForceReply{ForceReply: true},
		})
		return sendErr
	})
}

func (o *OperatorConsole) MarkProcessingDenial(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM) error {
	return o.editPrompt(ctx, prompt, "🔄 Processing Denial\n"+summaryText(rm), disabledKeyboard())
}

func (o *OperatorConsole) MarkAccepted(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM) error {
	return o.editPrompt(ctx, prompt, "✅ Accepted\n"+summaryText(rm), doneKeyboard("Accepted", rm.ID))
}

func (o *OperatorConsole) MarkDenied(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM, reason string) error {
	return o.editPrompt(ctx, prompt, "❌ Denied\n"+summaryText(rm)+"\nReason: "+reason, doneKeyboard("Denied", rm.ID))
}

// RestorePrompt puts the accept/deny keyboard back after a deny prompt
// expired without a reason.
func (o *OperatorConsole) RestorePrompt(ctx context.Context, prompt approval.MessageRef, rm *readmodel.ReservationRM) error {
	return o.editPrompt(ctx, prompt, summaryText(rm), decisionKeyboard(rm.ID))
}

func (o *OperatorConsole) AnswerAction(ctx context.Context, actionID, text string) error {
	return o.retry(ctx, func() error {
		return o.client.AnswerCallbackQuery(ctx, actionID, text)
	})
}

func (o *OperatorConsole) editPrompt(ctx context.Context, prompt approval.MessageRef, text string, markup any) error {
	if prompt.MessageID == "" {
		// Prompt delivery failed earlier; nothing to edit.
		return nil
	}
	id, err := messageID(prompt)
	if err != nil {
		return err
	}

	return o.retry(ctx, func() error {
		return o.client.EditMessageText(ctx, EditMessageTextParams{
			ChatID:      string(prompt.Conversation),
			MessageID:   id,
			Text:        text,
			ReplyMarkup: markup,
		})
	})
}

func (o *OperatorConsole) retry(ctx context.Context, op func() error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), o.maxRetries), ctx)
	return backoff.Retry(op, bo)
}

func summaryText(rm *readmodel.ReservationRM) string {
	return fmt.Sprintf(`New Reservation Request:
Name: %s
Email: %s
Phone: %s
Date: %s
Time: %s
Diners: %s
Seating: %s
Pickup: %s`,
		rm.Name, rm.Email, rm.Phone, rm.Date, rm.Time, rm.Diners, rm.Seating, rm.Pickup)
}

func decisionKeyboard(id uuid.UUID) InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "✅ Accept", CallbackData: fmt.Sprintf("%s_%s", CallbackAccept, id)},
			{Text: "❌ Deny", CallbackData: fmt.Sprintf("%s_%s", CallbackDeny, id)},
		}},
	}
}

func disabledKeyboard() InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "Processing...", CallbackData: "noop"},
		}},
	}
}

func doneKeyboard(label string, id uuid.UUID) InlineKeyboardMarkup {
	return InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: label, CallbackData: fmt.Sprintf("done_%s", id)},
		}},
	}
}

func messageID(prompt approval.MessageRef) (int64, error) {
	id, err := strconv.ParseInt(prompt.MessageID, 10, 64)
	if err != nil {
		return 0, errs.Wrap(err, "invalid prompt message id")
	}
	return id, nil
}
