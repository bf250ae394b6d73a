package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"casita-reservations/internal/domain/approval"
	"casita-reservations/internal/handler/httperr"
	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/pkg/errs"
	"casita-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Subset of the Telegram update payload the approval workflow consumes.
type telegramUpdate struct {
	CallbackQuery *telegramCallbackQuery `json:"callback_query"`
	Message       *telegramMessage       `json:"message"`
}

type telegramCallbackQuery struct {
	ID      string           `json:"id"`
	Data    string           `json:"data"`
	Message *telegramMessage `json:"message"`
}

type telegramMessage struct {
	MessageID      int64            `json:"message_id"`
	Text           string           `json:"text"`
	Chat           telegramChat     `json:"chat"`
	ReplyToMessage *telegramMessage `json:"reply_to_message"`
}

type telegramChat struct {
	ID int64 `json:"id"`
}

// WebhookHandler turns Telegram updates into operator action and reply
// events. It always answers 200 once the secret checks out; Telegram
// redelivers anything else, and redelivery cannot fix a bad update.
type WebhookHandler struct {
	approval usecase.ApprovalCommands
	secret   string
	logger   *slog.Logger
}

func NewWebhookHandler(approval usecase.ApprovalCommands, cfg config.Config, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		approval: approval,
		secret:   cfg.Telegram.WebhookSecret,
		logger:   logger,
	}
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" && c.GetHeader(secretTokenHeader) != h.secret {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("webhook secret mismatch"), "invalid webhook secret", nil)
		return
	}

	var update telegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("undecodable telegram update", "error", err)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(c, update.CallbackQuery)
	case update.Message != nil && update.Message.ReplyToMessage != nil:
		h.handleReply(c, update.Message)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func (h *WebhookHandler) handleCallback(c *gin.Context, cb *telegramCallbackQuery) {
	kind, reservationID, ok := parseCallbackData(cb.Data)
	if !ok || cb.Message == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	action := usecase.OperatorAction{
		Kind:          kind,
		ReservationID: reservationID,
		ActionID:      cb.ID,
		Prompt: approval.MessageRef{
			Conversation: approval.ConversationRef(strconv.FormatInt(cb.Message.Chat.ID, 10)),
			MessageID:    strconv.FormatInt(cb.Message.MessageID, 10),
		},
	}

	if err := h.approval.HandleAction(c.Request.Context(), action); err != nil {
		h.logger.Error("operator action failed", "error", err, "reservation_id", reservationID, "action", string(kind))
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) handleReply(c *gin.Context, msg *telegramMessage) {
	reply := usecase.OperatorReply{
		Conversation: approval.ConversationRef(strconv.FormatInt(msg.Chat.ID, 10)),
		Text:         msg.Text,
	}

	if err := h.approval.HandleReply(c.Request.Context(), reply); err != nil {
		h.logger.Error("operator reply failed", "error", err, "conversation", reply.Conversation)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseCallbackData splits "accept_<uuid>" / "deny_<uuid>" button payloads.
// Anything else ("done_...", "noop") is decoration on settled prompts.
func parseCallbackData(data string) (usecase.ActionKind, uuid.UUID, bool) {
	parts := strings.SplitN(data, "_", 2)
	if len(parts) != 2 {
		return "", uuid.Nil, false
	}

	kind := usecase.ActionKind(parts[0])
	if kind != usecase.ActionAccept && kind != usecase.ActionDeny {
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, false
	}
	return kind, id, true
}
