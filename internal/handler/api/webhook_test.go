//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"casita-reservations/internal/domain/approval"
	"casita-reservations/internal/handler/api"
	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type stubApprovalCommands struct {
	actions []usecase.OperatorAction
	replies []usecase.OperatorReply
	err     error
}

func (s *stubApprovalCommands) HandleAction(_ context.Context, action usecase.OperatorAction) error {
	s.actions = append(s.actions, action)
	return s.err
}

func (s *stubApprovalCommands) HandleReply(_ context.Context, reply usecase.OperatorReply) error {
	s.replies = append(s.replies, reply)
	return s.err
}

func (s *stubApprovalCommands) ExpireStale(context.Context) {}

type WebhookHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	approval *stubApprovalCommands
}

const webhookSecret = "hook-secret"

func (s *WebhookHandlerTestSuite) SetupSubTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.approval = &stubApprovalCommands{}
	cfg := config.Config{}
	cfg.Telegram.WebhookSecret = webhookSecret
	handler := api.NewWebhookHandler(s.approval, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.router.POST("/telegram/webhook", handler.Handle)
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) post(payload any, secret string) *httptest.ResponseRecorder {
	s.T().Helper()

	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	default:
		raw, err := json.Marshal(v)
		s.Require().NoError(err)
		body = raw
	}

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func callbackPayload(data string) map[string]any {
	return map[string]any{
		"callback_query": map[string]any{
			"id":   "cb-100",
			"data": data,
			"message": map[string]any{
				"message_id": 42,
				"chat":       map[string]any{"id": 777},
			},
		},
	}
}

func (s *WebhookHandlerTestSuite) TestSecret() {
	s.Run("missing secret header", func() {
		rec := s.post(callbackPayload("accept_"+uuid.NewString()), "")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Empty(s.approval.actions)
	})

	s.Run("wrong secret header", func() {
		rec := s.post(callbackPayload("accept_"+uuid.NewString()), "wrong")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Empty(s.approval.actions)
	})
}

func (s *WebhookHandlerTestSuite) TestCallback() {
	s.Run("accept press dispatches an operator action", func() {
		id := uuid.New()
		rec := s.post(callbackPayload("accept_"+id.String()), webhookSecret)

		s.Equal(http.StatusOK, rec.Code)
		s.Require().Len(s.approval.actions, 1)
		action := s.approval.actions[0]
		s.Equal(usecase.ActionAccept, action.Kind)
		s.Equal(id, action.ReservationID)
		s.Equal("cb-100", action.ActionID)
		s.Equal(approval.ConversationRef("777"), action.Prompt.Conversation)
		s.Equal("42", action.Prompt.MessageID)
	})

	s.Run("deny press dispatches an operator action", func() {
		id := uuid.New()
		s.post(callbackPayload("deny_"+id.String()), webhookSecret)

		s.Require().Len(s.approval.actions, 1)
		s.Equal(usecase.ActionDeny, s.approval.actions[0].Kind)
		s.Equal(id, s.approval.actions[0].ReservationID)
	})

	s.Run("unrecognized button payloads are ignored", func() {
		for _, data := range []string{"noop", "done_accepted", "accept_not-a-uuid", "approve_" + uuid.NewString(), ""} {
			rec := s.post(callbackPayload(data), webhookSecret)
			s.Equal(http.StatusOK, rec.Code, "data %q", data)
		}
		s.Empty(s.approval.actions)
	})

	s.Run("action failures still acknowledge the update", func() {
		s.approval.err = fmt.Errorf("store down")
		rec := s.post(callbackPayload("accept_"+uuid.NewString()), webhookSecret)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *WebhookHandlerTestSuite) TestReply() {
	s.Run("reply to a prompt dispatches an operator reply", func() {
		payload := map[string]any{
			"message": map[string]any{
				"message_id":       50,
				"text":             "fully booked",
				"chat":             map[string]any{"id": 777},
				"reply_to_message": map[string]any{"message_id": 49, "chat": map[string]any{"id": 777}},
			},
		}
		rec := s.post(payload, webhookSecret)

		s.Equal(http.StatusOK, rec.Code)
		s.Require().Len(s.approval.replies, 1)
		s.Equal(approval.ConversationRef("777"), s.approval.replies[0].Conversation)
		s.Equal("fully booked", s.approval.replies[0].Text)
	})

	s.Run("plain chat messages are ignored", func() {
		payload := map[string]any{
			"message": map[string]any{
				"message_id": 51,
				"text":       "hello",
				"chat":       map[string]any{"id": 777},
			},
		}
		rec := s.post(payload, webhookSecret)

		s.Equal(http.StatusOK, rec.Code)
		s.Empty(s.approval.replies)
	})

	s.Run("undecodable update is swallowed", func() {
		rec := s.post("{broken", webhookSecret)
		s.Equal(http.StatusOK, rec.Code)
		s.Empty(s.approval.actions)
		s.Empty(s.approval.replies)
	})

	s.Run("empty update is ignored", func() {
		rec := s.post(map[string]any{"update_id": 1}, webhookSecret)
		s.Equal(http.StatusOK, rec.Code)
	})
}
