// Package telegram is a minimal Telegram Bot API client covering the three
// calls the operator console needs: sendMessage (with inline keyboards and
// force-reply prompts), editMessageText and answerCallbackQuery.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/pkg/errs"
)

type Client struct {
	hc      *http.Client
	baseURL string
	token   string
}

func NewClient(cfg config.TelegramConfig) *Client {
	return &Client{
		hc:      &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.APIBaseURL,
		token:   cfg.BotToken,
	}
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type ForceReply struct {
	ForceReply bool `json:"force_reply"`
}

type Message struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type SendMessageParams struct {
	ChatID           string `json:"chat_id"`
	Text             string `json:"text"`
	ReplyMarkup      any    `json:"reply_markup,omitempty"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

type EditMessageTextParams struct {
	ChatID      string `json:"chat_id"`
	MessageID   int64  `json:"message_id"`
	Text        string `json:"text"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

type answerCallbackQueryParams struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	result, err := c.call(ctx, "sendMessage", params)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, errs.Wrap(err, "failed to decode sendMessage result")
	}
	return &msg, nil
}

func (c *Client) EditMessageText(ctx context.Context, params EditMessageTextParams) error {
	_, err := c.call(ctx, "editMessageText", params)
	return err
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	_, err := c.call(ctx, "answerCallbackQuery", answerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	})
	return err
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode "+method+" params")
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build "+method+" request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, method+" request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read "+method+" response")
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return nil, errs.Wrap(err, "failed to decode "+method+" response")
	}
	if !api.OK {
		return nil, errs.New(fmt.Sprintf("telegram %s failed: %s (status=%d)", method, api.Description, resp.StatusCode))
	}
	return api.Result, nil
}
