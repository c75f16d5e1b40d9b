// Package handler exposes the messaging-platform webhook over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"finance_linebot/internal/feature/bot/domain/entity"
	"finance_linebot/internal/feature/bot/usecase"
	"finance_linebot/internal/platform/line"
)

// CallbackParser verifies and decodes a webhook delivery.
// Following Go convention, the interface is defined on the consumer side.
type CallbackParser interface {
	ParseCallback(r *http.Request) (*webhook.CallbackRequest, error)
}

// MessageDispatcher executes one classified inbound message.
type MessageDispatcher interface {
	Handle(ctx context.Context, m entity.InboundMessage)
}

// CallbackHandler is the webhook endpoint handler.
type CallbackHandler struct {
	parser     CallbackParser
	dispatcher MessageDispatcher
	bot        *line.BotInfo
}

// NewCallbackHandler creates a CallbackHandler.
func NewCallbackHandler(parser CallbackParser, dispatcher MessageDispatcher, bot *line.BotInfo) *CallbackHandler {
	return &CallbackHandler{parser: parser, dispatcher: dispatcher, bot: bot}
}

// Callback handles POST /callback. A signature mismatch is rejected with
// 400; everything after successful verification acks 200 "OK" regardless of
// dispatch outcome, because the platform wants delivery confirmation, not
// the command result.
func (h *CallbackHandler) Callback(c *gin.Context) {
	cb, err := h.parser.ParseCallback(c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
		c.String(http.StatusInternalServerError, "failed to parse request")
		return
	}

	for _, ev := range cb.Events {
		m, ok := usecase.FromWebhookEvent(ev, h.bot)
		if !ok {
			continue
		}
		h.dispatcher.Handle(c.Request.Context(), m)
	}
	c.String(http.StatusOK, "OK")
}
