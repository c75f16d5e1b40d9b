// Package handler exposes the cron-triggered push-report endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"finance_linebot/internal/feature/bot/flex"
	botusecase "finance_linebot/internal/feature/bot/usecase"
)

// ReportService renders the push-report texts.
// Following Go convention, the interface is defined on the consumer side.
type ReportService interface {
	ForexReport(ctx context.Context, currency string) (string, error)
	VIXReport(ctx context.Context) (string, error)
	DailyReport(ctx context.Context) (string, error)
}

// Pusher sends a message outside the reply window.
type Pusher interface {
	Push(to string, messages []messaging_api.MessageInterface) error
}

// PushHandler serves the externally-triggered report endpoints. targetID is
// the preconfigured push recipient; requests fail with 500 when it is unset.
type PushHandler struct {
	reports  ReportService
	pusher   Pusher
	targetID string
}

// NewPushHandler creates a PushHandler.
func NewPushHandler(reports ReportService, pusher Pusher, targetID string) *PushHandler {
	return &PushHandler{reports: reports, pusher: pusher, targetID: targetID}
}

// PushForex handles GET /push_forex and /push_forex/:currency. The currency
// defaults to KRW; unsupported codes are rejected with 400.
func (h *PushHandler) PushForex(c *gin.Context) {
	currency := c.Param("currency")
	if currency == "" {
		currency = "KRW"
	}
	if !botusecase.ValidCurrencies[currency] {
		c.String(http.StatusBadRequest, "invalid currency: %s", currency)
		return
	}
	h.run(c, func(ctx context.Context) (string, error) {
		return h.reports.ForexReport(ctx, currency)
	})
}

// PushVIX handles GET /push_vix.
func (h *PushHandler) PushVIX(c *gin.Context) {
	h.run(c, h.reports.VIXReport)
}

// PushDaily handles GET /push_report, the legacy combined report.
func (h *PushHandler) PushDaily(c *gin.Context) {
	h.run(c, h.reports.DailyReport)
}

// run executes one report job and pushes the result to the configured
// recipient.
func (h *PushHandler) run(c *gin.Context, job func(ctx context.Context) (string, error)) {
	if h.targetID == "" {
		c.String(http.StatusInternalServerError, "no target id configured")
		return
	}

	text, err := job(c.Request.Context())
	if err != nil {
		slog.Error("report job failed", "path", c.FullPath(), "error", err)
		c.String(http.StatusInternalServerError, "report failed: %v", err)
		return
	}

	if err := h.pusher.Push(h.targetID, []messaging_api.MessageInterface{flex.Text(text)}); err != nil {
		slog.Error("report push failed", "path", c.FullPath(), "error", err)
		c.String(http.StatusInternalServerError, "push failed: %v", err)
		return
	}
	c.String(http.StatusOK, "report pushed: %s", c.FullPath())
}
