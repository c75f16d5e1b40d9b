// Package router wires the HTTP surface: the webhook callback, the liveness
// probe and the cron-triggered push endpoints.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bothandler "finance_linebot/internal/feature/bot/transport/handler"
	reporthandler "finance_linebot/internal/feature/report/transport/handler"
)

// NewRouter builds the gin engine with every route registered.
func NewRouter(callback *bothandler.CallbackHandler, push *reporthandler.PushHandler) *gin.Engine {
	r := gin.Default()

	// Liveness probe for the hosting platform.
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Alive")
	})

	// LINE webhook
	r.POST("/callback", callback.Callback)

	// Cron-triggered push reports
	r.GET("/push_forex", push.PushForex)
	r.GET("/push_forex/:currency", push.PushForex)
	r.GET("/push_vix", push.PushVIX)
	r.GET("/push_report", push.PushDaily)

	return r
}
