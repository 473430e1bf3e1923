package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) DashboardStats(c *gin.Context) {
	h.respondStats(c, "Dashboard statistics retrieved")
}

func (h *HTTPHandler) SystemStats(c *gin.Context) {
	h.respondStats(c, "System statistics retrieved")
}

func (h *HTTPHandler) respondStats(c *gin.Context, message string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.statsService.Snapshot(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, stats, message)
}
