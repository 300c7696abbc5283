package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diwan-hq/diwan-api/internal/models"
	"github.com/diwan-hq/diwan-api/internal/service"
	"github.com/diwan-hq/diwan-api/pkg/response"
)

// AuditHandler exposes the read-only activity log.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List activity log entries
// @Description List recent activity log entries, newest first
// @Tags ActivityLog
// @Produce json
// @Param user_id query string false "User filter"
// @Param limit query int false "Entry limit"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /activity-log [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.ActivityLogFilter
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.Limit = limit
	}

	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
