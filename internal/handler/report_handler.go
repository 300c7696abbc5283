package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diwan-hq/diwan-api/internal/service"
	"github.com/diwan-hq/diwan-api/pkg/response"
)

// ReportHandler exposes dashboard statistics and register exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Statistics godoc
// @Summary Dashboard statistics
// @Description Summary counts across both registers and follow-ups
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/statistics [get]
func (h *ReportHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ExportIncoming godoc
// @Summary Export incoming register
// @Tags Reports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/incoming/export [get]
func (h *ReportHandler) ExportIncoming(c *gin.Context) {
	h.export(c, "incoming", h.service.ExportIncoming)
}

// ExportOutgoing godoc
// @Summary Export outgoing register
// @Tags Reports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/outgoing/export [get]
func (h *ReportHandler) ExportOutgoing(c *gin.Context) {
	h.export(c, "outgoing", h.service.ExportOutgoing)
}

// ExportFollowUps godoc
// @Summary Export follow-ups
// @Tags Reports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/follow-ups/export [get]
func (h *ReportHandler) ExportFollowUps(c *gin.Context) {
	h.export(c, "follow-ups", h.service.ExportFollowUps)
}

func (h *ReportHandler) export(c *gin.Context, name string, render func(ctx context.Context, format service.ExportFormat) ([]byte, error)) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out, err := render(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), out)
}
