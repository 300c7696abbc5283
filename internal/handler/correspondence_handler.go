package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/service"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
	"github.com/diwan-hq/diwan-api/pkg/response"
)

// CorrespondenceHandler handles both register endpoints.
type CorrespondenceHandler struct {
	service *service.CorrespondenceService
}

// NewCorrespondenceHandler creates a new correspondence handler.
func NewCorrespondenceHandler(svc *service.CorrespondenceService) *CorrespondenceHandler {
	return &CorrespondenceHandler{service: svc}
}

// ListIncoming godoc
// @Summary List incoming correspondence
// @Description List the incoming register with pagination and filtering
// @Tags Incoming
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /incoming [get]
func (h *CorrespondenceHandler) ListIncoming(c *gin.Context) {
	records, pagination, err := h.service.ListIncoming(c.Request.Context(), correspondenceQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// GetIncoming godoc
// @Summary Get incoming correspondence
// @Tags Incoming
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incoming/{id} [get]
func (h *CorrespondenceHandler) GetIncoming(c *gin.Context) {
	rec, err := h.service.GetIncoming(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// CreateIncoming godoc
// @Summary Register incoming correspondence
// @Tags Incoming
// @Accept json
// @Produce json
// @Param payload body dto.CreateIncomingRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /incoming [post]
func (h *CorrespondenceHandler) CreateIncoming(c *gin.Context) {
	var req dto.CreateIncomingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	rec, err := h.service.CreateIncoming(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// UpdateIncoming godoc
// @Summary Update incoming correspondence
// @Tags Incoming
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.UpdateIncomingRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incoming/{id} [put]
func (h *CorrespondenceHandler) UpdateIncoming(c *gin.Context) {
	var req dto.UpdateIncomingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	rec, err := h.service.UpdateIncoming(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// DeleteIncoming godoc
// @Summary Delete incoming correspondence
// @Tags Incoming
// @Produce json
// @Param id path string true "Record ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incoming/{id} [delete]
func (h *CorrespondenceHandler) DeleteIncoming(c *gin.Context) {
	if err := h.service.DeleteIncoming(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListOutgoing godoc
// @Summary List outgoing correspondence
// @Description List the outgoing register with pagination and filtering
// @Tags Outgoing
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /outgoing [get]
func (h *CorrespondenceHandler) ListOutgoing(c *gin.Context) {
	records, pagination, err := h.service.ListOutgoing(c.Request.Context(), correspondenceQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// GetOutgoing godoc
// @Summary Get outgoing correspondence
// @Tags Outgoing
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /outgoing/{id} [get]
func (h *CorrespondenceHandler) GetOutgoing(c *gin.Context) {
	rec, err := h.service.GetOutgoing(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// CreateOutgoing godoc
// @Summary Register outgoing correspondence
// @Tags Outgoing
// @Accept json
// @Produce json
// @Param payload body dto.CreateOutgoingRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /outgoing [post]
func (h *CorrespondenceHandler) CreateOutgoing(c *gin.Context) {
	var req dto.CreateOutgoingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	rec, err := h.service.CreateOutgoing(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// UpdateOutgoing godoc
// @Summary Update outgoing correspondence
// @Tags Outgoing
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.UpdateOutgoingRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /outgoing/{id} [put]
func (h *CorrespondenceHandler) UpdateOutgoing(c *gin.Context) {
	var req dto.UpdateOutgoingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	rec, err := h.service.UpdateOutgoing(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// DeleteOutgoing godoc
// @Summary Delete outgoing correspondence
// @Tags Outgoing
// @Produce json
// @Param id path string true "Record ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /outgoing/{id} [delete]
func (h *CorrespondenceHandler) DeleteOutgoing(c *gin.Context) {
	if err := h.service.DeleteOutgoing(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func correspondenceQuery(c *gin.Context) dto.CorrespondenceQuery {
	var query dto.CorrespondenceQuery
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		query.PageSize = size
	}
	query.Status = c.Query("status")
	query.Priority = c.Query("priority")
	query.Search = c.Query("search")
	return query
}
