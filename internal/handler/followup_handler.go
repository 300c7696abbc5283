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

// FollowUpHandler handles follow-up endpoints.
type FollowUpHandler struct {
	service *service.FollowUpService
}

// NewFollowUpHandler creates a new follow-up handler.
func NewFollowUpHandler(svc *service.FollowUpService) *FollowUpHandler {
	return &FollowUpHandler{service: svc}
}

// List godoc
// @Summary List follow-ups
// @Description List follow-ups with pagination and filtering
// @Tags FollowUps
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Status filter"
// @Param correspondence_type query string false "Direction filter"
// @Param correspondence_id query string false "Correspondence filter"
// @Success 200 {object} response.Envelope
// @Router /follow-ups [get]
func (h *FollowUpHandler) List(c *gin.Context) {
	var query dto.FollowUpQuery
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		query.PageSize = size
	}
	query.Status = c.Query("status")
	query.CorrespondenceType = c.Query("correspondence_type")
	query.CorrespondenceID = c.Query("correspondence_id")

	followUps, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, followUps, pagination)
}

// Get godoc
// @Summary Get follow-up
// @Tags FollowUps
// @Produce json
// @Param id path string true "Follow-up ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /follow-ups/{id} [get]
func (h *FollowUpHandler) Get(c *gin.Context) {
	fu, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fu, nil)
}

// Create godoc
// @Summary Create follow-up
// @Description Create a follow-up attached to one correspondence record
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param payload body dto.CreateFollowUpRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /follow-ups [post]
func (h *FollowUpHandler) Create(c *gin.Context) {
	var req dto.CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	fu, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fu)
}

// Update godoc
// @Summary Update follow-up
// @Description Save field edits and status transitions in one operation
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param id path string true "Follow-up ID"
// @Param payload body dto.UpdateFollowUpRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /follow-ups/{id} [put]
func (h *FollowUpHandler) Update(c *gin.Context) {
	var req dto.UpdateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	fu, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fu, nil)
}

// Delete godoc
// @Summary Delete follow-up
// @Tags FollowUps
// @Produce json
// @Param id path string true "Follow-up ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /follow-ups/{id} [delete]
func (h *FollowUpHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
