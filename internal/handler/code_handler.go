package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/models"
	"github.com/diwan-hq/diwan-api/internal/service"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
	"github.com/diwan-hq/diwan-api/pkg/response"
)

// CodeHandler exposes the sequence and code generators so entry forms can
// prefill values before save.
type CodeHandler struct {
	service *service.CodeService
}

// NewCodeHandler creates a new code handler.
func NewCodeHandler(svc *service.CodeService) *CodeHandler {
	return &CodeHandler{service: svc}
}

// NextReferenceNumber godoc
// @Summary Next reference number
// @Description Preview the next reference number for a register
// @Tags Codes
// @Produce json
// @Param direction query string true "incoming or outgoing"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /codes/next-reference [get]
func (h *CodeHandler) NextReferenceNumber(c *gin.Context) {
	direction := models.Direction(c.Query("direction"))
	if !direction.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown correspondence direction"))
		return
	}

	// The required permission depends on the register being previewed, so
	// the check lives here instead of route middleware.
	action := service.ActionAddIncoming
	if direction == models.DirectionOutgoing {
		action = service.ActionAddOutgoing
	}
	claims := claimsFromContext(c)
	if claims == nil || !service.HasPermission(claims.Role, action) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	ref, err := h.service.NextReferenceNumber(c.Request.Context(), direction)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ReferenceNumberResponse{Direction: string(direction), ReferenceNumber: ref}, nil)
}

// NextSubjectCode godoc
// @Summary Next outgoing subject code
// @Description Preview the next outgoing subject code segments
// @Tags Codes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /codes/next-subject-code [get]
func (h *CodeHandler) NextSubjectCode(c *gin.Context) {
	prefix, suffix, err := h.service.NextOutgoingSubjectCode(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	code, err := h.service.NormalizeSubjectCode(models.DirectionOutgoing, prefix, suffix)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SubjectCodeResponse{Prefix: prefix, Suffix: suffix, Code: code}, nil)
}

// NextFollowUpCode godoc
// @Summary Next follow-up code
// @Description Preview the follow-up code for one correspondence record
// @Tags Codes
// @Produce json
// @Param correspondence_type query string true "incoming or outgoing"
// @Param correspondence_id query string true "Correspondence ID"
// @Param subject_code query string false "Subject code of the letter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /codes/next-follow-up [get]
func (h *CodeHandler) NextFollowUpCode(c *gin.Context) {
	direction := models.Direction(c.Query("correspondence_type"))
	if !direction.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown correspondence direction"))
		return
	}
	correspondenceID := c.Query("correspondence_id")
	if correspondenceID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "correspondence_id is required"))
		return
	}

	code, err := h.service.NextFollowUpCode(c.Request.Context(), direction, correspondenceID, c.Query("subject_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FollowUpCodeResponse{Code: code}, nil)
}
