package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BenAmorMed/ExamSupervisor/internal/service"
	appErrors "github.com/BenAmorMed/ExamSupervisor/pkg/errors"
	"github.com/BenAmorMed/ExamSupervisor/pkg/response"
)

// PlanningHandler wires HTTP endpoints to the planning service.
type PlanningHandler struct {
	service *service.PlanningService
}

// NewPlanningHandler creates a new handler.
func NewPlanningHandler(svc *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{service: svc}
}

// Overview godoc
// @Summary Planning overview
// @Description Classified session list and charge accounting for the authenticated teacher
// @Tags Planning
// @Produce json
// @Param page query int false "Zero-indexed page" default(0)
// @Param size query int false "Page size"
// @Param sort query string false "Set to availability to order vacant sessions first"
// @Param tab query string false "all, mine or subjects" default(all)
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /planning/overview [get]
func (h *PlanningHandler) Overview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	opts := service.OverviewOptions{
		Page: page,
		Size: size,
		Sort: c.Query("sort"),
		Tab:  c.Query("tab"),
	}

	overview, pagination, err := h.service.Overview(c.Request.Context(), claims.TeacherID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, pagination)
}

// Select godoc
// @Summary Choose a session
// @Description Relay a supervision choice to the backend
// @Tags Planning
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /planning/sessions/{id}/select [post]
func (h *PlanningHandler) Select(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}

	meta := service.ActionMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.Select(c.Request.Context(), claims.TeacherID, sessionID, meta); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "session selected"})
}

// Cancel godoc
// @Summary Withdraw from a session
// @Description Relay a supervision cancellation to the backend
// @Tags Planning
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /planning/sessions/{id}/cancel [post]
func (h *PlanningHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}

	meta := service.ActionMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.Cancel(c.Request.Context(), claims.TeacherID, sessionID, meta); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "session cancelled"})
}

// AutoAssign godoc
// @Summary Automatic assignment
// @Description Ask the backend to fill the teacher's remaining supervision charge
// @Tags Planning
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /planning/auto-assign [post]
func (h *PlanningHandler) AutoAssign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	meta := service.ActionMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.AutoAssign(c.Request.Context(), claims.TeacherID, meta); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "automatic assignment completed"})
}

// Summary godoc
// @Summary Printable planning
// @Description Render the teacher's supervision planning as a PDF, available once the charge is complete
// @Tags Planning
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /planning/summary.pdf [get]
func (h *PlanningHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, err := h.service.Summary(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="planning-surveillance.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
