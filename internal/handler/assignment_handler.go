package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/service"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
	"github.com/roblesmun/roblesmun-api/pkg/response"
)

// AssignmentRequest is the admin payload for the seat-assignment workflow.
type AssignmentRequest struct {
	AssignedSeats []string `json:"assigned_seats"`
	Notes         string   `json:"notes"`
}

// AssignmentHandler exposes the seat-assignment workflow over the admin API.
type AssignmentHandler struct {
	registrations *service.RegistrationService
	assignments   *service.AssignmentService
	metrics       *service.MetricsService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(registrations *service.RegistrationService, assignments *service.AssignmentService, metrics *service.MetricsService) *AssignmentHandler {
	return &AssignmentHandler{registrations: registrations, assignments: assignments, metrics: metrics}
}

// Validate godoc
// @Summary Validate a seat proposal without side effects
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body AssignmentRequest true "Proposed seats"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/assignment/validate [post]
func (h *AssignmentHandler) Validate(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result := service.ValidateAssignment(reg, req.AssignedSeats)
	percentage, complete := service.AssignmentProgress(len(req.AssignedSeats), reg.Seats)
	response.JSON(c, http.StatusOK, gin.H{
		"validation": result,
		"percentage": percentage,
		"complete":   complete,
	}, nil)
}

// Process godoc
// @Summary Run the seat-assignment workflow
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body AssignmentRequest true "Proposed seats and notes"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/assignment [post]
func (h *AssignmentHandler) Process(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if len(req.AssignedSeats) == 0 {
		// An empty proposal is valid to the validator but pointless to
		// process; the admin UI filters this before calling.
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "assigned_seats must not be empty"))
		return
	}

	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result := h.assignments.Process(c.Request.Context(), reg, req.AssignedSeats, req.Notes)
	h.metrics.RecordAssignment(result.Success)
	h.metrics.RecordEmail(result.EmailSent)
	response.JSON(c, http.StatusOK, result, nil)
}

// Resend godoc
// @Summary Resend the assignment notification email
// @Tags Assignments
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/assignment/resend [post]
func (h *AssignmentHandler) Resend(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result := h.assignments.Resend(c.Request.Context(), reg)
	h.metrics.RecordEmail(result.EmailSent)
	response.JSON(c, http.StatusOK, result, nil)
}
