package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/models"
	"github.com/roblesmun/roblesmun-api/internal/service"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
	"github.com/roblesmun/roblesmun-api/pkg/response"
	"github.com/roblesmun/roblesmun-api/pkg/storage"
)

// RegistrationHandler exposes the public intake wizard endpoint and the admin
// verification endpoints around registrations.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	metrics       *service.MetricsService
	files         *storage.LocalStorage
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(registrations *service.RegistrationService, metrics *service.MetricsService, files *storage.LocalStorage) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, metrics: metrics, files: files}
}

// Create godoc
// @Summary Submit a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body models.CreateRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req models.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reg, err := h.registrations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordRegistration()
	response.Created(c, reg)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "Filter by status"
// @Param institution query string false "Filter by institution"
// @Param search query string false "Search institution, email or last name"
// @Param faculty query bool false "Filter by faculty flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var filter models.RegistrationFilter
	filter.Status = models.RegistrationStatus(c.Query("status"))
	filter.Institution = c.Query("institution")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if faculty := c.Query("faculty"); faculty != "" {
		if faculty == "true" {
			v := true
			filter.Faculty = &v
		} else if faculty == "false" {
			v := false
			filter.Faculty = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	registrations, pagination, err := h.registrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}

// Get godoc
// @Summary Get registration detail
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Reject godoc
// @Summary Reject a registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	var actorID string
	if claims := claimsFromContext(c); claims != nil {
		actorID = claims.UserID
	}
	reg, err := h.registrations.Reject(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// ResendReceipt godoc
// @Summary Resend the registration receipt email
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 204
// @Router /admin/registrations/{id}/receipt/resend [post]
func (h *RegistrationHandler) ResendReceipt(c *gin.Context) {
	if err := h.registrations.ResendReceipt(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReceiptLink godoc
// @Summary Issue a signed receipt download link
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/receipt/link [get]
func (h *RegistrationHandler) ReceiptLink(c *gin.Context) {
	token, expiresAt, err := h.registrations.ReceiptDownloadToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}

// DownloadReceipt godoc
// @Summary Download a receipt via signed token
// @Tags Registrations
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /registrations/receipt [get]
func (h *RegistrationHandler) DownloadReceipt(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.registrations.ResolveReceiptToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(h.files.Path(relPath))
}

// Stats godoc
// @Summary Registration counts by status
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/stats [get]
func (h *RegistrationHandler) Stats(c *gin.Context) {
	counts, err := h.registrations.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
