package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/models"
	"github.com/roblesmun/roblesmun-api/internal/service"
	"github.com/roblesmun/roblesmun-api/pkg/response"
)

// AuditHandler exposes the audit trail for admin review.
type AuditHandler struct {
	audits *service.AuditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(audits *service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Param action query string false "Filter by action tag"
// @Param resource query string false "Filter by resource"
// @Param resourceId query string false "Filter by resource ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.AuditFilter
	filter.Action = c.Query("action")
	filter.Resource = c.Query("resource")
	filter.ResourceID = c.Query("resourceId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	entries, pagination, err := h.audits.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
