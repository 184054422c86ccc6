package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/service"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
	"github.com/roblesmun/roblesmun-api/pkg/response"
)

// DelegateHandler exposes the per-registration delegate roster. Routes are
// nested under /admin/registrations/:id/delegates.
type DelegateHandler struct {
	delegates *service.DelegateService
}

// NewDelegateHandler constructs the handler.
func NewDelegateHandler(delegates *service.DelegateService) *DelegateHandler {
	return &DelegateHandler{delegates: delegates}
}

// List godoc
// @Summary List a registration's delegates
// @Tags Delegates
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/delegates [get]
func (h *DelegateHandler) List(c *gin.Context) {
	delegates, err := h.delegates.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, delegates, nil)
}

// Create godoc
// @Summary Add a delegate to the roster
// @Tags Delegates
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body service.UpsertDelegateRequest true "Delegate payload"
// @Success 201 {object} response.Envelope
// @Router /admin/registrations/{id}/delegates [post]
func (h *DelegateHandler) Create(c *gin.Context) {
	var req service.UpsertDelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	delegate, err := h.delegates.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, delegate)
}

// Update godoc
// @Summary Update a delegate
// @Tags Delegates
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param delegateId path string true "Delegate ID"
// @Param payload body service.UpsertDelegateRequest true "Delegate payload"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id}/delegates/{delegateId} [put]
func (h *DelegateHandler) Update(c *gin.Context) {
	var req service.UpsertDelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	delegate, err := h.delegates.Update(c.Request.Context(), c.Param("id"), c.Param("delegateId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, delegate, nil)
}

// Delete godoc
// @Summary Remove a delegate
// @Tags Delegates
// @Produce json
// @Param id path string true "Registration ID"
// @Param delegateId path string true "Delegate ID"
// @Success 204
// @Router /admin/registrations/{id}/delegates/{delegateId} [delete]
func (h *DelegateHandler) Delete(c *gin.Context) {
	if err := h.delegates.Delete(c.Request.Context(), c.Param("id"), c.Param("delegateId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
