package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/models"
	"github.com/roblesmun/roblesmun-api/internal/service"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
	"github.com/roblesmun/roblesmun-api/pkg/response"
)

// PressHandler exposes the press media section.
type PressHandler struct {
	press *service.PressService
}

// NewPressHandler constructs the handler.
func NewPressHandler(press *service.PressService) *PressHandler {
	return &PressHandler{press: press}
}

// List godoc
// @Summary List press items
// @Tags Press
// @Produce json
// @Param kind query string false "Filter by kind (photo, video, article)"
// @Success 200 {object} response.Envelope
// @Router /press [get]
func (h *PressHandler) List(c *gin.Context) {
	items, err := h.press.List(c.Request.Context(), models.PressKind(c.Query("kind")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create press item
// @Tags Press
// @Accept json
// @Produce json
// @Param payload body service.UpsertPressRequest true "Press payload"
// @Success 201 {object} response.Envelope
// @Router /admin/press [post]
func (h *PressHandler) Create(c *gin.Context) {
	var req service.UpsertPressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.press.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update press item
// @Tags Press
// @Accept json
// @Produce json
// @Param id path string true "Press item ID"
// @Param payload body service.UpsertPressRequest true "Press payload"
// @Success 200 {object} response.Envelope
// @Router /admin/press/{id} [put]
func (h *PressHandler) Update(c *gin.Context) {
	var req service.UpsertPressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.press.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete press item
// @Tags Press
// @Produce json
// @Param id path string true "Press item ID"
// @Success 204
// @Router /admin/press/{id} [delete]
func (h *PressHandler) Delete(c *gin.Context) {
	if err := h.press.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadAsset godoc
// @Summary Upload press media asset
// @Tags Press
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Press item ID"
// @Param file formData file true "Media file"
// @Success 200 {object} response.Envelope
// @Router /admin/press/{id}/asset [post]
func (h *PressHandler) UploadAsset(c *gin.Context) {
	filename, contentType, data, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.press.UploadAsset(c.Request.Context(), c.Param("id"), filename, contentType, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
