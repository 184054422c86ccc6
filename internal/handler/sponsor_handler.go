package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/service"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
	"github.com/roblesmun/roblesmun-api/pkg/response"
)

// SponsorHandler exposes the sponsor roster.
type SponsorHandler struct {
	sponsors *service.SponsorService
}

// NewSponsorHandler constructs the handler.
func NewSponsorHandler(sponsors *service.SponsorService) *SponsorHandler {
	return &SponsorHandler{sponsors: sponsors}
}

// List godoc
// @Summary List sponsors
// @Tags Sponsors
// @Produce json
// @Param all query bool false "Include inactive sponsors (admin)"
// @Success 200 {object} response.Envelope
// @Router /sponsors [get]
func (h *SponsorHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	sponsors, err := h.sponsors.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsors, nil)
}

// Create godoc
// @Summary Create sponsor
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param payload body service.UpsertSponsorRequest true "Sponsor payload"
// @Success 201 {object} response.Envelope
// @Router /admin/sponsors [post]
func (h *SponsorHandler) Create(c *gin.Context) {
	var req service.UpsertSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sponsor, err := h.sponsors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sponsor)
}

// Update godoc
// @Summary Update sponsor
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param id path string true "Sponsor ID"
// @Param payload body service.UpsertSponsorRequest true "Sponsor payload"
// @Success 200 {object} response.Envelope
// @Router /admin/sponsors/{id} [put]
func (h *SponsorHandler) Update(c *gin.Context) {
	var req service.UpsertSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sponsor, err := h.sponsors.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// Delete godoc
// @Summary Delete sponsor
// @Tags Sponsors
// @Produce json
// @Param id path string true "Sponsor ID"
// @Success 204
// @Router /admin/sponsors/{id} [delete]
func (h *SponsorHandler) Delete(c *gin.Context) {
	if err := h.sponsors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadLogo godoc
// @Summary Upload sponsor logo
// @Tags Sponsors
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Sponsor ID"
// @Param file formData file true "Logo image"
// @Success 200 {object} response.Envelope
// @Router /admin/sponsors/{id}/logo [post]
func (h *SponsorHandler) UploadLogo(c *gin.Context) {
	filename, contentType, data, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sponsor, err := h.sponsors.UploadLogo(c.Request.Context(), c.Param("id"), filename, contentType, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// readUpload extracts the single "file" part of a multipart request.
func readUpload(c *gin.Context) (filename, contentType string, data []byte, err error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	defer file.Close() //nolint:errcheck

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}
