package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roblesmun/roblesmun-api/internal/models"
	"github.com/roblesmun/roblesmun-api/internal/service"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
	"github.com/roblesmun/roblesmun-api/pkg/response"
)

// CommitteeHandler exposes the public catalog and the admin CRUD.
type CommitteeHandler struct {
	committees *service.CommitteeService
}

// NewCommitteeHandler constructs the handler.
func NewCommitteeHandler(committees *service.CommitteeService) *CommitteeHandler {
	return &CommitteeHandler{committees: committees}
}

// List godoc
// @Summary List committees
// @Tags Committees
// @Produce json
// @Param open query bool false "Filter by open flag"
// @Param level query string false "Filter by level"
// @Param search query string false "Search name or topic"
// @Success 200 {object} response.Envelope
// @Router /committees [get]
func (h *CommitteeHandler) List(c *gin.Context) {
	var filter models.CommitteeFilter
	if open := c.Query("open"); open != "" {
		if open == "true" {
			v := true
			filter.Open = &v
		} else if open == "false" {
			v := false
			filter.Open = &v
		}
	}
	filter.Level = models.CommitteeLevel(c.Query("level"))
	filter.Search = strings.TrimSpace(c.Query("search"))

	committees, err := h.committees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committees, nil)
}

// Get godoc
// @Summary Get committee detail
// @Tags Committees
// @Produce json
// @Param id path string true "Committee ID"
// @Success 200 {object} response.Envelope
// @Router /committees/{id} [get]
func (h *CommitteeHandler) Get(c *gin.Context) {
	committee, err := h.committees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committee, nil)
}

// Create godoc
// @Summary Create committee
// @Tags Committees
// @Accept json
// @Produce json
// @Param payload body service.UpsertCommitteeRequest true "Committee payload"
// @Success 201 {object} response.Envelope
// @Router /admin/committees [post]
func (h *CommitteeHandler) Create(c *gin.Context) {
	var req service.UpsertCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	committee, err := h.committees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, committee)
}

// Update godoc
// @Summary Update committee
// @Tags Committees
// @Accept json
// @Produce json
// @Param id path string true "Committee ID"
// @Param payload body service.UpsertCommitteeRequest true "Committee payload"
// @Success 200 {object} response.Envelope
// @Router /admin/committees/{id} [put]
func (h *CommitteeHandler) Update(c *gin.Context) {
	var req service.UpsertCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	committee, err := h.committees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, committee, nil)
}

// Delete godoc
// @Summary Delete committee
// @Tags Committees
// @Produce json
// @Param id path string true "Committee ID"
// @Success 204
// @Router /admin/committees/{id} [delete]
func (h *CommitteeHandler) Delete(c *gin.Context) {
	if err := h.committees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
