package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/middleware"
	"github.com/trailhead/trailhead-backend/internal/service"
	"github.com/trailhead/trailhead-backend/pkg/ginutil"
)

// LocationHandler handles location directory endpoints
type LocationHandler struct {
	service service.LocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(service service.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// ListLocations handles GET /api/v1/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	page, perPage := ginutil.Pagination(c)
	q := strings.TrimSpace(c.Query("q"))

	locations, meta, err := h.service.ListLocations(c.Request.Context(), q, page, perPage)
	if err != nil {
		respondError(c, err, "Failed to list locations")
		return
	}
	common.V2SuccessWithMeta(c, locations, meta)
}

// GetLocation handles GET /api/v1/locations/:slug
func (h *LocationHandler) GetLocation(c *gin.Context) {
	detail, err := h.service.GetLocation(c.Request.Context(), middleware.GetIdentity(c), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Location not found")
		return
	}
	common.V2Success(c, detail)
}

// ListEdits handles GET /api/v1/locations/:slug/edits
func (h *LocationHandler) ListEdits(c *gin.Context) {
	edits, err := h.service.ListEdits(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Location not found")
		return
	}
	common.V2Success(c, edits)
}

// CreateLocation handles POST /api/v1/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req domain.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref, err := h.service.CreateLocation(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create location")
		return
	}
	common.V2Created(c, ref)
}

// UpdateLocation handles PUT /api/v1/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req domain.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref, err := h.service.UpdateLocation(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update location")
		return
	}
	common.V2Success(c, ref)
}

// DeleteLocation handles DELETE /api/v1/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	if err := h.service.DeleteLocation(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete location")
		return
	}
	common.V2Success(c, gin.H{})
}

// Vote handles POST /api/v1/locations/vote
func (h *LocationHandler) Vote(c *gin.Context) {
	var req domain.LocationVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.Vote(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		respondError(c, err, "Failed to record vote")
		return
	}
	common.V2Success(c, result)
}
