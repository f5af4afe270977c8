package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/middleware"
	"github.com/trailhead/trailhead-backend/internal/service"
)

// MeHandler handles the caller's own profile
type MeHandler struct {
	service service.UserService
}

// NewMeHandler creates a new MeHandler
func NewMeHandler(service service.UserService) *MeHandler {
	return &MeHandler{service: service}
}

// GetMe handles GET /api/v1/me
func (h *MeHandler) GetMe(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	common.V2Success(c, user)
}

// UpdateMe handles PUT /api/v1/me
func (h *MeHandler) UpdateMe(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	common.V2Success(c, user)
}
