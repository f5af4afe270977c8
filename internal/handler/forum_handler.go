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

// ForumHandler handles forum topic, post and vote endpoints
type ForumHandler struct {
	service service.ForumService
}

// NewForumHandler creates a new ForumHandler
func NewForumHandler(service service.ForumService) *ForumHandler {
	return &ForumHandler{service: service}
}

// ListTopics handles GET /api/v1/forum/topics
func (h *ForumHandler) ListTopics(c *gin.Context) {
	page, perPage := ginutil.Pagination(c)
	q := strings.TrimSpace(c.Query("q"))

	topics, meta, err := h.service.ListTopics(c.Request.Context(), q, page, perPage)
	if err != nil {
		respondError(c, err, "Failed to list topics")
		return
	}
	common.V2SuccessWithMeta(c, topics, meta)
}

// GetTopic handles GET /api/v1/forum/topics/:slug
func (h *ForumHandler) GetTopic(c *gin.Context) {
	detail, err := h.service.GetTopic(c.Request.Context(), middleware.GetIdentity(c), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Topic not found")
		return
	}
	common.V2Success(c, detail)
}

// CreateTopic handles POST /api/v1/forum/topics
func (h *ForumHandler) CreateTopic(c *gin.Context) {
	var req domain.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref, err := h.service.CreateTopic(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create topic")
		return
	}
	common.V2Created(c, ref)
}

// UpdateTopic handles PUT /api/v1/forum/topics/:id
func (h *ForumHandler) UpdateTopic(c *gin.Context) {
	var req domain.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref, err := h.service.UpdateTopic(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update topic")
		return
	}
	common.V2Success(c, ref)
}

// DeleteTopic handles DELETE /api/v1/forum/topics/:id
func (h *ForumHandler) DeleteTopic(c *gin.Context) {
	if err := h.service.DeleteTopic(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete topic")
		return
	}
	common.V2Success(c, gin.H{})
}

// CreatePost handles POST /api/v1/forum/posts
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref, err := h.service.CreatePost(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create post")
		return
	}
	common.V2Created(c, ref)
}

// UpdatePost handles PUT /api/v1/forum/posts/:id
func (h *ForumHandler) UpdatePost(c *gin.Context) {
	var req domain.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.UpdatePost(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), &req); err != nil {
		respondError(c, err, "Failed to update post")
		return
	}
	common.V2Success(c, gin.H{})
}

// DeletePost handles DELETE /api/v1/forum/posts/:id
func (h *ForumHandler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete post")
		return
	}
	common.V2Success(c, gin.H{})
}

// Vote handles POST /api/v1/forum/vote
func (h *ForumHandler) Vote(c *gin.Context) {
	var req domain.ForumVoteRequest
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
