package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/trailhead/trailhead-backend/internal/config"
	"github.com/trailhead/trailhead-backend/internal/handler"
	"github.com/trailhead/trailhead-backend/internal/middleware"
	"github.com/trailhead/trailhead-backend/pkg/jwt"
)

// Setup configures all API routes.
// redisClient may be nil, which disables the per-user write limits.
func Setup(
	router *gin.Engine,
	forumHandler *handler.ForumHandler,
	locationHandler *handler.LocationHandler,
	meHandler *handler.MeHandler,
	userSyncer middleware.UserSyncer,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	// 토큰이 있으면 identity 설정 + users 테이블 동기화, 없으면 익명으로 통과
	api := router.Group("/api/v1", middleware.OptionalJWTAuth(jwtManager), middleware.SyncUser(userSyncer))

	auth := middleware.JWTAuth(jwtManager)
	voteLimit := middleware.RateLimitPerUser(redisClient, cfg.RateLimit.VotesPerMinute)

	// Forum
	forum := api.Group("/forum")
	{
		forum.GET("/topics", forumHandler.ListTopics)               // 토픽 목록 (공개)
		forum.GET("/topics/:slug", forumHandler.GetTopic)           // 토픽 상세 + 답글 (공개)
		forum.POST("/topics", auth, forumHandler.CreateTopic)       // 토픽 생성
		forum.PUT("/topics/:id", auth, forumHandler.UpdateTopic)    // 토픽 수정 (작성자)
		forum.DELETE("/topics/:id", auth, forumHandler.DeleteTopic) // 토픽 삭제 (작성자, cascade)
		forum.POST("/posts", auth, forumHandler.CreatePost)         // 답글 작성
		forum.PUT("/posts/:id", auth, forumHandler.UpdatePost)      // 답글 수정 (작성자)
		forum.DELETE("/posts/:id", auth, forumHandler.DeletePost)   // 답글 삭제 (작성자)
		forum.POST("/vote", auth, voteLimit, forumHandler.Vote)     // 토픽/답글 추천
	}

	// Locations
	locations := api.Group("/locations")
	{
		locations.GET("", locationHandler.ListLocations)
		locations.POST("", auth, locationHandler.CreateLocation)
		locations.POST("/vote", auth, voteLimit, locationHandler.Vote) // 위치 검증 투표
		locations.GET("/:slug", locationHandler.GetLocation)
		locations.GET("/:slug/edits", locationHandler.ListEdits) // 수정 이력
		locations.PUT("/:id", auth, locationHandler.UpdateLocation)
		locations.DELETE("/:id", auth, locationHandler.DeleteLocation)
	}

	// Current user
	me := api.Group("/me", auth)
	me.GET("", meHandler.GetMe)
	me.PUT("", meHandler.UpdateMe)
}
