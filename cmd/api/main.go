package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/trailhead/trailhead-backend/internal/config"
	"github.com/trailhead/trailhead-backend/internal/database"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/handler"
	"github.com/trailhead/trailhead-backend/internal/middleware"
	"github.com/trailhead/trailhead-backend/internal/migration"
	"github.com/trailhead/trailhead-backend/internal/repository"
	"github.com/trailhead/trailhead-backend/internal/routes"
	"github.com/trailhead/trailhead-backend/internal/service"
	"github.com/trailhead/trailhead-backend/internal/vote"
	"github.com/trailhead/trailhead-backend/pkg/jwt"
	pkglogger "github.com/trailhead/trailhead-backend/pkg/logger"
	pkgredis "github.com/trailhead/trailhead-backend/pkg/redis"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := config.ConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// DB 연결 (필수: 모든 엔드포인트가 DB 의존)
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := middleware.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			pkglogger.Warn("db stats collector not registered: %v", err)
		}
	}

	// Redis 연결 (선택: rate limit 저장소, 실패 시 제한 없이 동작)
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(pkgredis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			pkglogger.Warn("Redis unavailable, rate limiting disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	if err := handler.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewForumTopicRepository(db)
	postRepo := repository.NewForumPostRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	forumVotes := repository.NewForumVoteStore(db)
	locationVotes := repository.NewLocationVoteStore(db)

	// Services
	userService := service.NewUserService(userRepo)
	forumService := service.NewForumService(topicRepo, postRepo, forumVotes,
		vote.NewLedger[domain.ForumTarget]("forum", forumVotes))
	locationService := service.NewLocationService(locationRepo, locationVotes,
		vote.NewLedger[domain.LocationTarget]("location", locationVotes))

	// Gin 라우터 생성
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS 설정
	allowOrigins := cfg.CORS.AllowOrigins
	if strings.TrimSpace(allowOrigins) == "" {
		allowOrigins = "http://localhost:4321"
	}
	corsConfig := cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Middleware
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
		router.Use(middleware.RateLimit(redisClient, rl))
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := database.Ping(db); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": "trailhead-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(
		router,
		handler.NewForumHandler(forumService),
		handler.NewLocationHandler(locationService),
		handler.NewMeHandler(userService),
		userService,
		jwtManager,
		redisClient,
		cfg,
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "NOT_FOUND", "message": "not found"}})
	})

	// 서버 시작
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		pkglogger.Info("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	pkglogger.Info("Server stopped")
}

// splitAndTrim splits a string by delimiter and drops empty parts
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
