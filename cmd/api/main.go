package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skilltracker/skilltracker-api/internal/handler"
	"github.com/skilltracker/skilltracker-api/internal/middleware"
	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/repository"
	"github.com/skilltracker/skilltracker-api/internal/service"
	"github.com/skilltracker/skilltracker-api/pkg/cache"
	"github.com/skilltracker/skilltracker-api/pkg/config"
	"github.com/skilltracker/skilltracker-api/pkg/database"
	"github.com/skilltracker/skilltracker-api/pkg/logger"
	corsmiddleware "github.com/skilltracker/skilltracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skilltracker/skilltracker-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Notifications.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, unread-count cache disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	store := repository.NewStore(db, logr)
	store.OnRetry(metrics.RecordTxRetry)

	unreadCache := service.NewUnreadCountCache(redisClient, cfg.Notifications.CacheTTL)

	users := service.NewUserService(store, validate, logr)
	courses := service.NewCourseService(store, validate, logr)
	contents := service.NewContentService(store, validate, logr)
	enrollments := service.NewEnrollmentService(store, validate, logr)
	comments := service.NewCommentService(store, validate, logr)
	notifications := service.NewNotificationService(store, unreadCache, metrics, logr)

	userHandler := handler.NewUserHandler(users)
	courseHandler := handler.NewCourseHandler(courses, contents, enrollments)
	contentHandler := handler.NewContentHandler(contents, comments)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollments)
	notificationHandler := handler.NewNotificationHandler(notifications)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/users", userHandler.Create)
		api.GET("/users/:id", userHandler.Get)
		api.DELETE("/users/:id", userHandler.Delete)
		api.GET("/users/:id/roles", userHandler.Roles)
		api.POST("/users/:id/roles", userHandler.AddRole)
		api.DELETE("/users/:id/roles/:role", userHandler.RemoveRole)

		manager := api.Group("")
		manager.Use(middleware.RequireRoles(models.RoleManager))
		{
			manager.POST("/courses", courseHandler.Create)
			manager.GET("/courses/mine", courseHandler.ListMine)
			manager.PATCH("/courses/:id", courseHandler.Update)
			manager.POST("/courses/:id/produce", courseHandler.Produce)
			manager.DELETE("/courses/:id", courseHandler.Delete)
			manager.POST("/contents", contentHandler.Create)
			manager.PATCH("/contents/:id", contentHandler.Update)
			manager.DELETE("/contents/:id", contentHandler.Delete)
			manager.GET("/courses/:id/enrollments", courseHandler.Enrollments)
		}

		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/courses/:id/contents", courseHandler.Contents)
		api.GET("/contents/:id", contentHandler.Get)
		api.GET("/contents/:id/comments", contentHandler.Comments)
		api.POST("/contents/:id/comments", contentHandler.AddComment)

		employee := api.Group("")
		employee.Use(middleware.RequireRoles(models.RoleEmployee))
		{
			employee.POST("/enrollments", enrollmentHandler.Enroll)
			employee.GET("/enrollments/mine", enrollmentHandler.ListMine)
		}

		api.GET("/enrollments/:id", enrollmentHandler.Get)
		api.GET("/enrollments/:id/statuses", enrollmentHandler.Statuses)
		api.PATCH("/enrollments/:id/statuses/:contentId", enrollmentHandler.UpdateStatus)
		api.DELETE("/enrollments/:id", enrollmentHandler.Delete)

		api.GET("/notifications", notificationHandler.List)
		api.GET("/notifications/unread", notificationHandler.UnreadCount)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
