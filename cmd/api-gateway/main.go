package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/junyours/occ-admission-sub002/api/swagger"
	"github.com/junyours/occ-admission-sub002/internal/handler"
	"github.com/junyours/occ-admission-sub002/internal/middleware"
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/internal/repository"
	"github.com/junyours/occ-admission-sub002/internal/service"
	"github.com/junyours/occ-admission-sub002/pkg/cache"
	"github.com/junyours/occ-admission-sub002/pkg/config"
	"github.com/junyours/occ-admission-sub002/pkg/database"
	"github.com/junyours/occ-admission-sub002/pkg/jobs"
	"github.com/junyours/occ-admission-sub002/pkg/logger"
	corsmiddleware "github.com/junyours/occ-admission-sub002/pkg/middleware/cors"
	reqidmiddleware "github.com/junyours/occ-admission-sub002/pkg/middleware/requestid"
	"github.com/junyours/occ-admission-sub002/pkg/storage"
)

// @title OCC Admission Guidance API
// @version 1.0.0
// @description Guidance counselor backend for exam registration and personality assessment administration
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	imageStore, err := storage.NewLocalStorage(cfg.Questions.ImageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init question image storage", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	validate := validator.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	evaluatorRepo := repository.NewEvaluatorRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	personalityRepo := repository.NewPersonalityRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	evaluatorSvc := service.NewEvaluatorService(evaluatorRepo, userRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, cacheRepo, cfg.Registration.ScheduleCacheTTL, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, scheduleRepo, userRepo, validate, logr, service.SettingsConfig{
		DefaultSessionCap:  cfg.Registration.DefaultSessionCap,
		MorningStartTime:   cfg.Registration.MorningStartTime,
		MorningEndTime:     cfg.Registration.MorningEndTime,
		AfternoonStartTime: cfg.Registration.AfternoonStartTime,
		AfternoonEndTime:   cfg.Registration.AfternoonEndTime,
	}, scheduleSvc.InvalidateCache)
	archiveSvc := service.NewArchiveService(registrationRepo, userRepo, validate, logr, scheduleSvc.InvalidateCache)
	personalitySvc := service.NewPersonalityService(personalityRepo, validate, logr)
	imageSigner := storage.NewSignedURLSigner(cfg.Questions.SignedURLSecret, cfg.Questions.SignedURLTTL)
	questionSvc := service.NewQuestionService(questionRepo, imageStore, imageSigner, userRepo, validate, logr, service.QuestionConfig{
		DefaultPerPage: cfg.Questions.DefaultPerPage,
		MinPerPage:     cfg.Questions.MinPerPage,
		MaxPerPage:     cfg.Questions.MaxPerPage,
	})
	ruleSvc := service.NewRuleService(ruleRepo, cacheRepo, userRepo, validate, logr, service.RulesConfig{
		DefaultPassingRate: cfg.Rules.DefaultPassingRate,
		SnapshotTTL:        cfg.Rules.SnapshotTTL,
	})
	reportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	reportSvc := service.NewReportService(archiveSvc, exportStore, reportSigner, logr, jobs.QueueConfig{
		Workers:    cfg.Imports.WorkerConcurrency,
		MaxRetries: cfg.Imports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc.Start(context.Background())
	defer reportSvc.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	evaluatorHandler := handler.NewEvaluatorHandler(evaluatorSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	archiveHandler := handler.NewArchiveHandler(archiveSvc, reportSvc)
	personalityHandler := handler.NewPersonalityHandler(personalitySvc, metricsSvc, cfg.Imports.MaxFileSizeBytes)
	questionHandler := handler.NewQuestionHandler(questionSvc, metricsSvc, cfg.Imports.MaxFileSizeBytes)
	ruleHandler := handler.NewRuleHandler(ruleSvc, metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

	// Report downloads authenticate through the signed URL token, not JWT.
	api.GET("/guidance/archived-registrations/reports/download", archiveHandler.DownloadReport)

	guidance := api.Group("/guidance")
	guidance.Use(middleware.JWT(authSvc))
	guidance.Use(middleware.RequireRoles(models.RoleGuidance, models.RoleAdmin))
	{
		guidance.GET("/evaluators", evaluatorHandler.List)
		guidance.POST("/evaluators", evaluatorHandler.Create)
		guidance.DELETE("/evaluators/:id", evaluatorHandler.Delete)

		guidance.GET("/schedules/closed", scheduleHandler.ListClosed)

		guidance.GET("/registration-settings", settingsHandler.Get)
		guidance.PUT("/registration-settings", settingsHandler.Update)
		guidance.POST("/registration-settings/exam-dates/toggle", settingsHandler.ToggleDate)
		guidance.POST("/registration-settings/exam-dates/bulk-select", settingsHandler.BulkSelect)

		guidance.GET("/archived-registrations", archiveHandler.List)
		guidance.POST("/archived-registrations/:id/unarchive", archiveHandler.Unarchive)
		guidance.POST("/archived-registrations/bulk-unarchive", archiveHandler.BulkUnarchive)
		guidance.POST("/archived-registrations/reports", archiveHandler.RequestReport)

		guidance.GET("/personality-questions", personalityHandler.List)
		guidance.POST("/personality-questions", personalityHandler.Create)
		guidance.GET("/personality-questions/:id", personalityHandler.Get)
		guidance.PUT("/personality-questions/:id", personalityHandler.Update)
		guidance.DELETE("/personality-questions/:id", personalityHandler.Delete)
		guidance.POST("/personality-questions/import", personalityHandler.Import)

		guidance.GET("/exam-questions", questionHandler.List)
		guidance.POST("/exam-questions", questionHandler.Create)
		guidance.POST("/exam-questions/bulk-archive", questionHandler.BulkArchive)
		guidance.POST("/exam-questions/import", questionHandler.Import)
		guidance.GET("/exam-questions/:id", questionHandler.Get)
		guidance.PUT("/exam-questions/:id", questionHandler.Update)
		guidance.GET("/exam-questions/:id/locate", questionHandler.Locate)
		guidance.POST("/exam-questions/:id/archive", questionHandler.Archive)
		guidance.GET("/exam-questions/:id/images", questionHandler.Images)
		guidance.POST("/exam-questions/:id/images", questionHandler.UploadImage)

		guidance.GET("/recommendation-rules", ruleHandler.List)
		guidance.POST("/recommendation-rules", ruleHandler.Create)
		guidance.GET("/recommendation-rules/compatible-courses", ruleHandler.CompatibleCourses)
		guidance.PUT("/recommendation-rules/:id", ruleHandler.Update)
		guidance.DELETE("/recommendation-rules/:id", ruleHandler.Delete)
		guidance.POST("/generate-all-rules", ruleHandler.GenerateAll)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
