package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/BenAmorMed/ExamSupervisor/api/swagger"
	"github.com/BenAmorMed/ExamSupervisor/internal/handler"
	"github.com/BenAmorMed/ExamSupervisor/internal/middleware"
	"github.com/BenAmorMed/ExamSupervisor/internal/repository"
	"github.com/BenAmorMed/ExamSupervisor/internal/service"
	"github.com/BenAmorMed/ExamSupervisor/internal/upstream"
	"github.com/BenAmorMed/ExamSupervisor/pkg/cache"
	"github.com/BenAmorMed/ExamSupervisor/pkg/config"
	"github.com/BenAmorMed/ExamSupervisor/pkg/database"
	"github.com/BenAmorMed/ExamSupervisor/pkg/export"
	"github.com/BenAmorMed/ExamSupervisor/pkg/logger"
	corsmiddleware "github.com/BenAmorMed/ExamSupervisor/pkg/middleware/cors"
	reqidmiddleware "github.com/BenAmorMed/ExamSupervisor/pkg/middleware/requestid"
)

// @title Exam Supervisor Gateway
// @version 1.0.0
// @description Gateway for the exam-supervision planning of the web and mobile clients
// @BasePath /api/v1
// @schemes http

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

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Planning.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, planning cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Planning.CacheTTL, logr, true)
		}
	}

	var audit service.AuditRecorder
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Warnw("database unavailable, audit trail disabled", "error", err)
		} else {
			audit = repository.NewAuditRepository(db)
		}
	}

	backend := upstream.New(cfg.Upstream, logr, metricsSvc)
	validate := validator.New()

	authSvc := service.NewAuthService(backend, audit, validate, logr, cfg.JWT)
	planningSvc := service.NewPlanningService(backend, cacheSvc, audit, export.NewPDFExporter(), logr, cfg.Upstream.PageSize)

	authHandler := handler.NewAuthHandler(authSvc)
	planningHandler := handler.NewPlanningHandler(planningSvc)

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
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	planning := api.Group("/planning", middleware.JWT(authSvc))
	planning.GET("/overview", planningHandler.Overview)
	planning.POST("/sessions/:id/select", planningHandler.Select)
	planning.POST("/sessions/:id/cancel", planningHandler.Cancel)
	planning.POST("/auto-assign", planningHandler.AutoAssign)
	planning.GET("/summary.pdf", planningHandler.Summary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("gateway starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("gateway failed", "error", err)
	}
}
