package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/diwan-hq/diwan-api/api/swagger"
	"github.com/diwan-hq/diwan-api/internal/handler"
	"github.com/diwan-hq/diwan-api/internal/middleware"
	"github.com/diwan-hq/diwan-api/internal/repository"
	"github.com/diwan-hq/diwan-api/internal/service"
	"github.com/diwan-hq/diwan-api/pkg/cache"
	"github.com/diwan-hq/diwan-api/pkg/config"
	"github.com/diwan-hq/diwan-api/pkg/database"
	"github.com/diwan-hq/diwan-api/pkg/logger"
	corsmiddleware "github.com/diwan-hq/diwan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/diwan-hq/diwan-api/pkg/middleware/requestid"
)

// @title Diwan API
// @version 1.0.0
// @description Correspondence registers, follow-up tracking and activity log
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, statistics caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	incomingRepo := repository.NewIncomingRepository(db)
	outgoingRepo := repository.NewOutgoingRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	reportRepo := repository.NewReportRepository(db)

	metricsSvc := service.NewMetricsService()
	auditSink := service.NewAuditSink(auditRepo, metricsSvc)
	authSvc := service.NewAuthService(userRepo, auditSink, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, auditSink, validate, logr)
	codeSvc := service.NewCodeService(incomingRepo, outgoingRepo, outgoingRepo, followUpRepo, logr)
	correspondenceSvc := service.NewCorrespondenceService(incomingRepo, outgoingRepo, codeSvc, auditSink, validate, logr)
	followUpSvc := service.NewFollowUpService(followUpRepo, incomingRepo, outgoingRepo, authSvc, auditSink, validate, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)
	reportSvc := service.NewReportService(reportRepo, incomingRepo, outgoingRepo, followUpRepo, redisClient, metricsSvc, cfg.Reports.StatsCacheTTL, cfg.Reports.ExportLimit, logr)

	if cfg.Auth.BootstrapAdmin {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := userSvc.Bootstrap(ctx, "admin", cfg.Auth.BootstrapAdminPassword); err != nil {
			logr.Sugar().Fatalw("failed to bootstrap admin user", "error", err)
		}
		cancel()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	correspondenceHandler := handler.NewCorrespondenceHandler(correspondenceSvc)
	followUpHandler := handler.NewFollowUpHandler(followUpSvc)
	codeHandler := handler.NewCodeHandler(codeSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	authed.GET("/incoming", middleware.RequirePermission(service.ActionViewIncoming), correspondenceHandler.ListIncoming)
	authed.GET("/incoming/:id", middleware.RequirePermission(service.ActionViewIncoming), correspondenceHandler.GetIncoming)
	authed.POST("/incoming", middleware.RequirePermission(service.ActionAddIncoming), correspondenceHandler.CreateIncoming)
	authed.PUT("/incoming/:id", middleware.RequirePermission(service.ActionEditIncoming), correspondenceHandler.UpdateIncoming)
	authed.DELETE("/incoming/:id", middleware.RequirePermission(service.ActionDeleteIncoming), correspondenceHandler.DeleteIncoming)

	authed.GET("/outgoing", middleware.RequirePermission(service.ActionViewOutgoing), correspondenceHandler.ListOutgoing)
	authed.GET("/outgoing/:id", middleware.RequirePermission(service.ActionViewOutgoing), correspondenceHandler.GetOutgoing)
	authed.POST("/outgoing", middleware.RequirePermission(service.ActionAddOutgoing), correspondenceHandler.CreateOutgoing)
	authed.PUT("/outgoing/:id", middleware.RequirePermission(service.ActionEditOutgoing), correspondenceHandler.UpdateOutgoing)
	authed.DELETE("/outgoing/:id", middleware.RequirePermission(service.ActionDeleteOutgoing), correspondenceHandler.DeleteOutgoing)

	authed.GET("/follow-ups", middleware.RequirePermission(service.ActionViewFollowUp), followUpHandler.List)
	authed.GET("/follow-ups/:id", middleware.RequirePermission(service.ActionViewFollowUp), followUpHandler.Get)
	authed.POST("/follow-ups", middleware.RequirePermission(service.ActionAddFollowUp), followUpHandler.Create)
	authed.PUT("/follow-ups/:id", middleware.RequirePermission(service.ActionEditFollowUp), followUpHandler.Update)
	authed.DELETE("/follow-ups/:id", middleware.RequirePermission(service.ActionDeleteFollowUp), followUpHandler.Delete)

	authed.GET("/codes/next-reference", codeHandler.NextReferenceNumber)
	authed.GET("/codes/next-subject-code", middleware.RequirePermission(service.ActionAddOutgoing), codeHandler.NextSubjectCode)
	authed.GET("/codes/next-follow-up", middleware.RequirePermission(service.ActionAddFollowUp), codeHandler.NextFollowUpCode)

	authed.GET("/users", middleware.RequirePermission(service.ActionManageUsers), userHandler.List)
	authed.GET("/users/:id", middleware.RequirePermission(service.ActionManageUsers), userHandler.Get)
	authed.POST("/users", middleware.RequirePermission(service.ActionManageUsers), userHandler.Create)
	authed.PUT("/users/:id", middleware.RequirePermission(service.ActionManageUsers), userHandler.Update)
	authed.DELETE("/users/:id", middleware.RequirePermission(service.ActionManageUsers), userHandler.Deactivate)

	authed.GET("/activity-log", middleware.RequirePermission(service.ActionViewActivityLog), auditHandler.List)

	authed.GET("/reports/statistics", middleware.RequirePermission(service.ActionViewReports), reportHandler.Statistics)
	authed.GET("/reports/incoming/export", middleware.RequirePermission(service.ActionViewReports), reportHandler.ExportIncoming)
	authed.GET("/reports/outgoing/export", middleware.RequirePermission(service.ActionViewReports), reportHandler.ExportOutgoing)
	authed.GET("/reports/follow-ups/export", middleware.RequirePermission(service.ActionViewReports), reportHandler.ExportFollowUps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
