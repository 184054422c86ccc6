package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/roblesmun/roblesmun-api/api/swagger"
	"github.com/roblesmun/roblesmun-api/internal/handler"
	"github.com/roblesmun/roblesmun-api/internal/middleware"
	"github.com/roblesmun/roblesmun-api/internal/models"
	"github.com/roblesmun/roblesmun-api/internal/repository"
	"github.com/roblesmun/roblesmun-api/internal/service"
	"github.com/roblesmun/roblesmun-api/pkg/cache"
	"github.com/roblesmun/roblesmun-api/pkg/config"
	"github.com/roblesmun/roblesmun-api/pkg/database"
	"github.com/roblesmun/roblesmun-api/pkg/logger"
	"github.com/roblesmun/roblesmun-api/pkg/mailer"
	corsmiddleware "github.com/roblesmun/roblesmun-api/pkg/middleware/cors"
	reqidmiddleware "github.com/roblesmun/roblesmun-api/pkg/middleware/requestid"
	"github.com/roblesmun/roblesmun-api/pkg/pdf"
	"github.com/roblesmun/roblesmun-api/pkg/storage"
)

// @title ROBLESMUN API
// @version 1.0.0
// @description Conference registration and seat assignment backend for the ROBLESMUN Model UN event
// @BasePath /api/v1
// @schemes http https
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
	defer db.Close() //nolint:errcheck

	// Redis only accelerates the public catalog; the API stays up without it.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, committee cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	local, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}
	uploads := storage.NewPublicStorage(local, cfg.Storage.PublicBaseURL, cfg.Storage.MaxFileSizeBytes, cfg.Storage.AllowedMIMEs)
	signer := storage.NewTokenSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	mail := mailer.New(cfg.Mail)
	renderer := pdf.NewRenderer(cfg.Event.Name, cfg.Event.Edition)
	validate := validator.New()

	registrationRepo := repository.NewRegistrationRepository(db)
	committeeRepo := repository.NewCommitteeRepository(db)
	sponsorRepo := repository.NewSponsorRepository(db)
	pressRepo := repository.NewPressRepository(db)
	delegateRepo := repository.NewDelegateRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	notifications := service.NewNotificationService(mail, cfg.Event.Name, logr)
	committees := service.NewCommitteeService(committeeRepo, cacheRepo, cfg.Cache.CommitteeTTL, validate, logr)
	assignments := service.NewAssignmentService(registrationRepo, uploads, renderer, notifications, auditRepo, logr)
	registrations := service.NewRegistrationService(
		registrationRepo,
		committees,
		uploads,
		renderer,
		notifications,
		signer,
		auditRepo,
		service.PricingConfig{
			SeatPrice:        cfg.Event.SeatPrice,
			FacultyDiscount:  cfg.Event.FacultyDiscount,
			MaxSeatsPerOrder: cfg.Event.MaxSeatsPerOrder,
		},
		validate,
		logr,
	)
	sponsors := service.NewSponsorService(sponsorRepo, uploads, validate, logr)
	press := service.NewPressService(pressRepo, uploads, validate, logr)
	delegates := service.NewDelegateService(delegateRepo, registrationRepo, validate, logr)
	auth := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	audits := service.NewAuditService(auditRepo, logr)

	authHandler := handler.NewAuthHandler(auth)
	registrationHandler := handler.NewRegistrationHandler(registrations, metricsSvc, local)
	assignmentHandler := handler.NewAssignmentHandler(registrations, assignments, metricsSvc)
	committeeHandler := handler.NewCommitteeHandler(committees)
	sponsorHandler := handler.NewSponsorHandler(sponsors)
	pressHandler := handler.NewPressHandler(press)
	delegateHandler := handler.NewDelegateHandler(delegates)
	auditHandler := handler.NewAuditHandler(audits)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static("/files", cfg.Storage.BaseDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		api.POST("/registrations", registrationHandler.Create)
		api.GET("/registrations/receipt", registrationHandler.DownloadReceipt)

		api.GET("/committees", committeeHandler.List)
		api.GET("/committees/:id", committeeHandler.Get)
		api.GET("/sponsors", sponsorHandler.List)
		api.GET("/press", pressHandler.List)
	}

	authed := api.Group("/auth", middleware.JWT(auth))
	{
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/me", authHandler.Me)
	}

	admin := api.Group("/admin", middleware.JWT(auth))

	// STAFF may review registrations and the audit trail but not mutate.
	staff := admin.Group("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff))
	{
		staff.GET("/registrations", registrationHandler.List)
		staff.GET("/registrations/stats", registrationHandler.Stats)
		staff.GET("/registrations/:id", registrationHandler.Get)
		staff.GET("/registrations/:id/delegates", delegateHandler.List)
		staff.GET("/audit-logs", auditHandler.List)
	}

	manage := admin.Group("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	{
		manage.POST("/registrations/:id/reject", registrationHandler.Reject)
		manage.POST("/registrations/:id/receipt/resend", registrationHandler.ResendReceipt)
		manage.GET("/registrations/:id/receipt/link", registrationHandler.ReceiptLink)

		manage.POST("/registrations/:id/assignment/validate", assignmentHandler.Validate)
		manage.POST("/registrations/:id/assignment", assignmentHandler.Process)
		manage.POST("/registrations/:id/assignment/resend", assignmentHandler.Resend)

		manage.POST("/registrations/:id/delegates", delegateHandler.Create)
		manage.PUT("/registrations/:id/delegates/:delegateId", delegateHandler.Update)
		manage.DELETE("/registrations/:id/delegates/:delegateId", delegateHandler.Delete)

		manage.POST("/committees", middleware.Audit(auditRepo, "committee_created", "committee"), committeeHandler.Create)
		manage.PUT("/committees/:id", middleware.Audit(auditRepo, "committee_updated", "committee"), committeeHandler.Update)
		manage.DELETE("/committees/:id", middleware.Audit(auditRepo, "committee_deleted", "committee"), committeeHandler.Delete)

		manage.GET("/sponsors", sponsorHandler.List)
		manage.POST("/sponsors", middleware.Audit(auditRepo, "sponsor_created", "sponsor"), sponsorHandler.Create)
		manage.PUT("/sponsors/:id", middleware.Audit(auditRepo, "sponsor_updated", "sponsor"), sponsorHandler.Update)
		manage.DELETE("/sponsors/:id", middleware.Audit(auditRepo, "sponsor_deleted", "sponsor"), sponsorHandler.Delete)
		manage.POST("/sponsors/:id/logo", sponsorHandler.UploadLogo)

		manage.POST("/press", middleware.Audit(auditRepo, "press_created", "press"), pressHandler.Create)
		manage.PUT("/press/:id", middleware.Audit(auditRepo, "press_updated", "press"), pressHandler.Update)
		manage.DELETE("/press/:id", middleware.Audit(auditRepo, "press_deleted", "press"), pressHandler.Delete)
		manage.POST("/press/:id/asset", pressHandler.UploadAsset)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
