package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"flowrk-backend/config"
	"flowrk-backend/internal/delivery/http/middleware"
	"flowrk-backend/internal/domain"
)

type RouterDeps struct {
	IdentityUC domain.IdentityUsecase
	Sessions   domain.SessionCache
	JobUC      domain.JobUsecase
	WorkerUC   domain.WorkerUsecase
	EmployerUC domain.EmployerUsecase
	AdminUC    domain.AdminUsecase
	ContentUC  domain.ContentUsecase
	HealthUC   domain.HealthUsecase
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	release := cfg.GinMode == gin.ReleaseMode
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()
	r.ContextWithFallback = true

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(append([]string{cfg.FrontendURL}, cfg.CORSOrigins...), release)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.CSRFMiddleware(cfg.SecureCookies))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Optional session: resolves the caller when possible, never rejects
	session := v1.Group("")
	session.Use(middleware.OptionalAuthMiddleware(deps.Sessions))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Sessions))

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminMiddleware(deps.IdentityUC.IsAdmin))

	loginLimit := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window))
	contactLimit := middleware.RateLimitMiddleware(middleware.ContactRateLimitConfig(window))

	NewAuthHandler(v1, session, protected, deps.IdentityUC, loginLimit, cfg.SecureCookies)
	NewJobHandler(v1, protected, deps.JobUC)
	NewWorkerHandler(protected, deps.WorkerUC)
	NewEmployerHandler(protected, deps.EmployerUC)
	NewContentHandler(v1, deps.ContentUC, contactLimit)
	NewAdminHandler(admin, deps.AdminUC, deps.ContentUC)

	return r
}
