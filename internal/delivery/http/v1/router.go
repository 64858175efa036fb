package v1

import (
	"log/slog"
	"net/http"

	"resume-ledger-backend/config"
	"resume-ledger-backend/internal/delivery/http/middleware"
	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/internal/usecase"
	"resume-ledger-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ResumeUC       domain.ResumeUsecase
	ExportUC       domain.ExportUsecase
	AvatarUC       domain.AvatarUsecase
	SocialUC       domain.SocialUsecase
	HealthUC       usecase.HealthUsecase
	RateLimiter    *middleware.RateLimiter
	UploadLimiter  *security.UploadLimiter
	SecurityLogger *security.SecurityLogger
	Validate       *validator.Validate
	Logger         *slog.Logger
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.CORSAllowedOrigins, deps.Config.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.Logger))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Success(c, http.StatusOK, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	refreshLimit := deps.RateLimiter.Middleware(middleware.RefreshRateLimitConfig(deps.Config.RefreshPerMinute))
	writeLimit := deps.RateLimiter.Middleware(middleware.OverlayWriteRateLimitConfig(deps.Config.OverlayWritesPerMinute))
	uploadLimit := middleware.UploadLimit(deps.UploadLimiter, deps.SecurityLogger, deps.Logger)

	NewResumeHandler(v1, refreshLimit, deps.ResumeUC, deps.ExportUC, deps.Validate)
	NewAvatarHandler(v1, uploadLimit, writeLimit, deps.AvatarUC, deps.SecurityLogger, deps.Config.UploadMaxBytes)
	NewSocialHandler(v1, writeLimit, deps.SocialUC, deps.SecurityLogger)
	NewBlobHandler(v1, uploadLimit, deps.AvatarUC, deps.Config.UploadMaxBytes, deps.Config.BlobDeletable)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
