package v1

import (
	"net/http"
	"time"

	"hirematrix-backend/config"
	"hirematrix-backend/internal/delivery/http/middleware"
	"hirematrix-backend/internal/delivery/http/response"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	UserUC       domain.UserUsecase
	InterviewUC  domain.InterviewUsecase
	OnboardingUC domain.OnboardingUsecase
	TalentUC     domain.TalentUsecase
	HealthUC     domain.HealthUsecase
	Tokens       *auth.TokenManager
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// CORS must be first so preflights never hit the limiter.
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))
	{
		NewAuthHandler(v1, protected, deps.AuthUC,
			middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(deps.Config.RateLimitLoginThreshold, window)))
		NewInterviewHandler(protected, deps.InterviewUC, deps.OnboardingUC,
			middleware.RateLimitMiddleware(middleware.AnswerRateLimitConfig(deps.Config.RateLimitAnswerThreshold, window)))
		NewTalentHandler(protected, deps.TalentUC)
		NewUserHandler(protected, deps.UserUC, deps.HealthUC)
	}

	return r
}
