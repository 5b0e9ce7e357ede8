package router

import (
	"context"
	"net/http"
	"time"

	"github.com/examify/examify-backend/internal/config"
	"github.com/examify/examify-backend/internal/handler"
	"github.com/examify/examify-backend/internal/middleware"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Exam      *handler.ExamHandler
	Result    *handler.ResultHandler
	Integrity *handler.IntegrityHandler
	Monitor   *handler.MonitorHandler
	// Health is optional; without it /health only reports liveness.
	Health HealthChecker
}

// HealthChecker reports the state of backing stores.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.Authenticator,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		if handlers.Health == nil {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"})
			return
		}
		deps, healthy := handlers.Health.Check(c.Request.Context())
		if !healthy {
			response.Success(c, http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": deps})
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "dependencies": deps})
	})

	requireAuth := middleware.RequireAuth(auth)
	examinerOnly := middleware.RequireRole(model.RoleExaminer)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	authAPI := router.Group("/api/auth")
	{
		authAPI.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		authAPI.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		authAPI.POST("/logout", requireAuth, handlers.Auth.Logout)
		authAPI.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api")
	api.Use(requireAuth)
	{
		api.POST("/exams", examinerOnly, handlers.Exam.Create)
		api.GET("/exams", handlers.Exam.List)
		// Role is checked by the exam service so both roles get a clear answer.
		api.GET("/exams/all", handlers.Exam.ListAll)
		api.POST("/exams/submit", handlers.Exam.Submit)
		api.GET("/exams/:id", handlers.Exam.Get)
		api.POST("/exams/:id/submit", handlers.Exam.Submit)
		api.PATCH("/exams/:id/status", examinerOnly, handlers.Exam.ToggleStatus)
		api.GET("/exams/:id/monitor", examinerOnly, handlers.Monitor.MonitorExamSSE)

		api.GET("/results", handlers.Result.List)

		certs := api.Group("")
		certs.Use(middleware.NoStore())
		{
			certs.GET("/results/certificate/:resultId", handlers.Result.Certificate)
			certs.POST("/certificate/generate", handlers.Result.GenerateCertificate)
		}
	}

	// ─── 3. WebSocket Group (token query auth) ─────────────────────────
	ws := router.Group("/ws")
	ws.Use(requireAuth, middleware.RequireRole(model.RoleStudent))
	{
		ws.GET("/exams/:id/integrity", handlers.Integrity.Stream)
	}

	return router
}
