package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/testmate/testmate-backend/internal/config"
	"github.com/testmate/testmate-backend/internal/handler"
	"github.com/testmate/testmate-backend/internal/middleware"
	"github.com/testmate/testmate-backend/internal/response"
	"github.com/testmate/testmate-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Subject  *handler.SubjectHandler
	Question *handler.QuestionHandler
	Quiz     *handler.QuizHandler
	Attempt  *handler.AttemptHandler
}

// Deps carries the services and stores the middleware chain needs.
type Deps struct {
	Auth     *service.AuthService
	Accounts *service.AccountService
	Users    middleware.UserLoader
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Deps, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	authn := middleware.Authenticate(deps.Auth, deps.Users)

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Auth group: public account lifecycle, rate limited.
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/verify-email", handlers.Auth.VerifyEmail)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
		auth.PATCH("/reset-password", middleware.RequireResetToken(deps.Accounts), handlers.Auth.ResetPassword)

		auth.POST("/logout", authn, handlers.Auth.Logout)
		auth.GET("/me", authn, handlers.Auth.Me)
	}

	// Teacher group: subject, question bank and quiz management.
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(authn, middleware.RequireTeacher())
	{
		teacherAPI.POST("/subjects", handlers.Subject.Create)
		teacherAPI.GET("/subjects", handlers.Subject.ListMine)

		teacherAPI.POST("/questions", handlers.Question.Create)
		teacherAPI.POST("/questions/list", handlers.Question.List)
		teacherAPI.PATCH("/questions/answer", handlers.Question.SetAnswer)
		teacherAPI.DELETE("/questions/:id", handlers.Question.Delete)

		teacherAPI.POST("/quizzes", handlers.Quiz.Create)
		teacherAPI.GET("/quizzes", handlers.Quiz.ListMine)
		teacherAPI.PATCH("/quizzes/:id/questions", handlers.Quiz.AddQuestions)
		teacherAPI.DELETE("/quizzes/:id/questions/:questionId", handlers.Quiz.RemoveQuestion)
		teacherAPI.DELETE("/quizzes/:id", handlers.Quiz.Delete)
		teacherAPI.GET("/quizzes/:id/results", handlers.Quiz.Results)
	}

	// Student group: discovery and attempts.
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(authn, middleware.RequireStudent())
	{
		studentAPI.GET("/subjects", handlers.Subject.ListForStream)
		studentAPI.GET("/quizzes", handlers.Quiz.ListForStudent)
		studentAPI.POST("/quizzes/:id/attempt", handlers.Attempt.Open)
		studentAPI.POST("/quizzes/:id/submit", handlers.Attempt.Submit)
	}

	return router
}
