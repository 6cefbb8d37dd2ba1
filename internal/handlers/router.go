package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
)

type HandlerManager struct {
	authService services.AuthService

	authHandler      *AuthHandler
	quizHandler      *QuizHandler
	attemptHandler   *AttemptHandler
	analyticsHandler *AnalyticsHandler
}

func NewHandlerManager(
	authService services.AuthService,
	quizService services.QuizService,
	attemptService services.AttemptService,
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authService:      authService,
		authHandler:      NewAuthHandler(authService, logger),
		quizHandler:      NewQuizHandler(quizService, exportService, logger),
		attemptHandler:   NewAttemptHandler(attemptService, logger),
		analyticsHandler: NewAnalyticsHandler(analyticsService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(RequestIDMiddleware())

	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
	}

	// Everything else requires a valid token
	authed := v1.Group("")
	authed.Use(AuthMiddleware(hm.authService))
	{
		authed.GET("/auth/profile", hm.authHandler.Profile)

		quizzes := authed.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.POST("/:id/verify-access", hm.quizHandler.VerifyAccess)

			admin := quizzes.Group("")
			admin.Use(RequireAdmin())
			{
				admin.POST("", hm.quizHandler.CreateQuiz)
				admin.PUT("/:id", hm.quizHandler.UpdateQuiz)
				admin.DELETE("/:id", hm.quizHandler.DeleteQuiz)
				admin.POST("/:id/questions", hm.quizHandler.AddQuestion)
				admin.PUT("/:id/questions/:question_id", hm.quizHandler.UpdateQuestion)
				admin.DELETE("/:id/questions/:question_id", hm.quizHandler.DeleteQuestion)
				admin.GET("/:id/stats", hm.quizHandler.GetQuizStats)
				admin.GET("/:id/export", hm.quizHandler.ExportResults)
			}
		}

		attempts := authed.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("/mine", hm.attemptHandler.ListMyAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/answer", hm.attemptHandler.RecordAnswer)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)

			attempts.GET("", RequireAdmin(), hm.attemptHandler.ListAttempts)
		}

		analytics := authed.Group("/analytics")
		analytics.Use(RequireAdmin())
		{
			analytics.GET("/overview", hm.analyticsHandler.Overview)
		}
	}
}
