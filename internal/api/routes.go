package api

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/service"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the router needs. Media may be nil, in which case
// the video routes are not mounted.
type Services struct {
	Auth         service.AuthService
	Programs     service.ProgramService
	TrainingDays service.TrainingDayService
	Exercises    service.ExerciseService
	Sets         service.SetService
	Assignments  service.AssignmentService
	Media        service.MediaService
}

// NewRouter builds a gin engine with the standard middleware stack and all
// routes mounted.
func NewRouter(svc Services, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(logger), MetricsMiddleware())
	SetupRoutes(router, svc)
	return router
}

func SetupRoutes(router *gin.Engine, svc Services) {
	useJSONFieldNames()

	authHandler := NewAuthHandler(svc.Auth)
	programHandler := NewProgramHandler(svc.Programs, svc.Assignments)
	trainingDayHandler := NewTrainingDayHandler(svc.TrainingDays)
	exerciseHandler := NewExerciseHandler(svc.Exercises, svc.Media)
	setHandler := NewSetHandler(svc.Sets)
	assignmentHandler := NewAssignmentHandler(svc.Assignments, svc.Media)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authMiddleware, authHandler.Logout)
	}

	protected := router.Group("")
	protected.Use(authMiddleware)
	protected.GET("/me", authHandler.Me)

	// --- Trainer routes: /programs and everything below ---
	programs := protected.Group("/programs")
	programs.Use(RoleMiddleware(domain.RoleTrainer))
	{
		programs.POST("", programHandler.CreateProgram)
		programs.GET("", programHandler.ListPrograms)
		programs.GET("/:programId", programHandler.GetProgram)
		programs.PUT("/:programId", programHandler.UpdateProgram)
		programs.DELETE("/:programId", programHandler.DeleteProgram)

		programs.POST("/:programId/assign", programHandler.AssignProgram)
		programs.DELETE("/:programId/assign/:userId", programHandler.UnassignProgram)

		days := programs.Group("/:programId/trainingDays")
		days.POST("", trainingDayHandler.CreateTrainingDay)
		days.GET("", trainingDayHandler.ListTrainingDays)
		days.GET("/:dayId", trainingDayHandler.GetTrainingDay)
		days.PUT("/:dayId", trainingDayHandler.UpdateTrainingDay)
		days.DELETE("/:dayId", trainingDayHandler.DeleteTrainingDay)

		exercises := days.Group("/:dayId/exercises")
		exercises.POST("", exerciseHandler.CreateExercise)
		exercises.GET("", exerciseHandler.ListExercises)
		exercises.GET("/:exerciseId", exerciseHandler.GetExercise)
		exercises.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
		exercises.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
		if svc.Media != nil {
			exercises.POST("/:exerciseId/video", exerciseHandler.RequestVideoUpload)
			exercises.GET("/:exerciseId/video", exerciseHandler.GetVideo)
		}

		sets := exercises.Group("/:exerciseId/sets")
		sets.POST("", setHandler.CreateSet)
		sets.GET("", setHandler.ListSets)
		sets.GET("/:setId", setHandler.GetSet)
		sets.PUT("/:setId", setHandler.UpdateSet)
		sets.DELETE("/:setId", setHandler.DeleteSet)
	}

	// --- Trainee routes: any authenticated role, gated by assignment ---
	users := protected.Group("/users/programs")
	{
		users.GET("", assignmentHandler.ListAssignedPrograms)
		users.GET("/:programId", assignmentHandler.GetAssignedProgram)
		if svc.Media != nil {
			users.GET("/:programId/exercises/:exerciseId/video", assignmentHandler.GetAssignedVideo)
		}
	}
}
