package api

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	mediaService    service.MediaService // nil when video storage is disabled
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, mediaService service.MediaService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		mediaService:    mediaService,
	}
}

// --- Request Structs ---

type CreateExerciseRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateExerciseRequest struct {
	Name *string `json:"name"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to a training day
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} gin.H "message, exercise"
// @Failure 400 {object} gin.H "Validation error"
// @Failure 404 {object} gin.H "Program or training day not found"
// @Failure 409 {object} gin.H "Exercise with this name already exists"
// @Router /programs/{programId}/trainingDays/{dayId}/exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, ok := dayPath(c)
	if !ok {
		return
	}
	var req CreateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), caller, programID, dayID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Exercise created", "exercise": MapExerciseToResponse(exercise)})
}

func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, ok := dayPath(c)
	if !ok {
		return
	}
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), caller, programID, dayID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": MapExercisesToResponse(exercises)})
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), caller, programID, dayID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercise": MapExerciseToResponse(exercise)})
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), caller, programID, dayID, exerciseID,
		domain.ExercisePatch{Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exercise updated", "exercise": MapExerciseToResponse(exercise)})
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), caller, programID, dayID, exerciseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exercise deleted"})
}

// RequestVideoUpload godoc
// @Summary Get a presigned URL for uploading an exercise demo video
// @Tags Exercises
// @Accept json
// @Produce json
// @Param body body VideoUploadRequest true "Video content type, e.g. video/mp4"
// @Success 200 {object} service.VideoUpload
// @Failure 400 {object} gin.H "Validation error"
// @Router /programs/{programId}/trainingDays/{dayId}/exercises/{exerciseId}/video [post]
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	var req VideoUploadRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := h.mediaService.RequestVideoUpload(c.Request.Context(), caller, programID, dayID, exerciseID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// GetVideo returns a presigned download URL for the owner trainer.
func (h *ExerciseHandler) GetVideo(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	download, err := h.mediaService.VideoURL(c.Request.Context(), caller, programID, dayID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, download)
}
