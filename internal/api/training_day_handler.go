package api

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TrainingDayHandler struct {
	trainingDayService service.TrainingDayService
}

func NewTrainingDayHandler(trainingDayService service.TrainingDayService) *TrainingDayHandler {
	return &TrainingDayHandler{trainingDayService: trainingDayService}
}

type CreateTrainingDayRequest struct {
	DayNumber *int `json:"dayNumber" binding:"required"`
}

type UpdateTrainingDayRequest struct {
	DayNumber *int `json:"dayNumber"`
}

func (h *TrainingDayHandler) CreateTrainingDay(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	var req CreateTrainingDayRequest
	if !bindJSON(c, &req) {
		return
	}

	day, err := h.trainingDayService.CreateTrainingDay(c.Request.Context(), caller, programID, *req.DayNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Training day created", "trainingDay": MapTrainingDayToResponse(day)})
}

func (h *TrainingDayHandler) ListTrainingDays(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	days, err := h.trainingDayService.ListTrainingDays(c.Request.Context(), caller, programID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainingDays": MapTrainingDaysToResponse(days)})
}

func (h *TrainingDayHandler) GetTrainingDay(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, ok := dayPath(c)
	if !ok {
		return
	}
	day, err := h.trainingDayService.GetTrainingDay(c.Request.Context(), caller, programID, dayID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainingDay": MapTrainingDayToResponse(day)})
}

func (h *TrainingDayHandler) UpdateTrainingDay(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, ok := dayPath(c)
	if !ok {
		return
	}
	var req UpdateTrainingDayRequest
	if !bindJSON(c, &req) {
		return
	}

	day, err := h.trainingDayService.UpdateTrainingDay(c.Request.Context(), caller, programID, dayID,
		domain.TrainingDayPatch{DayNumber: req.DayNumber})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Training day updated", "trainingDay": MapTrainingDayToResponse(day)})
}

// DeleteTrainingDay removes the day with its exercises and sets.
func (h *TrainingDayHandler) DeleteTrainingDay(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, ok := dayPath(c)
	if !ok {
		return
	}
	if err := h.trainingDayService.DeleteTrainingDay(c.Request.Context(), caller, programID, dayID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Training day deleted"})
}
