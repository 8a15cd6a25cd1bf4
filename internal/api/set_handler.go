package api

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SetHandler struct {
	setService service.SetService
}

func NewSetHandler(setService service.SetService) *SetHandler {
	return &SetHandler{setService: setService}
}

type CreateSetRequest struct {
	Reps   *int     `json:"reps" binding:"required"`
	Weight *float64 `json:"weight" binding:"required"`
}

// UpdateSetRequest is partial: omitted fields keep their value.
type UpdateSetRequest struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
}

func (h *SetHandler) CreateSet(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	var req CreateSetRequest
	if !bindJSON(c, &req) {
		return
	}

	set, err := h.setService.CreateSet(c.Request.Context(), caller, programID, dayID, exerciseID, *req.Reps, *req.Weight)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Set created", "set": MapSetToResponse(set)})
}

func (h *SetHandler) ListSets(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, ok := exercisePath(c)
	if !ok {
		return
	}
	sets, err := h.setService.ListSets(c.Request.Context(), caller, programID, dayID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sets": MapSetsToResponse(sets)})
}

func (h *SetHandler) GetSet(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, setID, ok := setPath(c)
	if !ok {
		return
	}
	set, err := h.setService.GetSet(c.Request.Context(), caller, programID, dayID, exerciseID, setID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"set": MapSetToResponse(set)})
}

func (h *SetHandler) UpdateSet(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, setID, ok := setPath(c)
	if !ok {
		return
	}
	var req UpdateSetRequest
	if !bindJSON(c, &req) {
		return
	}

	set, err := h.setService.UpdateSet(c.Request.Context(), caller, programID, dayID, exerciseID, setID,
		domain.SetPatch{Reps: req.Reps, Weight: req.Weight})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Set updated", "set": MapSetToResponse(set)})
}

func (h *SetHandler) DeleteSet(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, dayID, exerciseID, setID, ok := setPath(c)
	if !ok {
		return
	}
	if err := h.setService.DeleteSet(c.Request.Context(), caller, programID, dayID, exerciseID, setID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Set deleted"})
}
