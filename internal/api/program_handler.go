package api

import (
	"alcyxob/fitness-programs/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler serves /programs and program assignment.
type ProgramHandler struct {
	programService    service.ProgramService
	assignmentService service.AssignmentService
}

func NewProgramHandler(programService service.ProgramService, assignmentService service.AssignmentService) *ProgramHandler {
	return &ProgramHandler{
		programService:    programService,
		assignmentService: assignmentService,
	}
}

type CreateProgramRequest struct {
	ProgramName string `json:"programName" binding:"required"`
}

type UpdateProgramRequest struct {
	ProgramName *string `json:"programName"`
}

type AssignProgramRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// CreateProgram godoc
// @Summary Create a program owned by the calling trainer
// @Tags Programs
// @Accept json
// @Produce json
// @Param program body CreateProgramRequest true "Program details"
// @Success 201 {object} gin.H "message, program"
// @Failure 400 {object} gin.H "Validation error"
// @Failure 403 {object} gin.H "Access denied"
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var req CreateProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), caller, req.ProgramName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Program created", "program": MapProgramToResponse(program)})
}

// ListPrograms godoc
// @Summary List the calling trainer's programs
// @Tags Programs
// @Produce json
// @Success 200 {object} gin.H "programs"
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programs, err := h.programService.ListPrograms(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programs": MapProgramsToResponse(programs)})
}

func (h *ProgramHandler) GetProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	program, err := h.programService.GetProgram(c.Request.Context(), caller, programID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"program": MapProgramToResponse(program)})
}

func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	var req UpdateProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	program, err := h.programService.UpdateProgram(c.Request.Context(), caller, programID,
		service.ProgramPatch{ProgramName: req.ProgramName})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Program updated", "program": MapProgramToResponse(program)})
}

// DeleteProgram removes the program and everything under it.
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	if err := h.programService.DeleteProgram(c.Request.Context(), caller, programID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Program deleted"})
}

// AssignProgram godoc
// @Summary Assign a program to a trainee
// @Tags Programs
// @Accept json
// @Produce json
// @Param programId path string true "Program ID"
// @Param body body AssignProgramRequest true "Trainee to assign"
// @Success 200 {object} gin.H "message, program"
// @Failure 404 {object} gin.H "Program not found / User not found"
// @Router /programs/{programId}/assign [post]
func (h *ProgramHandler) AssignProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	var req AssignProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithFieldErrors(c, []service.FieldError{{Field: "userId", Message: "userId must be a valid id"}})
		return
	}

	program, err := h.assignmentService.AssignProgram(c.Request.Context(), caller, programID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Program assigned", "program": MapProgramToResponse(program)})
}

func (h *ProgramHandler) UnassignProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId", "User")
	if !ok {
		return
	}

	program, err := h.assignmentService.UnassignProgram(c.Request.Context(), caller, programID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Program unassigned", "program": MapProgramToResponse(program)})
}
