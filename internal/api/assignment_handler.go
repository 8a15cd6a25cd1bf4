package api

import (
	"alcyxob/fitness-programs/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// AssignmentHandler serves the trainee side: programs assigned to the caller.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
	mediaService      service.MediaService // nil when video storage is disabled
}

func NewAssignmentHandler(assignmentService service.AssignmentService, mediaService service.MediaService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		mediaService:      mediaService,
	}
}

// ListAssignedPrograms godoc
// @Summary List programs assigned to the caller
// @Tags Users
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} AssignedProgramsResponse
// @Failure 400 {object} gin.H "Invalid page or limit"
// @Router /users/programs [get]
func (h *AssignmentHandler) ListAssignedPrograms(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var fields []service.FieldError
	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		fields = append(fields, service.FieldError{Field: "page", Message: "Page must be a positive integer"})
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		fields = append(fields, service.FieldError{Field: "limit", Message: "Limit must be a positive integer"})
	}
	if len(fields) > 0 {
		abortWithFieldErrors(c, fields)
		return
	}

	result, err := h.assignmentService.ListAssignedPrograms(c.Request.Context(), caller, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAssignedPageToResponse(result))
}

func (h *AssignmentHandler) GetAssignedProgram(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	program, err := h.assignmentService.GetAssignedProgram(c.Request.Context(), caller, programID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"program": MapAssignedProgramToResponse(program)})
}

// GetAssignedVideo returns a presigned download URL for an exercise video in
// a program assigned to the caller.
func (h *AssignmentHandler) GetAssignedVideo(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "programId", "Program")
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId", "Exercise")
	if !ok {
		return
	}
	download, err := h.mediaService.AssignedVideoURL(c.Request.Context(), caller, programID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, download)
}

// queryInt reads an optional integer query parameter. Range checks are left
// to the service.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	return strconv.Atoi(raw)
}
