package api

import (
	"alcyxob/fitness-programs/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func abortWithFieldErrors(c *gin.Context, fields []service.FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": fields})
}

// respondError maps a service error onto its HTTP status. Only unexpected
// errors are logged.
func respondError(c *gin.Context, err error) {
	var (
		verr     *service.ValidationError
		notFound *service.NotFoundError
		dup      *service.DuplicateKeyError
	)
	switch {
	case errors.As(err, &verr):
		abortWithFieldErrors(c, verr.Fields)
	case errors.Is(err, service.ErrUnauthenticated):
		abortWithError(c, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, "Access denied")
	case errors.As(err, &notFound):
		abortWithError(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &dup):
		abortWithError(c, http.StatusConflict, dup.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		abortWithError(c, http.StatusBadRequest, "Invalid email or password")
	case errors.Is(err, service.ErrMediaUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, "Video storage is not configured")
	default:
		requestLogger(c).ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Server error",
			"details": err.Error(),
		})
	}
}

// --- Request binding ---

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json name, so
// binding errors line up with the request body.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON binds the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	abortWithFieldErrors(c, bindingFieldErrors(err))
	return false
}

func bindingFieldErrors(err error) []service.FieldError {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs):
		out := make([]service.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, service.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		return out
	case errors.As(err, &typeErr):
		return []service.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind())),
		}}
	}
	return []service.FieldError{{Field: "body", Message: "Request body must be valid JSON"}}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please include a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Float64, reflect.Float32:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "list"
	}
	return "string"
}

// --- Path parameters ---

// pathID parses an ObjectID path parameter. A malformed id cannot name an
// existing entity, so it answers 404 for that entity.
func pathID(c *gin.Context, param, entity string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusNotFound, entity+" not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

func dayPath(c *gin.Context) (programID, dayID primitive.ObjectID, ok bool) {
	if programID, ok = pathID(c, "programId", "Program"); !ok {
		return
	}
	dayID, ok = pathID(c, "dayId", "Training day")
	return
}

func exercisePath(c *gin.Context) (programID, dayID, exerciseID primitive.ObjectID, ok bool) {
	if programID, dayID, ok = dayPath(c); !ok {
		return
	}
	exerciseID, ok = pathID(c, "exerciseId", "Exercise")
	return
}

func setPath(c *gin.Context) (programID, dayID, exerciseID, setID primitive.ObjectID, ok bool) {
	if programID, dayID, exerciseID, ok = exercisePath(c); !ok {
		return
	}
	setID, ok = pathID(c, "setId", "Set")
	return
}
