package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"errors"
	"fmt"
	"strings"
)

// --- Error Definitions ---
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrConflict           = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("validation failed")
)

// NotFoundError names the entity that did not resolve. It matches ErrNotFound.
type NotFoundError struct {
	Entity string // "Program", "Training day", ...
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateKeyError reports a sibling-uniqueness violation. It matches
// ErrDuplicateKey.
type DuplicateKeyError struct {
	Entity string
	Field  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// FieldError is one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every offending field. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil lets validators build up errors and return a plain nil when clean.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// treeError maps the aggregate's lookup and uniqueness errors into the
// service taxonomy. Anything else passes through unchanged.
func treeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrTrainingDayNotFound):
		return &NotFoundError{Entity: "Training day"}
	case errors.Is(err, domain.ErrExerciseNotFound):
		return &NotFoundError{Entity: "Exercise"}
	case errors.Is(err, domain.ErrSetNotFound):
		return &NotFoundError{Entity: "Set"}
	case errors.Is(err, domain.ErrDuplicateDayNumber):
		return &DuplicateKeyError{Entity: "Training day", Field: "dayNumber"}
	case errors.Is(err, domain.ErrDuplicateExerciseName):
		return &DuplicateKeyError{Entity: "Exercise", Field: "name"}
	}
	return err
}
