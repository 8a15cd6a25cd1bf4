package api

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/service"
	"time"
)

// --- Response DTOs ---

type SetResponse struct {
	ID     string  `json:"id"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type ExerciseResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Sets     []SetResponse `json:"sets"`
	HasVideo bool          `json:"hasVideo"`
}

type TrainingDayResponse struct {
	ID        string             `json:"id"`
	DayNumber int                `json:"dayNumber"`
	Exercises []ExerciseResponse `json:"exercises"`
}

type ProgramResponse struct {
	ID            string                `json:"id"`
	TrainerID     string                `json:"trainerId"`
	ProgramName   string                `json:"programName"`
	TrainingDays  []TrainingDayResponse `json:"trainingDays"`
	AssignedUsers []string              `json:"assignedUsers"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// AssignedProgramResponse is what a trainee sees: the tree, without the
// other assignees.
type AssignedProgramResponse struct {
	ID           string                `json:"id"`
	TrainerID    string                `json:"trainerId"`
	ProgramName  string                `json:"programName"`
	TrainingDays []TrainingDayResponse `json:"trainingDays"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type AssignedProgramsResponse struct {
	Programs      []AssignedProgramResponse `json:"programs"`
	Page          int                       `json:"page"`
	Limit         int                       `json:"limit"`
	TotalPages    int                       `json:"totalPages"`
	TotalPrograms int64                     `json:"totalPrograms"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// --- Mappers ---
// Lists are never nil so clients always see [] rather than null.

func MapSetToResponse(s *domain.Set) SetResponse {
	return SetResponse{ID: s.ID.Hex(), Reps: s.Reps, Weight: s.Weight}
}

func MapSetsToResponse(sets []domain.Set) []SetResponse {
	out := make([]SetResponse, len(sets))
	for i := range sets {
		out[i] = MapSetToResponse(&sets[i])
	}
	return out
}

func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:       e.ID.Hex(),
		Name:     e.Name,
		Sets:     MapSetsToResponse(e.Sets),
		HasVideo: e.VideoKey != "",
	}
}

func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	out := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		out[i] = MapExerciseToResponse(&exercises[i])
	}
	return out
}

func MapTrainingDayToResponse(d *domain.TrainingDay) TrainingDayResponse {
	return TrainingDayResponse{
		ID:        d.ID.Hex(),
		DayNumber: d.DayNumber,
		Exercises: MapExercisesToResponse(d.Exercises),
	}
}

func MapTrainingDaysToResponse(days []domain.TrainingDay) []TrainingDayResponse {
	out := make([]TrainingDayResponse, len(days))
	for i := range days {
		out[i] = MapTrainingDayToResponse(&days[i])
	}
	return out
}

func MapProgramToResponse(p *domain.Program) ProgramResponse {
	assigned := make([]string, len(p.AssignedUsers))
	for i, id := range p.AssignedUsers {
		assigned[i] = id.Hex()
	}
	return ProgramResponse{
		ID:            p.ID.Hex(),
		TrainerID:     p.TrainerID.Hex(),
		ProgramName:   p.ProgramName,
		TrainingDays:  MapTrainingDaysToResponse(p.TrainingDays),
		AssignedUsers: assigned,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func MapProgramsToResponse(programs []domain.Program) []ProgramResponse {
	out := make([]ProgramResponse, len(programs))
	for i := range programs {
		out[i] = MapProgramToResponse(&programs[i])
	}
	return out
}

func MapAssignedProgramToResponse(p *domain.Program) AssignedProgramResponse {
	return AssignedProgramResponse{
		ID:           p.ID.Hex(),
		TrainerID:    p.TrainerID.Hex(),
		ProgramName:  p.ProgramName,
		TrainingDays: MapTrainingDaysToResponse(p.TrainingDays),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func MapAssignedPageToResponse(page *service.AssignedPage) AssignedProgramsResponse {
	programs := make([]AssignedProgramResponse, len(page.Programs))
	for i := range page.Programs {
		programs[i] = MapAssignedProgramToResponse(&page.Programs[i])
	}
	return AssignedProgramsResponse{
		Programs:      programs,
		Page:          page.Page,
		Limit:         page.Limit,
		TotalPages:    page.TotalPages,
		TotalPrograms: page.TotalPrograms,
	}
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
