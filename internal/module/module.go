package module

import (
	"context"
	"time"

	"github.com/Mujahid2000/lms/internal/lecture"
)

// ModuleModel course module holding an ordered list of lectures.
// ModuleNumber is the position within the course, server assigned
type ModuleModel struct {
	ID           string                  `json:"id"`
	CourseID     string                  `json:"courseId"`
	Title        string                  `json:"title"`
	ModuleNumber int                     `json:"moduleNumber"`
	Description  string                  `json:"description"`
	Lectures     []*lecture.LectureModel `json:"lectures"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// ModuleData create/update payload
type ModuleData struct {
	CourseID    string `json:"courseId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ModuleRepository remote module operations
type ModuleRepository interface {
	GetModulesByCourse(ctx context.Context, courseID string) ([]*ModuleModel, error)
	CreateModule(ctx context.Context, data *ModuleData) (*ModuleModel, error)
	UpdateModule(ctx context.Context, id string, data *ModuleData) (*ModuleModel, error)
	DeleteModule(ctx context.Context, id string) error
}

// ModuleUseCase module operations exposed to the presentation layer
type ModuleUseCase interface {
	GetModulesByCourse(ctx context.Context, courseID string) ([]*ModuleModel, error)
	CreateModule(ctx context.Context, data *ModuleData) (*ModuleModel, error)
	UpdateModule(ctx context.Context, id string, data *ModuleData) (*ModuleModel, error)
	DeleteModule(ctx context.Context, id string) error
}
