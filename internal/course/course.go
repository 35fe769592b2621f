package course

import (
	"context"
	"time"

	"github.com/Mujahid2000/lms/internal/transport/rest"
)

// CourseModel catalog entry, server owned
type CourseModel struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CourseData create/update payload, sent as multipart form data
type CourseData struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Thumbnail   *rest.FormFile
}

// CourseRepository remote course operations
type CourseRepository interface {
	GetCourses(ctx context.Context) ([]*CourseModel, error)
	GetCourseByID(ctx context.Context, id string) (*CourseModel, error)
	CreateCourse(ctx context.Context, data *CourseData) (*CourseModel, error)
	UpdateCourse(ctx context.Context, id string, data *CourseData) (*CourseModel, error)
	DeleteCourse(ctx context.Context, id string) error
}

// CourseUseCase course operations exposed to the presentation layer
type CourseUseCase interface {
	GetCourses(ctx context.Context) ([]*CourseModel, error)
	GetCourseByID(ctx context.Context, id string) (*CourseModel, error)
	CreateCourse(ctx context.Context, data *CourseData) (*CourseModel, error)
	UpdateCourse(ctx context.Context, id string, data *CourseData) (*CourseModel, error)
	DeleteCourse(ctx context.Context, id string) error
}
