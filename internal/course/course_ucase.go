package course

import (
	"context"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"go.elastic.co/apm"
)

// CourseUseCaseImpl ...
type CourseUseCaseImpl struct {
	CourseRepository CourseRepository
	Validator        validate.Validator
}

var _ CourseUseCase = &CourseUseCaseImpl{}

// NewCourseUseCase ...
func NewCourseUseCase(CourseRepository CourseRepository, Validator validate.Validator) *CourseUseCaseImpl {
	return &CourseUseCaseImpl{
		CourseRepository: CourseRepository,
		Validator:        Validator,
	}
}

// GetCourses fetch the course catalog
func (cu *CourseUseCaseImpl) GetCourses(ctx context.Context) ([]*CourseModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourses", "resolver")
	defer apmSpan.End()

	return cu.CourseRepository.GetCourses(ctx)
}

// GetCourseByID fetch one course
func (cu *CourseUseCaseImpl) GetCourseByID(ctx context.Context, id string) (*CourseModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourseByID", "resolver")
	defer apmSpan.End()

	return cu.CourseRepository.GetCourseByID(ctx, id)
}

// CreateCourse validate and create a course
func (cu *CourseUseCaseImpl) CreateCourse(ctx context.Context, data *CourseData) (*CourseModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.CreateCourse", "resolver")
	defer apmSpan.End()

	if fields := cu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid course payload", Fields: fields}
	}
	return cu.CourseRepository.CreateCourse(ctx, data)
}

// UpdateCourse validate and replace a course
func (cu *CourseUseCaseImpl) UpdateCourse(ctx context.Context, id string, data *CourseData) (*CourseModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.UpdateCourse", "resolver")
	defer apmSpan.End()

	if fields := cu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid course payload", Fields: fields}
	}
	return cu.CourseRepository.UpdateCourse(ctx, id, data)
}

// DeleteCourse remove a course
func (cu *CourseUseCaseImpl) DeleteCourse(ctx context.Context, id string) error {
	apmSpan, ctx := apm.StartSpan(ctx, "CourseUseCaseImpl.DeleteCourse", "resolver")
	defer apmSpan.End()

	return cu.CourseRepository.DeleteCourse(ctx, id)
}
