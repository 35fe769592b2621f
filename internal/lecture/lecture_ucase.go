package lecture

import (
	"context"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"go.elastic.co/apm"
)

// LectureUseCaseImpl ...
type LectureUseCaseImpl struct {
	LectureRepository LectureRepository
	Validator         validate.Validator
}

var _ LectureUseCase = &LectureUseCaseImpl{}

// NewLectureUseCase ...
func NewLectureUseCase(LectureRepository LectureRepository, Validator validate.Validator) *LectureUseCaseImpl {
	return &LectureUseCaseImpl{
		LectureRepository: LectureRepository,
		Validator:         Validator,
	}
}

// GetLectures list all lectures
func (lu *LectureUseCaseImpl) GetLectures(ctx context.Context) ([]*LectureModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "LectureUseCaseImpl.GetLectures", "resolver")
	defer apmSpan.End()

	return lu.LectureRepository.GetLectures(ctx)
}

// GetLectureByID fetch one lecture
func (lu *LectureUseCaseImpl) GetLectureByID(ctx context.Context, id string) (*LectureModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "LectureUseCaseImpl.GetLectureByID", "resolver")
	defer apmSpan.End()

	return lu.LectureRepository.GetLectureByID(ctx, id)
}

// CreateLecture validate and create a lecture
func (lu *LectureUseCaseImpl) CreateLecture(ctx context.Context, data *LectureData) (*LectureModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "LectureUseCaseImpl.CreateLecture", "resolver")
	defer apmSpan.End()

	if fields := lu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid lecture payload", Fields: fields}
	}
	return lu.LectureRepository.CreateLecture(ctx, data)
}

// UpdateLecture validate and replace a lecture
func (lu *LectureUseCaseImpl) UpdateLecture(ctx context.Context, id string, data *LectureData) (*LectureModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "LectureUseCaseImpl.UpdateLecture", "resolver")
	defer apmSpan.End()

	if fields := lu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid lecture payload", Fields: fields}
	}
	return lu.LectureRepository.UpdateLecture(ctx, id, data)
}

// DeleteLecture remove a lecture
func (lu *LectureUseCaseImpl) DeleteLecture(ctx context.Context, id string) error {
	apmSpan, ctx := apm.StartSpan(ctx, "LectureUseCaseImpl.DeleteLecture", "resolver")
	defer apmSpan.End()

	return lu.LectureRepository.DeleteLecture(ctx, id)
}
