package module

import (
	"context"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"go.elastic.co/apm"
)

// ModuleUseCaseImpl ...
type ModuleUseCaseImpl struct {
	ModuleRepository ModuleRepository
	Validator        validate.Validator
}

var _ ModuleUseCase = &ModuleUseCaseImpl{}

// NewModuleUseCase ...
func NewModuleUseCase(ModuleRepository ModuleRepository, Validator validate.Validator) *ModuleUseCaseImpl {
	return &ModuleUseCaseImpl{
		ModuleRepository: ModuleRepository,
		Validator:        Validator,
	}
}

// GetModulesByCourse fetch the module tree of a course
func (mu *ModuleUseCaseImpl) GetModulesByCourse(ctx context.Context, courseID string) ([]*ModuleModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "ModuleUseCaseImpl.GetModulesByCourse", "resolver")
	defer apmSpan.End()

	return mu.ModuleRepository.GetModulesByCourse(ctx, courseID)
}

// CreateModule validate and create a module
func (mu *ModuleUseCaseImpl) CreateModule(ctx context.Context, data *ModuleData) (*ModuleModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "ModuleUseCaseImpl.CreateModule", "resolver")
	defer apmSpan.End()

	if fields := mu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid module payload", Fields: fields}
	}
	return mu.ModuleRepository.CreateModule(ctx, data)
}

// UpdateModule validate and update a module
func (mu *ModuleUseCaseImpl) UpdateModule(ctx context.Context, id string, data *ModuleData) (*ModuleModel, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "ModuleUseCaseImpl.UpdateModule", "resolver")
	defer apmSpan.End()

	if fields := mu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid module payload", Fields: fields}
	}
	return mu.ModuleRepository.UpdateModule(ctx, id, data)
}

// DeleteModule remove a module
func (mu *ModuleUseCaseImpl) DeleteModule(ctx context.Context, id string) error {
	apmSpan, ctx := apm.StartSpan(ctx, "ModuleUseCaseImpl.DeleteModule", "resolver")
	defer apmSpan.End()

	return mu.ModuleRepository.DeleteModule(ctx, id)
}
