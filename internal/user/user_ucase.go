package user

import (
	"context"

	"github.com/Mujahid2000/lms/internal/auth"
	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/Mujahid2000/lms/internal/query"
	"go.elastic.co/apm"
)

// UserUseCaseImpl session use case. Login success feeds the credential
// store; logout clears it and drops every cached query result since all
// progress data is per user
type UserUseCaseImpl struct {
	UserRepository UserRepository
	Credentials    *auth.CredentialStore
	Cache          *query.Cache
	Validator      validate.Validator
}

var _ UserUseCase = &UserUseCaseImpl{}

// NewUserUseCase ...
func NewUserUseCase(
	UserRepository UserRepository,
	Credentials *auth.CredentialStore,
	Cache *query.Cache,
	Validator validate.Validator,
) *UserUseCaseImpl {
	return &UserUseCaseImpl{
		UserRepository: UserRepository,
		Credentials:    Credentials,
		Cache:          Cache,
		Validator:      Validator,
	}
}

// Register create an account
func (uu *UserUseCaseImpl) Register(ctx context.Context, data *RegisterData) (*auth.UserProfile, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "UserUseCaseImpl.Register", "resolver")
	defer apmSpan.End()

	if fields := uu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid registration payload", Fields: fields}
	}
	return uu.UserRepository.Register(ctx, data)
}

// Login authenticate and persist the new session
func (uu *UserUseCaseImpl) Login(ctx context.Context, data *LoginData) (*auth.UserProfile, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "UserUseCaseImpl.Login", "resolver")
	defer apmSpan.End()

	if fields := uu.Validator.Struct(data); fields != nil {
		return nil, &infra.ValidationError{Detail: "invalid login payload", Fields: fields}
	}
	profile, token, err := uu.UserRepository.Login(ctx, data)
	if err != nil {
		return nil, err
	}
	uu.Credentials.SetCredential(profile, token)
	uu.Cache.Invalidate(query.TagAuth)
	return profile, nil
}

// Logout end the session. The server side revocation is best effort,
// the local credential is cleared regardless
func (uu *UserUseCaseImpl) Logout(ctx context.Context) error {
	apmSpan, ctx := apm.StartSpan(ctx, "UserUseCaseImpl.Logout", "resolver")
	defer apmSpan.End()

	err := uu.UserRepository.Logout(ctx)
	uu.Credentials.Clear()
	uu.Cache.Invalidate(query.TagAuth, query.TagCourses, query.TagModule, query.TagLecture)
	return err
}
