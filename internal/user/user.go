package user

import (
	"context"
	"errors"

	"github.com/Mujahid2000/lms/internal/auth"
)

// ErrLoginRejected credential was not accepted by the remote service
var ErrLoginRejected = errors.New("email or password is incorrect")

// RegisterData sign-up payload
type RegisterData struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginData sign-in payload
type LoginData struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserRepository remote auth operations. Register and login hit public
// endpoints; logout revokes the active token
type UserRepository interface {
	Register(ctx context.Context, data *RegisterData) (*auth.UserProfile, error)
	Login(ctx context.Context, data *LoginData) (*auth.UserProfile, string, error)
	Logout(ctx context.Context) error
}

// UserUseCase session operations exposed to the presentation layer
type UserUseCase interface {
	Register(ctx context.Context, data *RegisterData) (*auth.UserProfile, error)
	Login(ctx context.Context, data *LoginData) (*auth.UserProfile, error)
	Logout(ctx context.Context) error
}
