package user

import (
	"context"
	"net/http"

	"github.com/Mujahid2000/lms/internal/auth"
	"github.com/Mujahid2000/lms/internal/transport/rest"
)

type loginResponse struct {
	Success bool              `json:"success"`
	Token   string            `json:"token"`
	User    *auth.UserProfile `json:"user"`
}

// RESTUserRepository UserRepository against the remote API
type RESTUserRepository struct {
	Pipeline *rest.Pipeline
}

var _ UserRepository = &RESTUserRepository{}

// NewUserRepository create a RESTUserRepository
func NewUserRepository(pipeline *rest.Pipeline) *RESTUserRepository {
	return &RESTUserRepository{Pipeline: pipeline}
}

// Register create an account
func (ur *RESTUserRepository) Register(ctx context.Context, data *RegisterData) (*auth.UserProfile, error) {
	body, err := rest.EncodeJSON(data)
	if err != nil {
		return nil, err
	}
	res, err := ur.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPost,
		Path:        "/register",
		Body:        body,
		ContentType: rest.JSONContentType,
	})
	if err != nil {
		return nil, err
	}
	var profile auth.UserProfile
	if err := rest.DecodeJSON(res.Body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login exchange a credential for an opaque session token
func (ur *RESTUserRepository) Login(ctx context.Context, data *LoginData) (*auth.UserProfile, string, error) {
	body, err := rest.EncodeJSON(data)
	if err != nil {
		return nil, "", err
	}
	res, err := ur.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPost,
		Path:        "/login",
		Body:        body,
		ContentType: rest.JSONContentType,
	})
	if err != nil {
		return nil, "", err
	}
	var payload loginResponse
	if err := rest.DecodeJSON(res.Body, &payload); err != nil {
		return nil, "", err
	}
	if !payload.Success || payload.Token == "" {
		return nil, "", ErrLoginRejected
	}
	return payload.User, payload.Token, nil
}

// Logout revoke the active token server side
func (ur *RESTUserRepository) Logout(ctx context.Context) error {
	_, err := ur.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodPost, Path: "/logout"})
	return err
}
