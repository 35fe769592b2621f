package lmsd

import (
	"net/http"

	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type registerForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler account and session endpoints
type AuthHandler struct {
	JWTUtil   *JWTUtil
	Data      *Dataset
	Blacklist driver.KeyValueDB
	Validator validate.Validator
}

// NewAuthHandler create an auth controller instance
func NewAuthHandler(JWTUtil *JWTUtil, Data *Dataset, Blacklist driver.KeyValueDB, Validator validate.Validator) *AuthHandler {
	return &AuthHandler{
		JWTUtil:   JWTUtil,
		Data:      Data,
		Blacklist: Blacklist,
		Validator: Validator,
	}
}

// HandleRegister ...
func (ah *AuthHandler) HandleRegister(c echo.Context) error {
	post := new(registerForm)
	if err := c.Bind(post); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind user entity"))
	}
	if fields := ah.Validator.Struct(post); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(post.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	user, err := ah.Data.CreateUser(post.Name, post.Email, "user", string(hash))
	if err != nil {
		if err == ErrDuplicatedUser {
			return c.JSON(http.StatusConflict, NewRESTStandardError(http.StatusConflict, err.Error()))
		}
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": user})
}

// HandleLogin ...
func (ah *AuthHandler) HandleLogin(c echo.Context) error {
	post := new(loginForm)
	if err := c.Bind(post); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind user entity"))
	}
	if fields := ah.Validator.Struct(post); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}

	user, err := ah.Data.FindUserByEmail(post.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, "No such user or password is incorrect"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(post.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, "No such user or password is incorrect"))
	}

	access, err := ah.JWTUtil.GenerateAccessToken(user)
	if err != nil {
		return err
	}
	refresh, err := ah.JWTUtil.GenerateRefreshToken(user)
	if err != nil {
		return err
	}
	ah.JWTUtil.SetRefreshCookie(c, refresh)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": access, "user": user})
}

// HandleRefresh silent refresh driven by the refresh cookie
func (ah *AuthHandler) HandleRefresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, "Missing refresh token"))
	}
	if revoked, err := ah.Blacklist.Exists(cookie.Value); err == nil && revoked {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, "Refresh token revoked"))
	}
	claims, err := ah.JWTUtil.Validate(cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, "Invalid refresh token"))
	}
	user, err := ah.Data.FindUserByID(claims.UID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, "Unknown account"))
	}

	access, err := ah.JWTUtil.GenerateAccessToken(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": echo.Map{"accessToken": access, "user": user},
	})
}

// HandleLogout revoke the active tokens
func (ah *AuthHandler) HandleLogout(c echo.Context) error {
	if tokenStr := ah.JWTUtil.ExtractToken(c); tokenStr != "" {
		if claims, err := ah.JWTUtil.Validate(tokenStr); err == nil {
			ah.Blacklist.SetEX(tokenStr, "", claims.TimeRemaining())
		}
	}
	if cookie, err := c.Cookie(RefreshCookieName); err == nil && cookie.Value != "" {
		if claims, err := ah.JWTUtil.Validate(cookie.Value); err == nil {
			ah.Blacklist.SetEX(cookie.Value, "", claims.TimeRemaining())
		}
	}
	ah.JWTUtil.ClearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// VerifyToken reject requests without a valid, non revoked access token
func VerifyToken(ju *JWTUtil, blacklist driver.KeyValueDB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := ju.ExtractToken(c)
			if tokenStr == "" {
				return c.JSON(http.StatusUnauthorized,
					NewRESTStandardError(http.StatusUnauthorized, "Missing token"))
			}
			if revoked, err := blacklist.Exists(tokenStr); err == nil && revoked {
				return c.JSON(http.StatusUnauthorized,
					NewRESTStandardError(http.StatusUnauthorized, "Token revoked"))
			}
			claims, err := ju.Validate(tokenStr)
			if err != nil {
				return c.JSON(http.StatusUnauthorized,
					NewRESTStandardError(http.StatusUnauthorized, "Invalid token"))
			}
			c.Set("claims", claims)
			return next(c)
		}
	}
}
