package lmsd

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
)

// RefreshCookieName cookie carrying the refresh token
const RefreshCookieName = "lms_refresh"

// AppTokenClaims .
type AppTokenClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`

	jwt.StandardClaims
}

// TimeRemaining remaining time before the token get expired
func (tk *AppTokenClaims) TimeRemaining() time.Duration {
	exp := time.Unix(tk.ExpiresAt, 0)
	now := time.Now()

	if exp.Before(now) {
		return 0
	}
	return exp.Sub(now)
}

// JWTUtil .
type JWTUtil struct {
	secret         []byte
	method         jwt.SigningMethod
	sessionTimeout time.Duration
	refreshTimeout time.Duration
}

// NewJWTUtil create a JWTUtil instance
func NewJWTUtil(method, secret string, sessionTimeout, refreshTimeout time.Duration) *JWTUtil {
	var signMethod jwt.SigningMethod
	switch method {
	case "HS256":
		signMethod = jwt.SigningMethodHS256
	case "HS512":
		signMethod = jwt.SigningMethodHS512
	default:
		signMethod = jwt.SigningMethodHS256
	}
	return &JWTUtil{
		method:         signMethod,
		secret:         []byte(secret),
		sessionTimeout: sessionTimeout,
		refreshTimeout: refreshTimeout,
	}
}

// Sign sign token
func (ju *JWTUtil) Sign(claims *AppTokenClaims) (string, error) {
	token := jwt.NewWithClaims(ju.method, claims)
	return token.SignedString(ju.secret)
}

// Validate validate token string with secret and return AppTokenClaims
func (ju *JWTUtil) Validate(tokenStr string) (*AppTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AppTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return ju.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return token.Claims.(*AppTokenClaims), nil
}

// GenerateAccessToken issue a short lived access token for user
func (ju *JWTUtil) GenerateAccessToken(user *UserRecord) (string, error) {
	return ju.generate(user, ju.sessionTimeout)
}

// GenerateRefreshToken issue a refresh token for user
func (ju *JWTUtil) GenerateRefreshToken(user *UserRecord) (string, error) {
	return ju.generate(user, ju.refreshTimeout)
}

func (ju *JWTUtil) generate(user *UserRecord, timeout time.Duration) (string, error) {
	expires := time.Now().Add(timeout).Unix()
	return ju.Sign(&AppTokenClaims{
		UID:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expires,
		},
	})
}

// SetRefreshCookie set the refresh token in client cookie
func (ju *JWTUtil) SetRefreshCookie(c echo.Context, tokenStr string) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    tokenStr,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ju.refreshTimeout),
	})
}

// ClearRefreshCookie clear client refresh cookie
func (ju *JWTUtil) ClearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now(),
	})
}

// ExtractToken get the access token string from the request
func (ju *JWTUtil) ExtractToken(c echo.Context) string {
	return c.Request().Header.Get(echo.HeaderAuthorization)
}
