package lmsd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

type authTestApp struct {
	app       *echo.Echo
	data      *Dataset
	blacklist driver.KeyValueDB
}

func newAuthTestApp() *authTestApp {
	ju := NewJWTUtil("HS256", "test-secret", time.Minute, time.Hour)
	data := NewDataset(uuid.NewNanoIDGenerator(12))
	blacklist := driver.NewMemoryStore()
	handler := NewAuthHandler(ju, data, blacklist, validate.NewValidator())

	app := echo.New()
	app.POST("/api/register", handler.HandleRegister)
	app.POST("/api/login", handler.HandleLogin)
	app.POST("/api/auth/refresh-token", handler.HandleRefresh)
	app.POST("/api/logout", handler.HandleLogout, VerifyToken(ju, blacklist))
	app.GET("/api/courses", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, VerifyToken(ju, blacklist))

	return &authTestApp{app: app, data: data, blacklist: blacklist}
}

func (ta *authTestApp) request(method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func (ta *authTestApp) register(t *testing.T) {
	t.Helper()
	rec := ta.request(http.MethodPost, "/api/register",
		`{"name":"Demo","email":"demo@lms.dev","password":"password123"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", rec.Code, rec.Body.String())
	}
}

func (ta *authTestApp) login(t *testing.T) (token string, refreshCookie *http.Cookie) {
	t.Helper()
	rec := ta.request(http.MethodPost, "/api/login",
		`{"email":"demo@lms.dev","password":"password123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID string `json:"_id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode login payload: %s", err)
	}
	if !payload.Success || payload.Token == "" || payload.User.ID == "" {
		t.Fatalf("unexpected login payload: %s", rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == RefreshCookieName {
			refreshCookie = cookie
		}
	}
	if refreshCookie == nil {
		t.Fatal("expected a refresh cookie on login")
	}
	return payload.Token, refreshCookie
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ta := newAuthTestApp()
	ta.register(t)

	rec := ta.request(http.MethodPost, "/api/login",
		`{"email":"demo@lms.dev","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ta := newAuthTestApp()
	ta.register(t)

	rec := ta.request(http.MethodPost, "/api/register",
		`{"name":"Other","email":"demo@lms.dev","password":"password123"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	ta := newAuthTestApp()
	ta.register(t)
	token, _ := ta.login(t)

	rec := ta.request(http.MethodGet, "/api/courses", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	// the client sends the raw token, no Bearer prefix
	rec = ta.request(http.MethodGet, "/api/courses", "", func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	ta := newAuthTestApp()
	ta.register(t)
	_, refreshCookie := ta.login(t)

	rec := ta.request(http.MethodPost, "/api/auth/refresh-token", "", func(req *http.Request) {
		req.AddCookie(refreshCookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed with %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			User        struct {
				ID string `json:"_id"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode refresh payload: %s", err)
	}
	if payload.Data.AccessToken == "" || payload.Data.User.ID == "" {
		t.Fatalf("unexpected refresh payload: %s", rec.Body.String())
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	ta := newAuthTestApp()
	rec := ta.request(http.MethodPost, "/api/auth/refresh-token", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutRevokesTokens(t *testing.T) {
	ta := newAuthTestApp()
	ta.register(t)
	token, refreshCookie := ta.login(t)

	rec := ta.request(http.MethodPost, "/api/logout", "", func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, token)
		req.AddCookie(refreshCookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed with %d: %s", rec.Code, rec.Body.String())
	}

	rec = ta.request(http.MethodGet, "/api/courses", "", func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked access token to be rejected, got %d", rec.Code)
	}

	rec = ta.request(http.MethodPost, "/api/auth/refresh-token", "", func(req *http.Request) {
		req.AddCookie(refreshCookie)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked refresh token to be rejected, got %d", rec.Code)
	}
}
