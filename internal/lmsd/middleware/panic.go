package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PanicHandlingOption options for panic handling
type PanicHandlingOption struct {
	Handler func(c echo.Context, err error)
	Logger  *zap.Logger
}

// PanicHandling recover panics raised in handlers
func PanicHandling(options ...*PanicHandlingOption) echo.MiddlewareFunc {
	custom := &PanicHandlingOption{
		Handler: func(c echo.Context, err error) {
			c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"code":  http.StatusInternalServerError,
				"title": err.Error(),
			})
		},
	}
	if len(options) > 0 {
		option := options[0]
		if option.Handler != nil {
			custom.Handler = option.Handler
		}
		if option.Logger != nil {
			custom.Logger = option.Logger
		}
	}
	handler := custom.Handler
	logger := custom.Logger
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if any := recover(); any != nil {
					err, ok := any.(error)
					if !ok {
						err = fmt.Errorf("%v", any)
					}
					if logger != nil {
						logger.Error(err.Error(),
							zap.String("url.path", c.Request().RequestURI),
							zap.String("http.request.method", c.Request().Method),
							zap.Int64("http.request.body.bytes", c.Request().ContentLength),
							zap.Int("http.response.status_code", http.StatusInternalServerError),
						)
					}
					handler(c, err)
				}
			}()
			return next(c)
		}
	}
}
