package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

// ErrorHandler maps service errors to HTTP responses and falls back to
// echo's default handler for everything else. 401 responses always carry a
// bearer challenge and internal causes are only logged.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			if appErr.Kind == apperrors.KindInternal {
				c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
			}
			err = echo.NewHTTPError(appErr.Status(), appErr.Message)
		}

		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
