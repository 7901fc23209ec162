package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Status picks the HTTP status and body for an error returned by a handler.
func Status(err error) (int, any) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Fields
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		return statusForKind(aerr.Kind), echo.Map{"detail": aerr.Detail}
	}
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return statusForKind(err), echo.Map{"detail": err.Error()}
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr.Code, echo.Map{"detail": herr.Message}
	}

	return http.StatusInternalServerError, echo.Map{
		"error":  "Internal server error",
		"detail": err.Error(),
	}
}

func statusForKind(kind error) int {
	switch {
	case errors.Is(kind, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(kind, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// HTTPErrorHandler replaces echo's default so every failure uses the same body shapes.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := Status(err)
		if status >= http.StatusInternalServerError {
			logger.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}
