// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/admindeck/admindeck/internal/apperr"
	"github.com/admindeck/admindeck/pkg/errutil"
)

// Errors produced by the router itself rather than the services.
const (
	methodNotAllowedName    = "MethodNotAllowedError"
	methodNotAllowedMessage = "Method not allowed for this endpoint."
	methodNotAllowedAction  = "Check that the HTTP method is valid for this endpoint."
	invalidBodyMessage      = "The request body is not valid JSON."
	invalidBodyAction       = "Send a JSON object with the documented fields."
)

// invalidBody converts a bind failure into a Validation error.
func invalidBody(err error) error {
	return apperr.Validation(invalidBodyMessage, invalidBodyAction).WithCause(err)
}

// errorResponse maps any handler error to a status and response body.
// The bool is true when the error should be logged as a server fault.
func errorResponse(err error) (apperr.Body, bool) {
	if appErr, ok := apperr.As(err); ok {
		return appErr.Body(), appErr.Kind == apperr.KindService
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return apperr.NotFound("", "").Body(), false
		case http.StatusMethodNotAllowed:
			return apperr.Body{
				Name:       methodNotAllowedName,
				Message:    methodNotAllowedMessage,
				Action:     methodNotAllowedAction,
				StatusCode: http.StatusMethodNotAllowed,
			}, false
		case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
			return apperr.Validation(invalidBodyMessage, invalidBodyAction).Body(), false
		}
	}

	return apperr.From(err).Body(), true
}

// errorHandler writes every error in the taxonomy's JSON shape. Unauthorized
// responses also clear a stale session cookie.
func errorHandler(logger *slog.Logger, cookies CookieConfig) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body, fault := errorResponse(err)
		if fault {
			errutil.LogErrorContext(c.Request().Context(), logger, "request failed", err)
		}

		if body.StatusCode == http.StatusUnauthorized && cookies.token(c) != "" {
			c.SetCookie(cookies.clearedCookie())
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(body.StatusCode)
		} else {
			writeErr = c.JSON(body.StatusCode, body)
		}
		if writeErr != nil {
			logger.WarnContext(c.Request().Context(), "failed to write error response", "error", writeErr)
		}
	}
}
