// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/internal/users"
)

// noStore disables caching of per-user responses.
const noStore = "no-store, no-cache, max-age=0, must-revalidate"

type handlers struct {
	auth    *auth.Service
	users   *users.Service
	cookies CookieConfig
	logger  *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// createSession logs a user in and sets the session cookie.
func (h *handlers) createSession(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	user, session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookies.sessionCookie(session.Token, h.auth.SessionLifetime()))
	h.logger.InfoContext(c.Request().Context(), "session created",
		"user_id", user.ID.String(),
		"session_id", session.ID.String())
	return c.JSON(http.StatusCreated, session)
}

// deleteSession expires the caller's session and clears the cookie.
func (h *handlers) deleteSession(c echo.Context) error {
	expired, err := h.auth.Logout(c.Request().Context(), h.cookies.token(c))
	if err != nil {
		return err
	}

	c.SetCookie(h.cookies.clearedCookie())
	return c.JSON(http.StatusOK, expired)
}

// currentUser renews the caller's session and returns their user.
func (h *handlers) currentUser(c echo.Context) error {
	ctx := c.Request().Context()
	session, err := h.auth.CurrentSession(ctx, h.cookies.token(c))
	if err != nil {
		return err
	}
	c.SetCookie(h.cookies.sessionCookie(session.Token, h.auth.SessionLifetime()))

	user, err := h.users.FindByID(ctx, session.UserID)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderCacheControl, noStore)
	return c.JSON(http.StatusOK, user)
}

// createUser registers a new account.
func (h *handlers) createUser(c echo.Context) error {
	var in users.CreateInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(err)
	}

	user, err := h.users.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *handlers) listUsers(c echo.Context) error {
	list, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*auth.User{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *handlers) getUser(c echo.Context) error {
	user, err := h.users.FindByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// updateUser applies a partial update to the named user.
func (h *handlers) updateUser(c echo.Context) error {
	var in users.UpdateInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(err)
	}

	user, err := h.users.Update(c.Request().Context(), c.Param("username"), in)
	if err != nil {
		return err
	}

	h.logger.InfoContext(c.Request().Context(), "user updated",
		"user_id", user.ID.String(),
		"by_user_id", sessionFrom(c).UserID.String())
	return c.JSON(http.StatusOK, user)
}
