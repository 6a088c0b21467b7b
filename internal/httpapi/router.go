// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/internal/users"
)

// RequestObserver records completed requests.
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveHTTPRequest(string, string, int, time.Duration) {}

// Deps are the services and settings the router needs.
type Deps struct {
	Auth    *auth.Service
	Users   *users.Service
	Cookie  CookieConfig
	Logger  *slog.Logger
	Metrics RequestObserver
}

// NewRouter builds the echo instance serving /api/v1.
func NewRouter(d Deps) (*echo.Echo, error) {
	if d.Auth == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if d.Users == nil {
		return nil, oops.Errorf("user service is required")
	}
	if d.Cookie.Name == "" {
		return nil, oops.Errorf("session cookie name is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = noopObserver{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Logger, d.Cookie)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestContext())
	e.Use(accessLog(d.Logger, d.Metrics))

	h := &handlers{
		auth:    d.Auth,
		users:   d.Users,
		cookies: d.Cookie,
		logger:  d.Logger,
	}

	v1 := e.Group("/api/v1")
	v1.POST("/sessions", h.createSession)
	v1.DELETE("/sessions", h.deleteSession)
	v1.GET("/user", h.currentUser)
	v1.POST("/users", h.createUser)

	members := v1.Group("/users", requireSession(d.Auth, d.Cookie))
	members.GET("", h.listUsers)
	members.GET("/:username", h.getUser)
	members.PATCH("/:username", h.updateUser)

	return e, nil
}
