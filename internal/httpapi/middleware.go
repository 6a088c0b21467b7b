// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/internal/logging"
)

const sessionContextKey = "admindeck.session"

// requestContext copies the request ID into the request context for logging.
func requestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
			}
			return next(c)
		}
	}
}

// accessLog logs each request and records it in metrics. Errors are handed
// to the error handler first so the logged status is the one sent.
func accessLog(logger *slog.Logger, metrics RequestObserver) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTPRequest(v.Method, route, v.Status, v.Latency)

			level := slog.LevelInfo
			if v.Status >= 500 {
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.String("route", route),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

// requireSession rejects requests without a valid session, renews the
// session and its cookie, and stores the session on the context.
func requireSession(svc *auth.Service, cookies CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := svc.CurrentSession(c.Request().Context(), cookies.token(c))
			if err != nil {
				return err
			}
			c.SetCookie(cookies.sessionCookie(session.Token, svc.SessionLifetime()))
			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// sessionFrom returns the session stored by requireSession.
func sessionFrom(c echo.Context) *auth.Session {
	session, _ := c.Get(sessionContextKey).(*auth.Session)
	return session
}
