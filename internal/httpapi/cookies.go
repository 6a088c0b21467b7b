// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// sessionCookie returns the cookie carrying token for lifetime.
func (c CookieConfig) sessionCookie(token string, lifetime time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(lifetime / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// clearedCookie returns a cookie that deletes the session cookie.
func (c CookieConfig) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "invalid",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// token returns the session token sent by the client, or "".
func (c CookieConfig) token(ctx echo.Context) string {
	cookie, err := ctx.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
