// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/internal/auth/authtest"
	"github.com/admindeck/admindeck/internal/httpapi"
	"github.com/admindeck/admindeck/internal/users"
	"github.com/admindeck/admindeck/internal/users/userstest"
)

const cookieName = "session_id"

var apiNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type observedRequest struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []observedRequest
}

func (r *recordingObserver) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, observedRequest{method: method, route: route, status: status})
}

func (r *recordingObserver) last() observedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return observedRequest{}
	}
	return r.requests[len(r.requests)-1]
}

// testAPI is a router wired to in-memory repositories.
type testAPI struct {
	echo     *echo.Echo
	sessions *authtest.MemorySessionRepository
	users    *userstest.MemoryRepository
	clock    *authtest.Clock
	observer *recordingObserver
}

func newTestAPI() (*testAPI, error) {
	logger := slog.New(slog.DiscardHandler)
	clock := authtest.NewClock(apiNow)
	userRepo := userstest.NewMemoryRepository()
	sessionRepo := authtest.NewMemorySessionRepository()

	policy, err := auth.NewPasswordPolicy(auth.PasswordConfig{Pepper: "api-pepper"})
	if err != nil {
		return nil, err
	}
	authenticator, err := auth.NewAuthenticator(userRepo, policy,
		auth.WithAuthenticatorLogger(logger),
		auth.WithAuthenticatorClock(clock.Now),
		auth.WithPasswordUpgrade(userRepo))
	if err != nil {
		return nil, err
	}
	store, err := auth.NewSessionStore(sessionRepo, auth.DefaultSessionConfig(),
		auth.WithSessionClock(clock.Now),
		auth.WithSessionLogger(logger))
	if err != nil {
		return nil, err
	}
	authSvc, err := auth.NewService(authenticator, store, policy)
	if err != nil {
		return nil, err
	}
	userSvc, err := users.NewService(userRepo, policy,
		users.WithClock(clock.Now),
		users.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	observer := &recordingObserver{}
	e, err := httpapi.NewRouter(httpapi.Deps{
		Auth:    authSvc,
		Users:   userSvc,
		Cookie:  httpapi.CookieConfig{Name: cookieName},
		Logger:  logger,
		Metrics: observer,
	})
	if err != nil {
		return nil, err
	}

	return &testAPI{
		echo:     e,
		sessions: sessionRepo,
		users:    userRepo,
		clock:    clock,
		observer: observer,
	}, nil
}

// do sends a request with an optional JSON body and session token.
func (a *testAPI) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the session cookie set by the response, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}
