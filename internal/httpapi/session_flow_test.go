// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package httpapi_test

import (
	"encoding/json"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/admindeck/admindeck/internal/auth"
)

var _ = Describe("Session lifecycle", func() {
	var api *testAPI

	BeforeEach(func() {
		var err error
		api, err = newTestAPI()
		Expect(err).NotTo(HaveOccurred())
	})

	login := func(email, password string) (int, *http.Cookie) {
		rec := api.do(http.MethodPost, "/api/v1/sessions",
			`{"email":"`+email+`","password":"`+password+`"}`, "")
		return rec.Code, sessionCookie(rec)
	}

	currentUser := func(token string) (int, auth.User) {
		rec := api.do(http.MethodGet, "/api/v1/user", "", token)
		var user auth.User
		if rec.Code == http.StatusOK {
			Expect(json.Unmarshal(rec.Body.Bytes(), &user)).To(Succeed())
		}
		return rec.Code, user
	}

	Context("with a registered administrator", func() {
		BeforeEach(func() {
			rec := api.do(http.MethodPost, "/api/v1/users",
				`{"username":"root","email":"root@example.com","password":"s3cret-pass"}`, "")
			Expect(rec.Code).To(Equal(http.StatusCreated))
		})

		It("logs in, reads the current user and logs out", func() {
			code, cookie := login("root@example.com", "s3cret-pass")
			Expect(code).To(Equal(http.StatusCreated))
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.Value).To(HaveLen(2 * auth.SessionTokenBytes))

			code, user := currentUser(cookie.Value)
			Expect(code).To(Equal(http.StatusOK))
			Expect(user.Username).To(Equal("root"))
			Expect(user.IsAdmin()).To(BeTrue())

			rec := api.do(http.MethodDelete, "/api/v1/sessions", "", cookie.Value)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(sessionCookie(rec).MaxAge).To(Equal(-1))

			code, _ = currentUser(cookie.Value)
			Expect(code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts the email in any case", func() {
			code, _ := login("ROOT@example.com", "s3cret-pass")
			Expect(code).To(Equal(http.StatusCreated))
		})

		It("keeps an active session alive by sliding its expiry", func() {
			_, cookie := login("root@example.com", "s3cret-pass")

			for range 3 {
				api.clock.Advance(20 * 24 * time.Hour)
				code, _ := currentUser(cookie.Value)
				Expect(code).To(Equal(http.StatusOK))
			}
		})

		It("slides the expiry on member routes too", func() {
			_, cookie := login("root@example.com", "s3cret-pass")

			api.clock.Advance(20 * 24 * time.Hour)
			rec := api.do(http.MethodGet, "/api/v1/users", "", cookie.Value)
			Expect(rec.Code).To(Equal(http.StatusOK))
			renewed := sessionCookie(rec)
			Expect(renewed).NotTo(BeNil())
			Expect(renewed.Value).To(Equal(cookie.Value))
			Expect(renewed.MaxAge).To(Equal(int(auth.DefaultSessionLifetime / time.Second)))

			api.clock.Advance(15 * 24 * time.Hour)
			rec = api.do(http.MethodGet, "/api/v1/users/root", "", cookie.Value)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("lets an idle session lapse", func() {
			_, cookie := login("root@example.com", "s3cret-pass")

			api.clock.Advance(auth.DefaultSessionLifetime + time.Second)
			code, _ := currentUser(cookie.Value)
			Expect(code).To(Equal(http.StatusUnauthorized))
		})

		It("gives independent sessions per login", func() {
			_, first := login("root@example.com", "s3cret-pass")
			_, second := login("root@example.com", "s3cret-pass")
			Expect(first.Value).NotTo(Equal(second.Value))

			rec := api.do(http.MethodDelete, "/api/v1/sessions", "", first.Value)
			Expect(rec.Code).To(Equal(http.StatusOK))

			code, _ := currentUser(second.Value)
			Expect(code).To(Equal(http.StatusOK))
		})

		It("registers later accounts as members", func() {
			rec := api.do(http.MethodPost, "/api/v1/users",
				`{"username":"guest","email":"guest@example.com","password":"guest-pass"}`, "")
			Expect(rec.Code).To(Equal(http.StatusCreated))

			_, cookie := login("guest@example.com", "guest-pass")
			_, user := currentUser(cookie.Value)
			Expect(user.Role).To(Equal(auth.RoleMember))
		})
	})

	It("refuses to log out without a session", func() {
		rec := api.do(http.MethodDelete, "/api/v1/sessions", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	DescribeTable("rejects credentials without revealing which part failed",
		func(email, password string) {
			rec := api.do(http.MethodPost, "/api/v1/users",
				`{"username":"root","email":"root@example.com","password":"s3cret-pass"}`, "")
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = api.do(http.MethodPost, "/api/v1/sessions",
				`{"email":"`+email+`","password":"`+password+`"}`, "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(MatchJSON(`{
				"name": "UnauthorizedError",
				"message": "` + auth.CredentialsMismatchMessage + `",
				"action": "` + auth.CredentialsMismatchAction + `",
				"status_code": 401
			}`))
		},
		Entry("wrong password", "root@example.com", "nope"),
		Entry("unknown email", "ghost@example.com", "s3cret-pass"),
	)
})
