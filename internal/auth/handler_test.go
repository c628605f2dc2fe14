package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/session"
)

var _ = Describe("Auth Handler", func() {
	const gatePassword = "clinic-secret"

	var (
		handler  *auth.Handler
		sessions *session.Manager
		tokens   *auth.JWTTokenGenerator
		repo     *mockUserRepo
	)

	BeforeEach(func() {
		gateHash, err := bcrypt.GenerateFromPassword([]byte(gatePassword), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo = &mockUserRepo{userID: "u-1", role: string(auth.RoleChiefDoctor)}
		sessions = session.NewManager(session.NewMemoryStore(), session.DefaultDuration, slog.Default())
		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service := auth.NewService(repo, tokens, sessions, string(gateHash), slog.Default())
		handler = auth.NewHandler(service, sessions)
	})

	sessionCookie := func(rec *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range rec.Result().Cookies() {
			if c.Name == "bo_session" {
				return c
			}
		}
		return nil
	}

	Describe("Verify", func() {
		It("issues a session cookie and verifies the session", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/verify",
				strings.NewReader(`{"password":"clinic-secret"}`))
			rec := httptest.NewRecorder()

			handler.Verify(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			cookie := sessionCookie(rec)
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.HttpOnly).To(BeTrue())
			Expect(sessions.Load(context.Background(), cookie.Value)).To(Equal(session.StatusValid))
		})

		It("rejects a wrong password with 401", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/verify",
				strings.NewReader(`{"password":"wrong"}`))
			rec := httptest.NewRecorder()

			handler.Verify(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a malformed body with 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/verify",
				strings.NewReader(`{`))
			rec := httptest.NewRecorder()

			handler.Verify(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Check", func() {
		It("degrades to no role without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/check", nil)
			rec := httptest.NewRecorder()

			handler.Check(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp auth.CheckResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Role).To(BeNil())
			Expect(resp.IsAdmin).To(BeFalse())
		})

		It("returns the resolved role for a valid token", func() {
			token, err := tokens.GenerateAccessToken("u-1", "chief@vitalis.clinic")
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/check", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.Check(rec, req)

			var resp auth.CheckResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Role).NotTo(BeNil())
			Expect(*resp.Role).To(Equal("CHIEF_DOCTOR"))
			Expect(resp.IsAdmin).To(BeTrue())
		})
	})

	Describe("SessionMiddleware", func() {
		next := func(reached *bool) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				*reached = true
				Expect(internal.SessionIDFromContext(r.Context())).NotTo(BeEmpty())
				w.WriteHeader(http.StatusOK)
			})
		}

		It("rejects a request without a session cookie", func() {
			var reached bool
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
			rec := httptest.NewRecorder()

			handler.SessionMiddleware(next(&reached)).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(reached).To(BeFalse())
		})

		It("rejects an unverified session", func() {
			var reached bool
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
			req.AddCookie(&http.Cookie{Name: "bo_session", Value: "never-verified"})
			rec := httptest.NewRecorder()

			handler.SessionMiddleware(next(&reached)).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(reached).To(BeFalse())
		})

		It("passes a verified session through", func() {
			Expect(sessions.Verify(context.Background(), "s1")).To(Succeed())

			var reached bool
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
			req.AddCookie(&http.Cookie{Name: "bo_session", Value: "s1"})
			rec := httptest.NewRecorder()

			handler.SessionMiddleware(next(&reached)).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(reached).To(BeTrue())
		})
	})

	Describe("Logout", func() {
		It("clears the session and expires the cookie", func() {
			Expect(sessions.Verify(context.Background(), "s1")).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
			req.AddCookie(&http.Cookie{Name: "bo_session", Value: "s1"})
			rec := httptest.NewRecorder()

			handler.Logout(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(sessions.Load(context.Background(), "s1")).To(Equal(session.StatusInvalid))

			cookie := sessionCookie(rec)
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.MaxAge).To(BeNumerically("<", 0))
		})
	})

	Describe("RoleContextMiddleware", func() {
		It("stores the resolved role in the context", func() {
			token, err := tokens.GenerateAccessToken("u-1", "chief@vitalis.clinic")
			Expect(err).NotTo(HaveOccurred())

			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = internal.RoleFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			handler.RoleContextMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

			Expect(got).To(Equal("CHIEF_DOCTOR"))
		})

		It("never rejects a request without a token", func() {
			var reached bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				Expect(internal.RoleFromContext(r.Context())).To(BeEmpty())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
			handler.RoleContextMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

			Expect(reached).To(BeTrue())
		})
	})
})
