package content_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalis-clinic/backoffice/internal/confirm"
	"github.com/vitalis-clinic/backoffice/internal/content"
)

var _ = Describe("Content Handler", func() {
	var (
		repo     *mockRepository
		confirms *confirm.Manager
		router   *chi.Mux
	)

	BeforeEach(func() {
		repo = newMockRepository()
		confirms = confirm.NewManager(confirm.DefaultTTL, slog.Default())
		service := content.NewService(content.Questions(), repo, nil, slog.Default())
		handler := content.NewHandler(service, confirms, nil)

		router = chi.NewRouter()
		router.Route("/questions", handler.Routes)
	})

	resolvedToken := func(approved bool) string {
		token := confirms.Request(confirm.Details{Title: "Удаление"})
		Expect(confirms.Resolve(token, approved)).To(Succeed())
		return token
	}

	Describe("List", func() {
		It("returns data with totals", func() {
			for i := 0; i < 15; i++ {
				repo.seed(question("q"))
			}

			req := httptest.NewRequest(http.MethodGet, "/questions?p=2", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp struct {
				Data       []json.RawMessage `json:"data"`
				TotalPages int               `json:"totalPages"`
				TotalCount int64             `json:"totalCount"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data).To(HaveLen(3))
			Expect(resp.TotalPages).To(Equal(2))
			Expect(resp.TotalCount).To(Equal(int64(15)))
		})
	})

	Describe("Create", func() {
		It("stores a valid record", func() {
			req := httptest.NewRequest(http.MethodPost, "/questions",
				strings.NewReader(`{"question":"Как записаться?","answer":"Позвоните."}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
		})

		It("rejects a record that fails validation", func() {
			req := httptest.NewRequest(http.MethodPost, "/questions",
				strings.NewReader(`{"answer":"no question"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("ignores a client-supplied ID", func() {
			req := httptest.NewRequest(http.MethodPost, "/questions",
				strings.NewReader(`{"id":999,"question":"Вопрос","answer":"Ответ"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created content.Question
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
			Expect(created.ID).NotTo(Equal(int64(999)))
		})
	})

	Describe("Delete", func() {
		var recordID int64

		BeforeEach(func() {
			q := question("q")
			repo.seed(q)
			recordID = q.ID
		})

		deleteReq := func(token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/questions/%d", recordID), nil)
			if token != "" {
				req.Header.Set(content.ConfirmTokenHeader, token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("requires a confirmation token", func() {
			rec := deleteReq("")
			Expect(rec.Code).To(Equal(http.StatusPreconditionRequired))
		})

		It("deletes with an approved confirmation", func() {
			rec := deleteReq(resolvedToken(true))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(repo.records).NotTo(HaveKey(recordID))
		})

		It("refuses with a rejected confirmation", func() {
			rec := deleteReq(resolvedToken(false))
			Expect(rec.Code).NotTo(Equal(http.StatusOK))
			Expect(repo.records).To(HaveKey(recordID))
		})

		It("refuses an unresolved token", func() {
			token := confirms.Request(confirm.Details{Title: "Удаление"})

			rec := deleteReq(token)
			Expect(rec.Code).NotTo(Equal(http.StatusOK))
			Expect(repo.records).To(HaveKey(recordID))
		})

		It("refuses a reused token", func() {
			token := resolvedToken(true)

			Expect(deleteReq(token).Code).To(Equal(http.StatusOK))

			q := question("again")
			repo.seed(q)
			recordID = q.ID

			rec := deleteReq(token)
			Expect(rec.Code).NotTo(Equal(http.StatusOK))
			Expect(repo.records).To(HaveKey(recordID))
		})
	})
})
