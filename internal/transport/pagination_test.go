package transport_test

import (
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalis-clinic/backoffice/internal/transport"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

var _ = Describe("Pagination", func() {
	Describe("ParsePage", func() {
		It("defaults to 1 when the parameter is absent", func() {
			req := httptest.NewRequest("GET", "/questions", nil)
			Expect(transport.ParsePage(req)).To(Equal(1))
		})

		It("reads a positive page number", func() {
			req := httptest.NewRequest("GET", "/questions?p=7", nil)
			Expect(transport.ParsePage(req)).To(Equal(7))
		})

		It("falls back to 1 for garbage", func() {
			req := httptest.NewRequest("GET", "/questions?p=abc", nil)
			Expect(transport.ParsePage(req)).To(Equal(1))
		})

		It("falls back to 1 for non-positive values", func() {
			req := httptest.NewRequest("GET", "/questions?p=0", nil)
			Expect(transport.ParsePage(req)).To(Equal(1))

			req = httptest.NewRequest("GET", "/questions?p=-3", nil)
			Expect(transport.ParsePage(req)).To(Equal(1))
		})
	})

	Describe("PageURL", func() {
		It("omits the page parameter for page 1", func() {
			Expect(transport.PageURL("/questions", 1, "")).To(Equal("/questions"))
		})

		It("carries the page parameter for later pages", func() {
			Expect(transport.PageURL("/questions", 3, "")).To(Equal("/questions?p=3"))
		})

		It("keeps the search query alongside the page", func() {
			Expect(transport.PageURL("/questions", 2, "flu")).To(Equal("/questions?p=2&search=flu"))
		})

		It("keeps the search query on page 1", func() {
			Expect(transport.PageURL("/questions", 1, "flu")).To(Equal("/questions?search=flu"))
		})
	})
})
