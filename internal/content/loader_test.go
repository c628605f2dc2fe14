package content_test

import (
	"context"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalis-clinic/backoffice/internal/content"
)

var _ = Describe("List Loader", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	fetchPage := func(q content.PageQuery) *content.PagedResult[*content.Question] {
		return &content.PagedResult[*content.Question]{
			Data:       []*content.Question{{ID: 1, Question: q.Search}},
			TotalPages: 5,
			TotalCount: 60,
			Page:       q.Page,
		}
	}

	It("loads the current page and query", func() {
		var got content.PageQuery
		loader := content.NewLoader(func(_ context.Context, q content.PageQuery) (*content.PagedResult[*content.Question], error) {
			got = q
			return fetchPage(q), nil
		})

		loader.SetQuery("грипп")
		loader.SetPage(3)

		result, err := loader.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Page).To(Equal(3))
		Expect(got.Search).To(Equal("грипп"))
		Expect(loader.Result()).To(Equal(result))
	})

	It("resets to page 1 when the query changes", func() {
		loader := content.NewLoader(func(_ context.Context, q content.PageQuery) (*content.PagedResult[*content.Question], error) {
			return fetchPage(q), nil
		})

		loader.SetPage(4)
		loader.SetQuery("анализы")

		page, query, _ := loader.State()
		Expect(page).To(Equal(1))
		Expect(query).To(Equal("анализы"))
	})

	It("keeps the page when the query is set to the same value", func() {
		loader := content.NewLoader(func(_ context.Context, q content.PageQuery) (*content.PagedResult[*content.Question], error) {
			return fetchPage(q), nil
		})

		loader.SetQuery("анализы")
		loader.SetPage(4)
		loader.SetQuery("анализы")

		page, _, _ := loader.State()
		Expect(page).To(Equal(4))
	})

	It("discards the response of a superseded load", func() {
		calls := make(chan content.PageQuery, 2)
		release := make(chan struct{})
		var callCount int32

		loader := content.NewLoader(func(_ context.Context, q content.PageQuery) (*content.PagedResult[*content.Question], error) {
			calls <- q
			if atomic.AddInt32(&callCount, 1) == 1 {
				<-release
			}
			return fetchPage(q), nil
		})

		firstErr := make(chan error, 1)
		go func() {
			_, err := loader.Load(ctx)
			firstErr <- err
		}()
		Eventually(calls).Should(Receive())

		// a second load supersedes the first while it is still in flight
		loader.SetPage(2)
		result, err := loader.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Page).To(Equal(2))

		close(release)
		Expect(<-firstErr).To(MatchError(content.ErrStaleLoad))

		// the applied result is the one from the latest load
		Expect(loader.Result().Page).To(Equal(2))
	})

	It("follows a page clamp from the service", func() {
		loader := content.NewLoader(func(_ context.Context, q content.PageQuery) (*content.PagedResult[*content.Question], error) {
			result := fetchPage(q)
			if q.Page > 5 {
				result.Page = 5
			}
			return result, nil
		})

		loader.SetPage(40)
		result, err := loader.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Page).To(Equal(5))

		page, _, _ := loader.State()
		Expect(page).To(Equal(5))
	})

	It("reports loading only while a fetch is in flight", func() {
		entered := make(chan struct{})
		release := make(chan struct{})

		loader := content.NewLoader(func(_ context.Context, q content.PageQuery) (*content.PagedResult[*content.Question], error) {
			close(entered)
			<-release
			return fetchPage(q), nil
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = loader.Load(ctx)
		}()

		<-entered
		_, _, loading := loader.State()
		Expect(loading).To(BeTrue())

		close(release)
		<-done
		_, _, loading = loader.State()
		Expect(loading).To(BeFalse())
	})
})
