package content_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/content"
)

func TestContent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Content Suite")
}

// mockRepository is an in-memory RepositoryAPI with optional hooks for
// concurrency tests.
type mockRepository struct {
	mu      sync.Mutex
	records map[int64]*content.Question
	nextID  int64

	onCreate func()
	onDelete func()
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]*content.Question), nextID: 1}
}

func (m *mockRepository) seed(items ...*content.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		item.ID = m.nextID
		m.nextID++
		m.records[item.ID] = item
	}
}

func (m *mockRepository) List(_ context.Context, q content.PageQuery) ([]*content.Question, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}

	total := int64(len(ids))
	start := q.Offset()
	if start >= len(ids) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(ids) {
		end = len(ids)
	}

	var page []*content.Question
	for _, id := range ids[start:end] {
		page = append(page, m.records[id])
	}
	return page, total, nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*content.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return rec, nil
}

func (m *mockRepository) Create(_ context.Context, rec *content.Question) error {
	if m.onCreate != nil {
		m.onCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = rec
	return nil
}

func (m *mockRepository) Update(_ context.Context, rec *content.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.ID] = rec
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if m.onDelete != nil {
		m.onDelete()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

func question(text string) *content.Question {
	return &content.Question{Question: text, Answer: "answer"}
}

var _ = Describe("Content Service", func() {
	var (
		repo    *mockRepository
		service *content.Service[*content.Question]
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		service = content.NewService(content.Questions(), repo, nil, slog.Default())
	})

	Describe("List", func() {
		It("returns an empty page for an empty collection", func() {
			result, err := service.List(ctx, content.PageQuery{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Data).To(BeEmpty())
			Expect(result.TotalCount).To(BeZero())
			Expect(result.TotalPages).To(BeZero())
		})

		It("computes totals from the full collection", func() {
			for i := 0; i < 30; i++ {
				repo.seed(question("q"))
			}

			result, err := service.List(ctx, content.PageQuery{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Data).To(HaveLen(12))
			Expect(result.TotalCount).To(Equal(int64(30)))
			Expect(result.TotalPages).To(Equal(3))
		})

		It("clamps a page past the end to the last page", func() {
			for i := 0; i < 30; i++ {
				repo.seed(question("q"))
			}

			result, err := service.List(ctx, content.PageQuery{Page: 9})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Page).To(Equal(3))
			Expect(result.Data).To(HaveLen(6))
		})

		It("floors a non-positive page at 1", func() {
			repo.seed(question("q"))

			result, err := service.List(ctx, content.PageQuery{Page: -4})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Page).To(Equal(1))
			Expect(result.Data).To(HaveLen(1))
		})
	})

	Describe("Save", func() {
		It("creates a record with a fresh ID", func() {
			saved, err := service.Save(ctx, question("Как записаться?"))
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.RecordID()).To(BeNumerically(">", 0))
		})

		It("rejects an invalid record", func() {
			_, err := service.Save(ctx, &content.Question{})

			var appErr *internal.AppError
			Expect(err).To(BeAssignableToTypeOf(appErr))
			Expect(err.(*internal.AppError).Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("updates an existing record", func() {
			q := question("original")
			repo.seed(q)

			updated := question("changed")
			updated.ID = q.ID

			saved, err := service.Save(ctx, updated)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Question).To(Equal("changed"))
		})

		It("fails an update for a missing record", func() {
			missing := question("nope")
			missing.ID = 404

			_, err := service.Save(ctx, missing)
			Expect(err).To(MatchError(internal.ErrRecordNotFound))
		})

		It("rejects a duplicate create while the first is in flight", func() {
			started := make(chan struct{})
			release := make(chan struct{})
			repo.onCreate = func() {
				close(started)
				<-release
			}

			errCh := make(chan error, 1)
			go func() {
				_, err := service.Save(ctx, question("first"))
				errCh <- err
			}()

			<-started
			repo.onCreate = nil
			_, err := service.Save(ctx, question("second"))
			Expect(err).To(MatchError(internal.ErrOperationInFlight))

			close(release)
			Expect(<-errCh).NotTo(HaveOccurred())

			// the guard is released once the first save lands
			_, err = service.Save(ctx, question("third"))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Remove", func() {
		It("deletes an existing record", func() {
			q := question("q")
			repo.seed(q)

			Expect(service.Remove(ctx, q.ID)).To(Succeed())

			_, err := repo.GetByID(ctx, q.ID)
			Expect(err).To(MatchError(internal.ErrRecordNotFound))
		})

		It("fails for a missing record", func() {
			Expect(service.Remove(ctx, 404)).To(MatchError(internal.ErrRecordNotFound))
		})

		It("rejects a duplicate remove while the first is in flight", func() {
			q := question("q")
			repo.seed(q)

			started := make(chan struct{})
			release := make(chan struct{})
			repo.onDelete = func() {
				close(started)
				<-release
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- service.Remove(ctx, q.ID)
			}()

			<-started
			Expect(service.Remove(ctx, q.ID)).To(MatchError(internal.ErrOperationInFlight))

			close(release)
			Expect(<-errCh).NotTo(HaveOccurred())
		})
	})
})
