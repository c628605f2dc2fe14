package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/core/events"
)

// RepositoryAPI is the storage contract of one managed collection.
type RepositoryAPI[T Record] interface {
	List(ctx context.Context, q PageQuery) ([]T, int64, error)
	GetByID(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id int64) error
}

// EventPublisher is the slice of the event bus the service uses.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service implements list/save/remove for one collection. Duplicate
// submissions of the same logical operation are rejected while the first
// call is still in flight.
type Service[T Record] struct {
	collection Collection[T]
	repo       RepositoryAPI[T]
	bus        EventPublisher
	logger     *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService[T Record](collection Collection[T], repo RepositoryAPI[T], bus EventPublisher, logger *slog.Logger) *Service[T] {
	return &Service[T]{
		collection: collection,
		repo:       repo,
		bus:        bus,
		logger:     logger,
		inflight:   make(map[string]struct{}),
	}
}

// Name returns the collection's URL segment.
func (s *Service[T]) Name() string {
	return s.collection.Name
}

// NewRecord allocates an empty record of the collection's type.
func (s *Service[T]) NewRecord() T {
	return s.collection.New()
}

// List fetches one page. A page past the end of the collection is clamped
// to the last page rather than returning an empty result.
func (s *Service[T]) List(ctx context.Context, q PageQuery) (*PagedResult[T], error) {
	q = q.Normalize()

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list records", "collection", s.collection.Name, "error", err)
		return nil, err
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))

	if len(items) == 0 && total > 0 && q.Page > totalPages {
		q.Page = totalPages
		items, total, err = s.repo.List(ctx, q)
		if err != nil {
			s.logger.Error("failed to list records on clamped page", "collection", s.collection.Name, "error", err)
			return nil, err
		}
	}

	if items == nil {
		items = []T{}
	}

	return &PagedResult[T]{
		Data:       items,
		TotalPages: totalPages,
		TotalCount: total,
		Page:       q.Page,
	}, nil
}

// GetByID fetches a single record.
func (s *Service[T]) GetByID(ctx context.Context, id int64) (T, error) {
	return s.repo.GetByID(ctx, id)
}

// Save creates or updates a record, keyed by its ID. A second save for the
// same record while one is in flight is rejected.
func (s *Service[T]) Save(ctx context.Context, rec T) (T, error) {
	var zero T

	if err := rec.Validate(); err != nil {
		return zero, err
	}

	key := s.opKey("save", rec.RecordID())
	if !s.begin(key) {
		s.logger.Warn("duplicate save rejected", "collection", s.collection.Name, "record_id", rec.RecordID())
		return zero, internal.ErrOperationInFlight
	}
	defer s.end(key)

	created := rec.RecordID() == 0
	if created {
		if err := s.repo.Create(ctx, rec); err != nil {
			s.logger.Error("failed to create record", "collection", s.collection.Name, "error", err)
			return zero, err
		}
	} else {
		if _, err := s.repo.GetByID(ctx, rec.RecordID()); err != nil {
			return zero, err
		}
		if err := s.repo.Update(ctx, rec); err != nil {
			s.logger.Error("failed to update record", "collection", s.collection.Name, "record_id", rec.RecordID(), "error", err)
			return zero, err
		}
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewContentSaved(s.collection.Name, rec.RecordID(), created))
	}

	s.logger.Info("record saved", "collection", s.collection.Name, "record_id", rec.RecordID(), "created", created)
	return rec, nil
}

// Remove deletes a record. The caller must have consumed an approved
// confirmation before getting here.
func (s *Service[T]) Remove(ctx context.Context, id int64) error {
	key := s.opKey("remove", id)
	if !s.begin(key) {
		s.logger.Warn("duplicate remove rejected", "collection", s.collection.Name, "record_id", id)
		return internal.ErrOperationInFlight
	}
	defer s.end(key)

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete record", "collection", s.collection.Name, "record_id", id, "error", err)
		return err
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewContentDeleted(s.collection.Name, id))
	}

	s.logger.Info("record deleted", "collection", s.collection.Name, "record_id", id)
	return nil
}

func (s *Service[T]) opKey(op string, id int64) string {
	return fmt.Sprintf("%s:%s:%d", s.collection.Name, op, id)
}

func (s *Service[T]) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service[T]) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
