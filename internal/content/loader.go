package content

import (
	"context"
	"sync"

	"github.com/vitalis-clinic/backoffice/internal"
)

// ErrStaleLoad is returned for a load that was superseded by a newer one
// before its response was applied.
var ErrStaleLoad = internal.NewConflictError("load superseded by a newer request", "STALE_LOAD")

// ListFunc fetches one page for the loader.
type ListFunc[T Record] func(ctx context.Context, q PageQuery) (*PagedResult[T], error)

// Loader serializes the list state of one collection view: current page,
// current search query, and the latest applied result. Every Load gets a
// generation number; a response whose generation is no longer current is
// discarded, so the last *issued* request wins, not the last to arrive.
type Loader[T Record] struct {
	fetch ListFunc[T]

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	page    int
	query   string
	result  *PagedResult[T]
	loading bool
}

func NewLoader[T Record](fetch ListFunc[T]) *Loader[T] {
	return &Loader[T]{
		fetch: fetch,
		page:  1,
	}
}

// SetPage moves the view to the given page (floored at 1).
func (l *Loader[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
}

// SetQuery replaces the search query. Changing the query resets the view
// to page 1.
func (l *Loader[T]) SetQuery(query string) {
	l.mu.Lock()
	if query != l.query {
		l.query = query
		l.page = 1
	}
	l.mu.Unlock()
}

// Load fetches the page for the current state. Starting a new Load cancels
// the in-flight one and invalidates its result.
func (l *Loader[T]) Load(ctx context.Context) (*PagedResult[T], error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.loading = true
	q := PageQuery{Page: l.page, Search: l.query}
	l.mu.Unlock()

	result, err := l.fetch(loadCtx, q)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		// a newer load was issued while this one was in flight
		return nil, ErrStaleLoad
	}

	l.loading = false
	cancel()
	l.cancel = nil

	if err != nil {
		return nil, err
	}

	if result.Page != l.page {
		// the service clamped an out-of-range page; follow it
		l.page = result.Page
	}
	l.result = result
	return result, nil
}

// State reports the loader's current page, query and whether a load is in
// flight.
func (l *Loader[T]) State() (page int, query string, loading bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page, l.query, l.loading
}

// Result returns the latest applied page, or nil before the first
// successful load.
func (l *Loader[T]) Result() *PagedResult[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}
