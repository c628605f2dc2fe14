// Package confirm implements the two-step confirmation protocol that gates
// destructive actions: a pending ticket is created with the dialog details,
// resolved to a yes/no, and consumed exactly once by the destructive call.
package confirm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalis-clinic/backoffice/internal"
)

// DefaultTTL is how long an unconsumed ticket stays alive.
const DefaultTTL = 5 * time.Minute

type State int

const (
	StatePending State = iota
	StateResolved
)

// Details is what the confirm dialog shows.
type Details struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	ConfirmLabel string `json:"confirmLabel"`
	CancelLabel  string `json:"cancelLabel"`
}

type ticket struct {
	details   Details
	state     State
	approved  bool
	createdAt time.Time
}

var (
	ErrUnknownToken    = internal.NewNotFoundError("unknown or expired confirmation token", internal.ErrCodeConfirmationRequired)
	ErrAlreadyResolved = internal.NewConflictError("confirmation already resolved", internal.ErrCodeConfirmationRequired)
	ErrNotResolved     = internal.NewPreconditionError("confirmation has not been resolved", internal.ErrCodeConfirmationRequired)
)

// Manager holds pending confirmation tickets in memory. Tickets are cheap
// and short-lived; losing them on restart only re-prompts the user.
type Manager struct {
	mu      sync.Mutex
	tickets map[string]*ticket
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewManager(ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		tickets: make(map[string]*ticket),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock replaces the manager's time source. Test hook.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Request opens a pending ticket and returns its token.
func (m *Manager) Request(details Details) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	token := uuid.NewString()
	m.tickets[token] = &ticket{
		details:   details,
		state:     StatePending,
		createdAt: m.now(),
	}
	return token
}

// Resolve records the user's answer on a pending ticket. Resolving twice or
// resolving an expired token is an error.
func (m *Manager) Resolve(token string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	t, ok := m.tickets[token]
	if !ok {
		return ErrUnknownToken
	}
	if t.state == StateResolved {
		return ErrAlreadyResolved
	}

	t.state = StateResolved
	t.approved = approved
	return nil
}

// Consume removes a resolved ticket and reports whether the action was
// approved. Tokens are single-use: a second Consume fails.
func (m *Manager) Consume(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	t, ok := m.tickets[token]
	if !ok {
		return false, ErrUnknownToken
	}
	if t.state != StateResolved {
		return false, ErrNotResolved
	}

	delete(m.tickets, token)
	return t.approved, nil
}

// Details returns the dialog details of a live ticket.
func (m *Manager) Details(token string) (Details, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	t, ok := m.tickets[token]
	if !ok {
		return Details{}, false
	}
	return t.details, true
}

func (m *Manager) sweepLocked() {
	cutoff := m.now().Add(-m.ttl)
	for token, t := range m.tickets {
		if t.createdAt.Before(cutoff) {
			delete(m.tickets, token)
		}
	}
}
