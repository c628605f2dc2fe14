package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// DefaultDuration is the inactivity window after which a verified session
// is treated as absent.
const DefaultDuration = 24 * time.Hour

// KeepaliveInterval is how often clients are expected to call the keepalive
// endpoint while a back-office tab stays open.
const KeepaliveInterval = 5 * time.Minute

// Status is the result of loading a session.
type Status int

const (
	// StatusUnknown means the session has not been loaded yet. Load never
	// returns it; it is the zero value callers start from.
	StatusUnknown Status = iota
	StatusInvalid
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Session is the persisted record: whether the password gate was passed and
// when the holder was last active, in epoch milliseconds.
type Session struct {
	Verified     bool  `json:"verified"`
	LastActivity int64 `json:"lastActivity"`
}

// Store persists raw session payloads keyed by session ID. A nil payload
// with a nil error means the key is absent.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Manager owns all reads and writes of session state. Nothing else in the
// codebase touches the store directly.
type Manager struct {
	store    Store
	duration time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewManager(store Store, duration time.Duration, logger *slog.Logger) *Manager {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Manager{
		store:    store,
		duration: duration,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the manager's time source. Test hook.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Load reads the persisted session and returns its status. An absent,
// malformed or expired record yields StatusInvalid; malformed and expired
// records are also deleted. A valid record has its activity timestamp
// refreshed before returning StatusValid.
func (m *Manager) Load(ctx context.Context, id string) Status {
	if id == "" {
		return StatusInvalid
	}

	data, err := m.store.Get(ctx, id)
	if err != nil {
		m.logger.Error("session load failed", "error", err)
		return StatusInvalid
	}
	if data == nil {
		return StatusInvalid
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// corrupt payload is indistinguishable from absence for callers
		m.logger.Warn("discarding malformed session", "error", err)
		if derr := m.store.Delete(ctx, id); derr != nil {
			m.logger.Error("failed to delete malformed session", "error", derr)
		}
		return StatusInvalid
	}

	if !sess.Verified || m.expired(sess) {
		if derr := m.store.Delete(ctx, id); derr != nil {
			m.logger.Error("failed to delete expired session", "error", derr)
		}
		return StatusInvalid
	}

	if err := m.stamp(ctx, id); err != nil {
		m.logger.Error("failed to refresh session activity", "error", err)
	}
	return StatusValid
}

// Verify marks the session as having passed the password gate and stamps
// the current time as last activity.
func (m *Manager) Verify(ctx context.Context, id string) error {
	return m.stamp(ctx, id)
}

// Touch refreshes the activity timestamp of an already valid session.
// Touching an absent, unverified or expired session is a no-op.
func (m *Manager) Touch(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	data, err := m.store.Get(ctx, id)
	if err != nil || data == nil {
		return err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil
	}
	if !sess.Verified || m.expired(sess) {
		return nil
	}

	return m.stamp(ctx, id)
}

// Clear removes the persisted session. Called on logout.
func (m *Manager) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) expired(sess Session) bool {
	last := time.UnixMilli(sess.LastActivity)
	return m.now().Sub(last) > m.duration
}

func (m *Manager) stamp(ctx context.Context, id string) error {
	sess := Session{
		Verified:     true,
		LastActivity: m.now().UnixMilli(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	// the store TTL is a backstop; expiry is decided from lastActivity
	return m.store.Set(ctx, id, data, m.duration)
}
