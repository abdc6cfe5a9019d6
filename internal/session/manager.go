package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL closes sessions that have seen no event for this long.
const DefaultTTL = 30 * time.Minute

// Metrics observes session lifecycle. May be nil.
type Metrics interface {
	SessionOpened()
	SessionClosed()
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Fetcher  Fetcher
	Notifier Notifier
	Options  Options
	TTL      time.Duration
	Metrics  Metrics

	// Watching reports whether a live client is attached to a session.
	// Watched sessions are never swept. May be nil.
	Watching func(id string) bool
}

// Manager is the registry of open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      ManagerConfig
	logger   *slog.Logger

	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Options.Now == nil {
		cfg.Options.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger,
		interval: time.Minute,
	}
}

// Create opens a session for restaurantID and starts loading its menu. The
// load is not tied to ctx's cancellation, only to the session.
func (m *Manager) Create(ctx context.Context, restaurantID string) *Session {
	id := uuid.NewString()
	s := New(id, restaurantID, m.cfg.Fetcher, m.cfg.Notifier, m.cfg.Options, m.logger)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.SessionOpened()
	}
	m.logger.Info("session opened", "session", id, "restaurant", restaurantID)
	s.Start(context.WithoutCancel(ctx))
	return s
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Exists reports whether id is an open session.
func (m *Manager) Exists(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes and forgets a session. Reports whether it existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	if m.cfg.Metrics != nil {
		m.cfg.Metrics.SessionClosed()
	}
	m.logger.Info("session closed", "session", id)
	return true
}

// Sweep closes sessions idle since before now minus the TTL and returns
// how many it closed. Sessions with an attached client are touched instead.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.TTL)

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if m.cfg.Watching != nil && m.cfg.Watching(id) {
			s.Touch()
			continue
		}
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if m.Close(id) {
			n++
		}
	}
	if n > 0 {
		m.logger.Info("expired idle sessions", "count", n)
	}
	return n
}

// Start runs the idle sweep in the background until Stop or ctx ends.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep(m.cfg.Options.Now())
			}
		}
	}()
}

// Stop stops the sweep and closes every session.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		m.Close(id)
	}
}

// Fanout delivers each notification to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(session, entity, action string, extra map[string]any) {
	for _, n := range f {
		if n != nil {
			n.Notify(session, entity, action, extra)
		}
	}
}
