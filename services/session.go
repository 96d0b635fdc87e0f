package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/clock"
	"github.com/lborres/ticketflow/pkg/task"
)

// Deps are the collaborators shared by the managers.
type Deps struct {
	Store    *Store
	Notifier core.Notifier
	Clock    clock.Clock
	NewID    core.IDFunc
	Logger   zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Notifier == nil {
		d.Notifier = discardNotifier{}
	}
	if d.NewID == nil {
		d.NewID = NewUUIDv7
	}
	return d
}

// SessionManager owns the current session and the registered-users
// ledger. It moves from uninitialized to either anonymous or
// authenticated, and between those two on login, signup and logout.
type SessionManager struct {
	store  *Store
	notify core.Notifier
	runner *task.Runner
	clock  clock.Clock
	newID  core.IDFunc
	logger zerolog.Logger

	mu          sync.RWMutex
	session     *core.Session
	initialized bool
	loading     bool
}

var (
	_ core.SessionState  = (*SessionManager)(nil)
	_ core.SessionReader = (*SessionManager)(nil)
)

// NewSessionManager creates a manager whose Login and Signup wait for
// latency before running.
func NewSessionManager(deps Deps, latency time.Duration) *SessionManager {
	deps = deps.withDefaults()
	return &SessionManager{
		store:   deps.Store,
		notify:  deps.Notifier,
		runner:  task.NewRunner(deps.Clock, latency),
		clock:   deps.Clock,
		newID:   deps.NewID,
		logger:  deps.Logger.With().Str("component", "session").Logger(),
		loading: true,
	}
}

// Initialize restores a persisted session. It runs once; later calls are
// no-ops. A corrupt session entry, or one missing its id or email, is
// discarded and the manager settles anonymous.
func (m *SessionManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}

	var session core.Session
	found, err := m.store.Load(ctx, core.KeySession, &session)
	if err != nil {
		// Settle anonymous rather than leave the guard retrying forever.
		m.logger.Error().Err(err).Msg("failed to restore session")
		found = false
	}
	if found && (session.ID == "" || session.Email == "") {
		m.logger.Warn().Msg("discarding incomplete session entry")
		if rmErr := m.store.Remove(ctx, core.KeySession); rmErr != nil {
			m.logger.Error().Err(rmErr).Msg("failed to remove incomplete session entry")
		}
		found = false
	}
	if found {
		m.session = &session
	}

	m.loading = false
	m.initialized = true
	m.logger.Debug().Bool("authenticated", found).Msg("session initialized")
	return err
}

// Logout forgets the current session. It is safe to call when nobody is
// logged in.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.store.Remove(ctx, core.KeySession); err != nil {
		m.logger.Error().Err(err).Msg("failed to remove persisted session")
	}

	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	m.notify.Show(msgLoggedOut, core.SeverityInfo, 0)
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

func (m *SessionManager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Current returns a copy of the active session.
func (m *SessionManager) Current() (core.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return core.Session{}, false
	}
	return *m.session, true
}

// Users returns a copy of the registered-users ledger.
func (m *SessionManager) Users(ctx context.Context) ([]core.User, error) {
	return m.loadUsers(ctx)
}

func (m *SessionManager) loadUsers(ctx context.Context) ([]core.User, error) {
	var users []core.User
	if _, err := m.store.Load(ctx, core.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *SessionManager) setSession(s core.Session) {
	m.mu.Lock()
	m.session = &s
	m.mu.Unlock()
}
