package forgeterm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionFactory builds a session with the given id.
type SessionFactory func(id string) *Session

// managedSession serializes access to one Session.
type managedSession struct {
	mu      sync.Mutex
	session *Session
}

// SessionManager keeps the open sessions of a server, keyed by uuid.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*managedSession
	maxSessions int
	factory     SessionFactory
	logger      *zap.Logger
}

// NewSessionManager creates a manager that builds sessions with factory.
// maxSessions <= 0 means unlimited.
func NewSessionManager(maxSessions int, factory SessionFactory, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = func(id string) *Session {
			return NewSession(SessionOptions{ID: id, Logger: logger})
		}
	}
	return &SessionManager{
		sessions:    make(map[string]*managedSession),
		maxSessions: maxSessions,
		factory:     factory,
		logger:      logger.Named("sessions"),
	}
}

// Create opens a new session and returns it.
func (m *SessionManager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, m.maxSessions)
	}

	id := uuid.New().String()
	s := m.factory(id)
	m.sessions[id] = &managedSession{session: s}
	SetActiveSessions(len(m.sessions))

	m.logger.Info("session created", zap.String("session_id", id), zap.Int("active", len(m.sessions)))
	return s, nil
}

// Close removes a session.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	SetActiveSessions(len(m.sessions))

	m.logger.Info("session closed", zap.String("session_id", id), zap.Int("active", len(m.sessions)))
	return nil
}

// Execute runs raw in the session with the given id. Commands for one
// session run one at a time.
func (m *SessionManager) Execute(ctx context.Context, id, raw string) (CommandResult, error) {
	ms, err := m.get(id)
	if err != nil {
		return CommandResult{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.ProcessCommandContext(ctx, raw), nil
}

// ExecuteEphemeral runs raw on a new session that is never registered. It
// does not count against the session limit.
func (m *SessionManager) ExecuteEphemeral(ctx context.Context, raw string) CommandResult {
	s := m.factory(uuid.New().String())
	result := s.ProcessCommandContext(ctx, raw)
	m.logger.Debug("ephemeral session executed", zap.String("session_id", s.ID()), zap.Int("exit_code", result.ExitCode))
	return result
}

// History returns the command history of a session.
func (m *SessionManager) History(id string) ([]string, error) {
	ms, err := m.get(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.History(), nil
}

// Cwd returns the working directory of a session.
func (m *SessionManager) Cwd(id string) (string, error) {
	ms, err := m.get(id)
	if err != nil {
		return "", err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.Cwd(), nil
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the open session ids, sorted.
func (m *SessionManager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *SessionManager) get(id string) (*managedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ms, nil
}
