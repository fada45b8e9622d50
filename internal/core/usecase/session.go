package usecase

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

// Session is one user's editing session: the workflow state, the
// per-class settings cache and the sub-form registry of the rendered
// detail step. Handlers serialize on the session mutex, which stands
// in for the single-threaded event loop of the browser client: two
// handlers of the same session never interleave remote calls.
type Session struct {
	ID string

	mu              sync.Mutex
	state           domain.EditorState
	settingsByClass map[int64]*domain.Settings
	forms           *domain.SubForms
	identity        domain.Identity
}

func newSession(identity domain.Identity) *Session {
	return &Session{
		ID:              uuid.NewString(),
		state:           domain.NewEditorState(),
		settingsByClass: make(map[int64]*domain.Settings),
		identity:        identity,
	}
}

// Lock serializes handler entry. Callers must Unlock.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// State returns the current workflow state. Callers hold the lock.
func (s *Session) State() domain.EditorState {
	return s.state
}

// SetState replaces the workflow state with the result of a named
// transition. This is the only write path.
func (s *Session) SetState(next domain.EditorState) {
	s.state = next
}

func (s *Session) Identity() domain.Identity {
	return s.identity
}

// CachedSettings returns the memoized settings for a class, if any.
func (s *Session) CachedSettings(classID int64) *domain.Settings {
	return s.settingsByClass[classID]
}

func (s *Session) CacheSettings(classID int64, settings *domain.Settings) {
	s.settingsByClass[classID] = settings
}

// ResetSettingsCache drops all memoized settings. Invoked on back
// navigation together with the state transition.
func (s *Session) ResetSettingsCache() {
	s.settingsByClass = make(map[int64]*domain.Settings)
}

// Forms is the sub-form registry of the current detail step, nil while
// nothing has been registered.
func (s *Session) Forms() *domain.SubForms {
	return s.forms
}

func (s *Session) SetForms(forms *domain.SubForms) {
	s.forms = forms
}

// GoBack runs the back transition and everything tied to it: settings
// memoization and the registry do not survive leaving the detail step.
func (s *Session) GoBack() {
	s.state = s.state.Back()
	s.ResetSettingsCache()
	s.forms = nil
}

// SessionManager owns all live sessions. Sessions are in-memory: an
// editing session is as transient as the browser tab it mirrors.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	onCount func(int)
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// OnCountChange registers a callback observing the live session count,
// used to drive the sessions gauge.
func (m *SessionManager) OnCountChange(fn func(int)) {
	m.onCount = fn
}

func (m *SessionManager) Create(identity domain.Identity) *Session {
	sess := newSession(identity)
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	count := len(m.sessions)
	m.mu.Unlock()
	if m.onCount != nil {
		m.onCount(count)
	}
	return sess
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", errNoSession(id))
	}
	return sess, nil
}

func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()
	if m.onCount != nil {
		m.onCount(count)
	}
}

type errNoSession string

func (e errNoSession) Error() string { return "no session with id " + string(e) }
