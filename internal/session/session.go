package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hasancagrigungor/ravla/internal/domain/frame"
	"github.com/hasancagrigungor/ravla/internal/ingest"
	"github.com/hasancagrigungor/ravla/internal/schema"
)

var ErrNotFound = errors.New("session not found")

// Session holds one uploaded dataset and everything derived from it. Raw is
// the untyped frame as resolved from the upload, Table the coerced rows, and
// Bindings the per-view manual column assignments accumulated so far.
type Session struct {
	ID        string
	FileName  string
	CreatedAt time.Time

	Raw      *frame.Frame
	Table    *ingest.Table
	Bindings map[string]schema.Bindings
}

// Binding returns the accumulated bindings for one view, never nil.
func (s *Session) Binding(view string) schema.Bindings {
	if b, ok := s.Bindings[view]; ok {
		return b
	}
	return schema.Bindings{}
}

// Bind records a manual column assignment for a view.
func (s *Session) Bind(view, field, column string) {
	if s.Bindings == nil {
		s.Bindings = make(map[string]schema.Bindings)
	}
	if s.Bindings[view] == nil {
		s.Bindings[view] = schema.Bindings{}
	}
	s.Bindings[view][field] = column
}

// Manager keeps sessions in memory keyed by generated id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers a new session for an uploaded dataset.
func (m *Manager) Create(fileName string, raw *frame.Frame, table *ingest.Table) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		FileName:  fileName,
		CreatedAt: time.Now(),
		Raw:       raw,
		Table:     table,
		Bindings:  make(map[string]schema.Bindings),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Replace swaps a session's dataset for a fresh upload. Bindings refer to
// columns of the old dataset, so they are cleared.
func (m *Manager) Replace(id, fileName string, raw *frame.Frame, table *ingest.Table) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.FileName = fileName
	s.Raw = raw
	s.Table = table
	s.Bindings = make(map[string]schema.Bindings)
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
