package dataimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/google/uuid"
)

// State is the lifecycle state of an import session
type State string

const (
	StateCreated   State = "created"
	StateValidated State = "validated"
	StateImporting State = "importing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// IsTerminal reports whether no further transition is possible
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

var (
	ErrSessionNotFound = errors.New("import session not found or expired")
	ErrInvalidState    = errors.New("import session is not in a state that allows this operation")
)

// Session holds an uploaded file between upload, validation and execution
type Session struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	UserID     uuid.UUID
	Entity     bulk.EntityType
	Format     bulk.FileFormat
	FileName   string
	FileSize   int64
	ArchiveKey string
	State      State
	Table      *Table
	Mapping    Mapping
	Result     *ValidationResult
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

// NewSession creates a session in the created state
func NewSession(tenantID, userID uuid.UUID, entity bulk.EntityType, format bulk.FileFormat, fileName string, fileSize int64, table *Table) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		Entity:    entity,
		Format:    format,
		FileName:  fileName,
		FileSize:  fileSize,
		State:     StateCreated,
		Table:     table,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetValidated stores a validation pass. A session can be revalidated with
// another mapping until execution starts.
func (s *Session) SetValidated(mapping Mapping, result *ValidationResult) error {
	if s.State != StateCreated && s.State != StateValidated {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.State)
	}
	s.Mapping = mapping
	s.Result = result
	s.transition(StateValidated)
	return nil
}

// StartImport moves a validated session to importing
func (s *Session) StartImport() error {
	if s.State != StateValidated {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.State)
	}
	s.transition(StateImporting)
	return nil
}

// Finish ends an import as completed or failed
func (s *Session) Finish(failed bool) error {
	if s.State != StateImporting {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.State)
	}
	if failed {
		s.transition(StateFailed)
	} else {
		s.transition(StateCompleted)
	}
	return nil
}

// Cancel abandons a session that has not started importing
func (s *Session) Cancel() error {
	if s.State == StateImporting || s.State.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.State)
	}
	s.transition(StateCancelled)
	return nil
}

func (s *Session) transition(to State) {
	s.State = to
	s.UpdatedAt = time.Now()
}

// SessionStore keeps sessions for a limited time
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, tenantID, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Close()
}

// MemorySessionStore keeps sessions in process memory. Sessions hold the
// parsed file, so they are never shared across instances.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore starts a store whose sessions expire ttl after their
// last save. Expired sessions are purged every cleanupInterval.
func NewMemorySessionStore(ttl, cleanupInterval time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	s := &MemorySessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

// Save stores the session and extends its expiry
func (s *MemorySessionStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ExpiresAt = s.now().Add(s.ttl)
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns a live session of the tenant
func (s *MemorySessionStore) Get(_ context.Context, tenantID, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.TenantID != tenantID {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session of the tenant
func (s *MemorySessionStore) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.TenantID != tenantID {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len counts stored sessions, expired ones included until purged
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the cleanup goroutine
func (s *MemorySessionStore) Close() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *MemorySessionStore) cleanupLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.purgeExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *MemorySessionStore) purgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
