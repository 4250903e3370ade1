package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
	"github.com/wricardo/tile-path-game/logger"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// idleCleaner is implemented by backends that can drop idle sessions never loaded into memory
type idleCleaner interface {
	DeleteIdleSince(cutoff time.Time) (int, error)
}

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// NewManagerWithPersistence creates a new session manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create creates a new session for a level; an empty id gets a generated one
func (m *Manager) Create(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	} else if !validSessionID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			logger.Warning("Failed to persist session", "session", id, "error", err)
		}
	}

	return session, nil
}

// Get retrieves a session by ID (case-insensitive), falling back to persistence
func (m *Manager) Get(id string) (*service.Session, error) {
	key := strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !validSessionID(id) || !m.persistence.Exists(key) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if session, exists := m.sessions[key]; exists {
		return session, nil
	}
	m.sessions[key] = loaded
	return loaded, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, configID, config)
	}
	return nil, err
}

// List returns all sessions held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence != nil && validSessionID(id) && m.persistence.Exists(key) {
		if err := m.persistence.Delete(key); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory removes a session from memory only, keeping it in persistence
func (m *Manager) DeleteFromMemory(id string) error {
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			logger.Warning("Failed to persist session after access update", "session", id, "error", err)
		}
	}
	return nil
}

// Save writes one session to persistence; a no-op without persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge from memory
// and persistence, returning how many were removed
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, session := range m.sessions {
		if !session.LastAccessedAt.Before(cutoff) {
			continue
		}
		delete(m.sessions, key)
		if m.persistence != nil && m.persistence.Exists(key) {
			if err := m.persistence.Delete(key); err != nil {
				logger.Warning("Failed to delete expired session", "session", key, "error", err)
			}
		}
		removed++
	}

	if cleaner, ok := m.persistence.(idleCleaner); ok {
		n, err := cleaner.DeleteIdleSince(cutoff)
		if err != nil {
			logger.Warning("Failed to delete idle persisted sessions", "error", err)
		}
		removed += n
	}

	if removed > 0 {
		logger.Info("Expired sessions removed", "count", removed)
	}
	return removed
}

// Count returns the number of sessions held in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID not yet in use
func (m *Manager) generateSessionID() string {
	for {
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)

		m.mu.RLock()
		_, taken := m.sessions[id]
		m.mu.RUnlock()
		if !taken {
			return id
		}
	}
}

// validSessionID accepts letters, digits, '-' and '_' so IDs are safe as file names
func validSessionID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)
		if _, exists := m.sessions[key]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			logger.Warning("Failed to load persisted session", "session", id, "error", err)
			continue
		}

		m.sessions[key] = session
		loadedCount++
	}

	if loadedCount > 0 {
		logger.Info("Loaded persisted sessions", "count", loadedCount)
	}
	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	errorCount := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			logger.Warning("Failed to save session", "session", session.ID, "error", err)
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}
	return nil
}
