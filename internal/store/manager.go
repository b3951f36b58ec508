package store

import (
	"sync"

	"go.uber.org/zap"
)

// Manager tracks one Store per signed-in identity. Stores are created and
// attached on sign-in (or lazily on the first authenticated request) and torn
// down on sign-out.
type Manager struct {
	mu       sync.Mutex
	stores   map[int]*Store
	newStore func(userID int) *Store
	logger   *zap.Logger
}

// NewManager builds a manager around a store factory. The factory must
// return a fresh Store wired with per-user collaborators (the reminder
// scheduler in particular is per store, since CancelAll is store-scoped).
func NewManager(newStore func(userID int) *Store, logger *zap.Logger) *Manager {
	return &Manager{
		stores:   make(map[int]*Store),
		newStore: newStore,
		logger:   logger,
	}
}

// Attach returns the user's store, creating and attaching one on first use.
func (m *Manager) Attach(userID int) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s
	}

	s := m.newStore(userID)
	s.Attach(userID)
	m.stores[userID] = s

	m.logger.Info("Routine store attached", zap.Int("user_id", userID))
	return s
}

// Detach discards the user's store: local state cleared, tick stopped,
// pending reminders cancelled. Remote documents are untouched.
func (m *Manager) Detach(userID int) {
	m.mu.Lock()
	s, ok := m.stores[userID]
	if ok {
		delete(m.stores, userID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	s.Detach()
	s.Close()

	m.logger.Info("Routine store detached", zap.Int("user_id", userID))
}

// Close tears down every store.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	m.stores = make(map[int]*Store)
	m.mu.Unlock()

	for _, s := range stores {
		s.Close()
	}
}
