// Package session manages the opaque identity correlating all requests
// for one conversation.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/localstate"
)

const stateKey = "session_id"

// Manager owns the durable session identity for one widget instance.
type Manager struct {
	state     *localstate.Store
	namespace string

	mu      sync.Mutex
	current string
}

// NewManager creates a session manager persisting into the given
// namespace of the local state store.
func NewManager(state *localstate.Store, namespace string) *Manager {
	return &Manager{state: state, namespace: namespace}
}

// GetOrCreate returns the current session id, loading a persisted one
// or synthesizing and persisting a fresh token. Idempotent until Reset.
func (m *Manager) GetOrCreate() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != "" {
		return m.current, nil
	}

	stored, ok, err := m.state.Get(m.namespace, stateKey)
	if err != nil {
		return "", fmt.Errorf("load session id: %w", err)
	}
	if ok && stored != "" {
		m.current = stored
		return stored, nil
	}

	return m.rotateLocked()
}

// Reset invalidates the stored identity, synthesizes a new one, and
// clears per-session caches tied to the old identity.
func (m *Manager) Reset() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.current
	id, err := m.rotateLocked()
	if err != nil {
		return "", err
	}
	if old != "" {
		// Rating, bookmark and draft caches are keyed by session id.
		if err := m.state.DeletePrefix(m.namespace, "rating:"+old); err != nil {
			return "", err
		}
		if err := m.state.DeletePrefix(m.namespace, "bookmark:"+old); err != nil {
			return "", err
		}
		if err := m.state.Delete(m.namespace, "draft:"+old); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (m *Manager) rotateLocked() (string, error) {
	id := uuid.New().String()
	if err := m.state.Set(m.namespace, stateKey, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	m.current = id
	return id, nil
}
