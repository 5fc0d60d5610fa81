package storage

// Package storage provides KeyValue adapters for persisted client state:
// in-memory (tests and ephemeral hosts), file-backed (default device-local
// persistence), and Redis (shared-device/kiosk deployments).

import (
	"context"
	"sync"

	"github.com/escolaweb/portal-core/internal/ports"
)

// Memory is an in-process KeyValue store. Contents do not survive a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ ports.KeyValue = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
