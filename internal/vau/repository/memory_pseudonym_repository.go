// Package repository implements user pseudonym persistence for memory, SQLite, PostgreSQL
// and MySQL, plus an at-rest encryption decorator backed by a KMS keeper.
package repository

import (
	"context"
	"sync"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// MemoryPseudonymRepository keeps pseudonyms in process memory. Safe for concurrent use.
type MemoryPseudonymRepository struct {
	mu         sync.RWMutex
	pseudonyms map[string]vauDomain.UserPseudonym
}

// NewMemoryPseudonymRepository creates an empty in-memory repository.
func NewMemoryPseudonymRepository() *MemoryPseudonymRepository {
	return &MemoryPseudonymRepository{pseudonyms: make(map[string]vauDomain.UserPseudonym)}
}

// Get returns a copy of the pseudonym stored for key.
func (m *MemoryPseudonymRepository) Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pseudonym, ok := m.pseudonyms[key]
	if !ok {
		return nil, vauDomain.ErrPseudonymNotFound
	}
	return &pseudonym, nil
}

// Upsert stores pseudonym, keeping the original id and creation time of an existing entry.
func (m *MemoryPseudonymRepository) Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *pseudonym
	if existing, ok := m.pseudonyms[pseudonym.Key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	m.pseudonyms[pseudonym.Key] = stored
	return nil
}

// Delete removes the pseudonym stored for key.
func (m *MemoryPseudonymRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pseudonyms[key]; !ok {
		return vauDomain.ErrPseudonymNotFound
	}
	delete(m.pseudonyms, key)
	return nil
}
