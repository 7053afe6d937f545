// Package storage holds the local persisted state: small text documents kept
// under fixed well-known keys, one namespace per owner.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
)

// Well-known keys of the local persisted state.
const (
	KeySessionUser = "echoremedy_user"
	KeyHistory     = "echoremedy_symptoms"
)

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Scoped prefixes every key with the owner namespace.
type Scoped struct {
	store domain.KeyValueStore
	owner string
}

// ForOwner returns the view of store that belongs to owner.
func ForOwner(store domain.KeyValueStore, owner string) *Scoped {
	return &Scoped{store: store, owner: owner}
}

func (s *Scoped) key(k string) string {
	return fmt.Sprintf("owner:%s:%s", s.owner, k)
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.key(key))
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.key(key), value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.key(key))
}
