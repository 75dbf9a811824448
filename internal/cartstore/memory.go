package cartstore

import (
	"context"
	"sync"

	"github.com/webcraft-id/kantinku-backend/internal/cart"
)

// MemoryFactory keeps records in process memory. Used by tests and as a
// fallback backend where persistence across restarts does not matter.
type MemoryFactory struct {
	mu    sync.Mutex
	users map[string]*MemoryStore
}

// NewMemoryFactory returns an empty in-memory factory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{users: map[string]*MemoryStore{}}
}

// ForUser implements cart.StoreFactory.
func (f *MemoryFactory) ForUser(userID string) cart.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	store, ok := f.users[userID]
	if !ok {
		store = NewMemoryStore()
		f.users[userID] = store
	}
	return store
}

// MemoryStore is a single user's record map.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]string
	saves   int
	removes int
}

// NewMemoryStore returns an empty record map.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]string{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	return value, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	s.saves++
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	s.removes++
	return nil
}

// Get returns the raw record, for assertions.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	return value, ok
}

// Seed preloads a record, for rehydration tests.
func (s *MemoryStore) Seed(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
}

// SaveCount reports how many saves have happened.
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// RemoveCount reports how many removes have happened.
func (s *MemoryStore) RemoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removes
}

var _ cart.Store = (*MemoryStore)(nil)
