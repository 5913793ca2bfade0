package configstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]ConfigDocument // key: serviceID + "/" + companyID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]ConfigDocument)}
}

func storeKey(serviceID, companyID string) string {
	return serviceID + "/" + companyID
}

// Read fetches the stored document, or nil when absent.
func (s *MemoryStore) Read(_ context.Context, serviceID, companyID string) (*ConfigDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[storeKey(serviceID, companyID)]
	if !ok {
		return nil, nil
	}
	out := doc
	return &out, nil
}

// Write replaces the stored document for the key.
func (s *MemoryStore) Write(_ context.Context, serviceID, companyID string, doc ConfigDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[storeKey(serviceID, companyID)] = doc
	return nil
}

// Len returns the number of stored documents. For testing.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
