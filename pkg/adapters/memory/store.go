package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/quill/pkg/domain"
)

// Store implements ports.BlobStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save copies the blob so the caller may reuse its buffer.
func (s *Store) Save(ctx context.Context, anchor string, blob []byte) error {
	copied := append([]byte(nil), blob...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[anchor] = copied
	return nil
}

// Load returns a copy so the caller can't mutate store state directly.
func (s *Store) Load(ctx context.Context, anchor string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.data[anchor]
	if !ok {
		return nil, domain.ErrAnchorNotFound
	}
	return append([]byte(nil), blob...), nil
}

// Delete removes the blob.
func (s *Store) Delete(ctx context.Context, anchor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, anchor)
	return nil
}

// List returns stored anchors in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	anchors := make([]string, 0, len(s.data))
	for id := range s.data {
		anchors = append(anchors, id)
	}
	sort.Strings(anchors)
	return anchors, nil
}
