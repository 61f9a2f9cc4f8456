package store

import (
	"context"
	"sync"

	"elan/internal/memory/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// InMemoryStore keeps memories in insertion order.
type InMemoryStore struct {
	mu       sync.RWMutex
	memories map[id.MemoryID]*models.Memory
	order    []id.MemoryID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{memories: make(map[id.MemoryID]*models.Memory)}
}

func (s *InMemoryStore) Save(_ context.Context, memory *models.Memory) error {
	if memory == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memories[memory.ID]; ok {
		return sentinel.ErrConflict
	}
	s.memories[memory.ID] = memory.Clone()
	s.order = append(s.order, memory.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, memoryID id.MemoryID) (*models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memories[memoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Memory, 0, len(s.order))
	for _, mid := range s.order {
		out = append(out, s.memories[mid].Clone())
	}
	return out, nil
}

func (s *InMemoryStore) UpdateSharing(_ context.Context, memoryID id.MemoryID, sharing models.Sharing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memories[memoryID]
	if !ok {
		return sentinel.ErrNotFound
	}
	m.Sharing = sharing
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, memoryID id.MemoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memories[memoryID]; !ok {
		return sentinel.ErrNotFound
	}
	s.remove(memoryID)
	return nil
}

func (s *InMemoryStore) DeleteByOwner(_ context.Context, ownerID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var doomed []id.MemoryID
	for _, mid := range s.order {
		if s.memories[mid].OwnerID == ownerID {
			doomed = append(doomed, mid)
		}
	}
	for _, mid := range doomed {
		s.remove(mid)
	}
	return len(doomed), nil
}

func (s *InMemoryStore) remove(memoryID id.MemoryID) {
	delete(s.memories, memoryID)
	for i, mid := range s.order {
		if mid == memoryID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}
