package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"elan/internal/visibility/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

type pairKey struct {
	owner   id.UserID
	advisor id.UserID
}

// InMemoryStore keeps one grant per owner/advisor pair.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[pairKey]*models.Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[pairKey]*models.Grant)}
}

func (s *InMemoryStore) Save(_ context.Context, grant *models.Grant) error {
	if grant == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{grant.OwnerID, grant.AdvisorID}
	if _, ok := s.grants[key]; ok {
		return sentinel.ErrConflict
	}
	s.grants[key] = grant.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, grant *models.Grant) error {
	if grant == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{grant.OwnerID, grant.AdvisorID}
	existing, ok := s.grants[key]
	if !ok || existing.ID != grant.ID {
		return sentinel.ErrNotFound
	}
	s.grants[key] = grant.Clone()
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, ownerID, advisorID id.UserID) (*models.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[pairKey{ownerID, advisorID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return g.Clone(), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Grant
	for key, g := range s.grants {
		if key.owner == ownerID {
			out = append(out, g.Clone())
		}
	}
	sortByGrantedAt(out)
	return out, nil
}

// DeleteByUser removes every grant where the user is owner or advisor.
func (s *InMemoryStore) DeleteByUser(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.grants {
		if key.owner == userID || key.advisor == userID {
			delete(s.grants, key)
			n++
		}
	}
	return n, nil
}

func sortByGrantedAt(grants []*models.Grant) {
	slices.SortFunc(grants, func(a, b *models.Grant) int {
		if c := a.GrantedAt.Compare(b.GrantedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.AdvisorID.String(), b.AdvisorID.String())
	})
}
