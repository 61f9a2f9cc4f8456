package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"elan/internal/institution/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// InMemoryStore keeps institutions with a case-insensitive name index.
type InMemoryStore struct {
	mu           sync.RWMutex
	institutions map[id.InstitutionID]*models.Institution
	nameIdx      map[string]id.InstitutionID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		institutions: make(map[id.InstitutionID]*models.Institution),
		nameIdx:      make(map[string]id.InstitutionID),
	}
}

// CreateIfNameAvailable atomically creates the institution unless the name
// is taken, ignoring case.
func (s *InMemoryStore) CreateIfNameAvailable(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(inst.Name)
	if _, exists := s.nameIdx[lower]; exists {
		return fmt.Errorf("institution name must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	c := *inst
	s.institutions[inst.ID] = &c
	s.nameIdx[lower] = inst.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, institutionID id.InstitutionID) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.institutions[institutionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *inst
	return &c, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Institution, 0, len(s.institutions))
	for _, inst := range s.institutions {
		c := *inst
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Institution) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.institutions[inst.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !strings.EqualFold(existing.Name, inst.Name) {
		delete(s.nameIdx, strings.ToLower(existing.Name))
		s.nameIdx[strings.ToLower(inst.Name)] = inst.ID
	}
	c := *inst
	s.institutions[inst.ID] = &c
	return nil
}
