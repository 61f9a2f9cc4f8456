package store

import (
	"context"
	"sync"

	"elan/internal/journey/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// InMemoryStore keeps journeys and their version history in maps. Versions
// are stored as copies so callers can never rewrite history.
type InMemoryStore struct {
	mu       sync.RWMutex
	journeys map[id.JourneyID]*models.Journey
	order    []id.JourneyID
	versions map[id.JourneyID][]*models.Version
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		journeys: make(map[id.JourneyID]*models.Journey),
		versions: make(map[id.JourneyID][]*models.Version),
	}
}

func (s *InMemoryStore) Create(_ context.Context, journey *models.Journey, first *models.Version) error {
	if journey == nil || first == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journeys[journey.ID]; ok {
		return sentinel.ErrConflict
	}
	if first.Number != 1 || journey.CurrentVersion != 1 || first.Status != journey.Status {
		return sentinel.ErrInvalidState
	}
	s.journeys[journey.ID] = journey.Clone()
	s.order = append(s.order, journey.ID)
	v := *first
	s.versions[journey.ID] = []*models.Version{&v}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, journeyID id.JourneyID) (*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.journeys[journeyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return j.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Journey, 0, len(s.order))
	for _, jid := range s.order {
		out = append(out, s.journeys[jid].Clone())
	}
	return out, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Journey
	for _, jid := range s.order {
		if j := s.journeys[jid]; j.OwnerID == ownerID {
			out = append(out, j.Clone())
		}
	}
	return out, nil
}

// AppendVersion stores next and points the journey at it. It fails with
// ErrConflict when another version was appended since journey was read.
func (s *InMemoryStore) AppendVersion(_ context.Context, journey *models.Journey, next *models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.journeys[journey.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if next.JourneyID != journey.ID || next.Number != current.CurrentVersion+1 || journey.CurrentVersion != next.Number {
		return sentinel.ErrConflict
	}
	if journey.Status != next.Status {
		return sentinel.ErrInvalidState
	}
	v := *next
	s.versions[journey.ID] = append(s.versions[journey.ID], &v)
	s.journeys[journey.ID] = journey.Clone()
	return nil
}

func (s *InMemoryStore) UpdateSharing(_ context.Context, journeyID id.JourneyID, sharing models.Sharing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journeys[journeyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	j.Sharing = sharing
	return nil
}

func (s *InMemoryStore) Versions(_ context.Context, journeyID id.JourneyID) ([]*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.versions[journeyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.Version, 0, len(history))
	for _, v := range history {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

// Delete removes the journey and its whole history under one lock.
func (s *InMemoryStore) Delete(_ context.Context, journeyID id.JourneyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journeys[journeyID]; !ok {
		return sentinel.ErrNotFound
	}
	s.remove(journeyID)
	return nil
}

func (s *InMemoryStore) DeleteByOwner(_ context.Context, ownerID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var doomed []id.JourneyID
	for _, jid := range s.order {
		if s.journeys[jid].OwnerID == ownerID {
			doomed = append(doomed, jid)
		}
	}
	for _, jid := range doomed {
		s.remove(jid)
	}
	return len(doomed), nil
}

func (s *InMemoryStore) remove(journeyID id.JourneyID) {
	delete(s.journeys, journeyID)
	delete(s.versions, journeyID)
	for i, jid := range s.order {
		if jid == journeyID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}
