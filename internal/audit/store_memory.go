package audit

import (
	"context"
	"sync"

	"elan/internal/rbac"
	id "elan/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, copyEvent(event))
	return nil
}

func (s *InMemoryStore) ListByResource(_ context.Context, resource rbac.Resource, resourceID string) ([]Event, error) {
	return s.filter(func(e Event) bool {
		return e.ResourceType == resource && e.ResourceID == resourceID
	}), nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID id.UserID) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.ActorID == actorID }), nil
}

// All returns every event in append order.
func (s *InMemoryStore) All() []Event {
	return s.filter(func(Event) bool { return true })
}

func (s *InMemoryStore) filter(keep func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, copyEvent(e))
		}
	}
	return out
}

func copyEvent(e Event) Event {
	if e.Metadata != nil {
		md := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			md[k] = v
		}
		e.Metadata = md
	}
	return e
}
