package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"elan/internal/directory/models"
	id "elan/pkg/domain"
	"elan/pkg/platform/sentinel"
)

// InMemoryStore keeps users and invites in maps guarded by one lock, so
// accepting an invite and creating its user happen together.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	invites map[id.InviteID]*models.Invite
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:   make(map[id.UserID]*models.User),
		invites: make(map[id.InviteID]*models.Invite),
	}
}

// CreateUser inserts a user directly. Used for bootstrapping the first
// super admin.
func (s *InMemoryStore) CreateUser(_ context.Context, user *models.User) error {
	if user == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUserLocked(user)
}

func (s *InMemoryStore) insertUserLocked(user *models.User) error {
	if _, ok := s.users[user.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, sentinel.ErrConflict)
		}
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *InMemoryStore) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return user.Clone(), nil
}

func (s *InMemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user.Clone(), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByInstitution(_ context.Context, institutionID id.InstitutionID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, user := range s.users {
		if user.InstitutionID == institutionID {
			out = append(out, user.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Email, b.Email)
	})
	return out, nil
}

func (s *InMemoryStore) SetAssignedClients(_ context.Context, userID id.UserID, clients []id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.AssignedClients = slices.Clone(clients)
	user.UpdatedAt = at
	return nil
}

// DeleteUser removes the user, the invites that carry their email, their
// pending invites and their place in every client book.
func (s *InMemoryStore) DeleteUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	delete(s.users, userID)
	for inviteID, inv := range s.invites {
		if inv.AcceptedBy == userID || (inv.IssuedBy == userID && !inv.IsAccepted()) {
			delete(s.invites, inviteID)
		}
	}
	for _, user := range s.users {
		user.AssignedClients = slices.DeleteFunc(user.AssignedClients, func(c id.UserID) bool {
			return c == userID
		})
	}
	return nil
}

func (s *InMemoryStore) CreateInvite(_ context.Context, inv *models.Invite) error {
	if inv == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invites[inv.ID]; ok {
		return sentinel.ErrConflict
	}
	c := *inv
	s.invites[inv.ID] = &c
	return nil
}

func (s *InMemoryStore) FindInvite(_ context.Context, inviteID id.InviteID) (*models.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invites[inviteID]
	if !ok {
		return nil, fmt.Errorf("invite not found: %w", sentinel.ErrNotFound)
	}
	c := *inv
	return &c, nil
}

// AcceptInvite stores user and marks the invite accepted by them.
func (s *InMemoryStore) AcceptInvite(_ context.Context, inv *models.Invite, user *models.User) error {
	if inv == nil || user == nil || inv.AcceptedAt == nil {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.invites[inv.ID]
	if !ok {
		return fmt.Errorf("invite not found: %w", sentinel.ErrNotFound)
	}
	if stored.IsAccepted() {
		return sentinel.ErrAlreadyUsed
	}
	if err := s.insertUserLocked(user); err != nil {
		return err
	}
	at := *inv.AcceptedAt
	stored.AcceptedAt = &at
	stored.AcceptedBy = user.ID
	return nil
}
