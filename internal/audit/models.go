package audit

import (
	"time"

	"elan/internal/rbac"
	id "elan/pkg/domain"
)

// Event records a permission-gated mutation. Events are append-only: no
// store in this package exposes update or delete.
type Event struct {
	ID            string
	Name          EventName
	ActorID       id.UserID
	ActorRole     rbac.Role
	Domain        rbac.Domain
	ResourceType  rbac.Resource
	ResourceID    string
	Action        rbac.Action
	PreviousState string
	NewState      string
	Reason        string
	Metadata      map[string]string
	RequestID     string
	ClientIP      string
	Client        string // "Safari on iOS"
	Timestamp     time.Time
}

type EventName string

const (
	EventJourneyCreated      EventName = "journey_created"
	EventJourneyUpdated      EventName = "journey_updated"
	EventJourneyTransitioned EventName = "journey_transitioned"
	EventJourneyShared       EventName = "journey_shared"
	EventJourneyDeleted      EventName = "journey_deleted"

	EventMemoryCreated EventName = "memory_created"
	EventMemoryShared  EventName = "memory_shared"
	EventMemoryDeleted EventName = "memory_deleted"

	EventVisibilityGranted EventName = "visibility_granted"
	EventVisibilityRevoked EventName = "visibility_revoked"

	EventInviteIssued    EventName = "invite_issued"
	EventInviteAccepted  EventName = "invite_accepted"
	EventClientsAssigned EventName = "clients_assigned"

	EventInstitutionCreated     EventName = "institution_created"
	EventInstitutionDeactivated EventName = "institution_deactivated"

	EventUserErased EventName = "user_erased"
)

// WithActor fills the actor fields from a resolved caller.
func (e Event) WithActor(a rbac.Actor) Event {
	e.ActorID = a.UserID
	e.ActorRole = a.Role
	e.Domain = a.Domain
	return e
}
