// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "elan/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where JourneyID is expected.
type (
	UserID        uuid.UUID
	JourneyID     uuid.UUID
	MemoryID      uuid.UUID
	InstitutionID uuid.UUID
	InviteID      uuid.UUID
	ScopeID       uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseJourneyID(s string) (JourneyID, error) {
	id, err := parseUUID(s, "journey ID")
	return JourneyID(id), err
}

func ParseMemoryID(s string) (MemoryID, error) {
	id, err := parseUUID(s, "memory ID")
	return MemoryID(id), err
}

func ParseInstitutionID(s string) (InstitutionID, error) {
	id, err := parseUUID(s, "institution ID")
	return InstitutionID(id), err
}

func ParseInviteID(s string) (InviteID, error) {
	id, err := parseUUID(s, "invite ID")
	return InviteID(id), err
}

// New constructors - used by services when minting identifiers.

func NewUserID() UserID               { return UserID(uuid.New()) }
func NewJourneyID() JourneyID         { return JourneyID(uuid.New()) }
func NewMemoryID() MemoryID           { return MemoryID(uuid.New()) }
func NewInstitutionID() InstitutionID { return InstitutionID(uuid.New()) }
func NewInviteID() InviteID           { return InviteID(uuid.New()) }
func NewScopeID() ScopeID             { return ScopeID(uuid.New()) }

// String methods - for logging and debugging.

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id JourneyID) String() string     { return uuid.UUID(id).String() }
func (id MemoryID) String() string      { return uuid.UUID(id).String() }
func (id InstitutionID) String() string { return uuid.UUID(id).String() }
func (id InviteID) String() string      { return uuid.UUID(id).String() }
func (id ScopeID) String() string       { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id JourneyID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id MemoryID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id InstitutionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id InviteID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ScopeID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic. The nil UUID is rejected so that
// "no owner" can never be smuggled in through a request.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
