package models

import (
	"slices"
	"strings"
	"time"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

// User is a directory entry. Role is fixed when the invite is accepted and
// never changes afterwards; the domain context always follows from it.
type User struct {
	ID              id.UserID
	Email           string
	Name            string
	Role            rbac.Role
	PrincipalID     id.UserID
	InstitutionID   id.InstitutionID
	AssignedClients []id.UserID
	InvitedBy       id.UserID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) Domain() rbac.Domain {
	return u.Role.Domain()
}

// IsLinkedAdvisorOf reports whether u is an elan advisor working for ownerID.
func (u *User) IsLinkedAdvisorOf(ownerID id.UserID) bool {
	return u.Role == rbac.RoleElanAdvisor && u.PrincipalID == ownerID
}

// CanBeAssigned reports whether u may carry a client book.
func (u *User) CanBeAssigned() bool {
	return u.Role == rbac.RoleRelationshipManager || u.Role == rbac.RolePrivateBanker
}

func (u *User) Clone() *User {
	c := *u
	c.AssignedClients = slices.Clone(u.AssignedClients)
	return &c
}

// NewUser builds the directory entry created by accepting inv.
func NewUser(userID id.UserID, inv *Invite, email, name string, now time.Time) (*User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id is required")
	}
	if !inv.Role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invite role is invalid")
	}
	return &User{
		ID:            userID,
		Email:         NormalizeEmail(email),
		Name:          strings.TrimSpace(name),
		Role:          inv.Role,
		PrincipalID:   inv.PrincipalID,
		InstitutionID: inv.InstitutionID,
		InvitedBy:     inv.IssuedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
