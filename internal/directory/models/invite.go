package models

import (
	"strings"
	"time"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

// DefaultInviteTTL is how long an invite can be accepted.
const DefaultInviteTTL = 7 * 24 * time.Hour

// Invite lets one person join with a predetermined role. Only the bcrypt
// hash of the secret part of the code is stored.
type Invite struct {
	ID            id.InviteID
	Email         string
	Role          rbac.Role
	PrincipalID   id.UserID
	InstitutionID id.InstitutionID
	SecretHash    string
	IssuedBy      id.UserID
	CreatedAt     time.Time
	ExpiresAt     time.Time
	AcceptedAt    *time.Time
	AcceptedBy    id.UserID
}

func (i *Invite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

func (i *Invite) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// Accept marks the invite as used by userID.
func (i *Invite) Accept(userID id.UserID, now time.Time) error {
	if i.IsAccepted() {
		return dErrors.New(dErrors.CodeConflict, "invite has already been used")
	}
	if i.IsExpired(now) {
		return dErrors.New(dErrors.CodeValidation, "invite has expired")
	}
	i.AcceptedAt = &now
	i.AcceptedBy = userID
	return nil
}

// NewInvite checks the structural invariants of an invite. Who may issue it
// is decided by the service.
func NewInvite(inviteID id.InviteID, email string, role rbac.Role, principal id.UserID,
	institution id.InstitutionID, secretHash string, issuer id.UserID, now time.Time, ttl time.Duration) (*Invite, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invite role is invalid")
	}
	if secretHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invite secret hash is required")
	}
	if ttl <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invite ttl must be positive")
	}
	switch {
	case role.IsSharedViewer(), role == rbac.RoleElanAdvisor:
		if principal.IsNil() {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "family and advisor invites must name a principal")
		}
	case role.Domain() == rbac.DomainB2B:
		if institution.IsNil() {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "institutional invites must name an institution")
		}
	}
	return &Invite{
		ID:            inviteID,
		Email:         NormalizeEmail(email),
		Role:          role,
		PrincipalID:   principal,
		InstitutionID: institution,
		SecretHash:    secretHash,
		IssuedBy:      issuer,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}, nil
}

// FormatCode joins the invite id and its secret into the code handed to the
// invitee.
func FormatCode(inviteID id.InviteID, secret string) string {
	return inviteID.String() + "." + secret
}

// ParseCode splits an invite code into the invite id and the secret.
func ParseCode(code string) (id.InviteID, string, error) {
	rawID, secret, ok := strings.Cut(strings.TrimSpace(code), ".")
	if !ok || secret == "" {
		return id.InviteID{}, "", dErrors.New(dErrors.CodeValidation, "invite code is malformed")
	}
	inviteID, err := id.ParseInviteID(rawID)
	if err != nil {
		return id.InviteID{}, "", dErrors.New(dErrors.CodeValidation, "invite code is malformed")
	}
	return inviteID, secret, nil
}
