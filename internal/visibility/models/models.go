package models

import (
	"slices"
	"time"

	"elan/internal/access"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

// Status is derived from RevokedAt, never stored.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant is what an owner lets one advisor see.
//
// A grant is unique per (OwnerID, AdvisorID). Re-granting reuses the record;
// history lives in the audit log.
type Grant struct {
	ID        id.ScopeID
	OwnerID   id.UserID
	AdvisorID id.UserID
	All       bool
	EntityIDs []string
	GrantedAt time.Time
	RevokedAt *time.Time
}

// NewGrant creates a Grant with domain invariant checks.
func NewGrant(scopeID id.ScopeID, ownerID, advisorID id.UserID, all bool, entityIDs []string, grantedAt time.Time) (*Grant, error) {
	if scopeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "scope ID required")
	}
	if ownerID.IsNil() || advisorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner and advisor required")
	}
	if ownerID == advisorID {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner cannot grant visibility to themselves")
	}
	if !all && len(entityIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "scope must cover everything or at least one entity")
	}
	if grantedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "grant time required")
	}
	g := &Grant{
		ID:        scopeID,
		OwnerID:   ownerID,
		AdvisorID: advisorID,
		All:       all,
		GrantedAt: grantedAt,
	}
	if !all {
		g.EntityIDs = dedupe(entityIDs)
	}
	return g, nil
}

func (g *Grant) IsActive() bool {
	return g != nil && g.RevokedAt == nil
}

func (g *Grant) Status() Status {
	if g.IsActive() {
		return StatusActive
	}
	return StatusRevoked
}

// Scope converts the grant to what the access filters consult. Revoked
// grants cover nothing.
func (g *Grant) Scope() access.AdvisorScope {
	if !g.IsActive() {
		return access.AdvisorScope{}
	}
	return access.AdvisorScope{All: g.All, EntityIDs: slices.Clone(g.EntityIDs)}
}

func (g *Grant) Clone() *Grant {
	if g == nil {
		return nil
	}
	c := *g
	c.EntityIDs = slices.Clone(g.EntityIDs)
	if g.RevokedAt != nil {
		t := *g.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}

func dedupe(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
