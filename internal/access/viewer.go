// Package access decides which journeys and memories a caller may see.
//
// The filters combine two gates. The permission matrix must grant read on the
// entity's resource type in the viewer's domain, and the entity must fall
// inside the viewer's relationship to its owner (ownership, family sharing,
// advisor scope or institutional assignment). Both gates are pure.
package access

import (
	"slices"

	"elan/internal/rbac"
	id "elan/pkg/domain"
)

// AdvisorScope is the visibility an owner granted an advisor: everything, or
// an allow-list of entity ids.
type AdvisorScope struct {
	All       bool
	EntityIDs []string
}

// Covers reports whether entityID is inside the scope.
func (s AdvisorScope) Covers(entityID string) bool {
	return s.All || slices.Contains(s.EntityIDs, entityID)
}

// IsEmpty reports whether the scope grants nothing.
func (s AdvisorScope) IsEmpty() bool {
	return !s.All && len(s.EntityIDs) == 0
}

// Viewer is the resolved caller: identity, role, domain context and the
// relationships the filters consult.
type Viewer struct {
	UserID          id.UserID
	Role            rbac.Role
	Domain          rbac.Domain
	PrincipalID     id.UserID // UHNI a family member or advisor is linked to
	InstitutionID   id.InstitutionID
	AssignedClients []id.UserID
	Scope           AdvisorScope
}

// Actor drops the relationship data.
func (v Viewer) Actor() rbac.Actor {
	return rbac.Actor{
		UserID:        v.UserID,
		Role:          v.Role,
		Domain:        v.Domain,
		InstitutionID: v.InstitutionID,
	}
}

func (v Viewer) Can(action rbac.Action, resource rbac.Resource) bool {
	return rbac.HasPermission(v.Role, action, resource, v.Domain)
}

func (v Viewer) Require(action rbac.Action, resource rbac.Resource) error {
	return rbac.Require(v.Role, action, resource, v.Domain)
}

// IsAssigned reports whether clientID is in the viewer's book.
func (v Viewer) IsAssigned(clientID id.UserID) bool {
	return slices.Contains(v.AssignedClients, clientID)
}

// OwnerOnBehalf returns the user an entity created by this viewer belongs to.
// Owner roles create for themselves; family members and advisors for their
// principal; everyone else must name the client explicitly.
func (v Viewer) OwnerOnBehalf(requested id.UserID) id.UserID {
	switch {
	case v.Role.IsOwner():
		return v.UserID
	case v.Role.IsSharedViewer(), v.Role == rbac.RoleElanAdvisor:
		return v.PrincipalID
	default:
		return requested
	}
}
